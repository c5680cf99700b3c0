package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol is prefixed to formatted amounts
const DefaultSymbol = "¥"

// Round rounds an amount to cents
func Round(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// Amount renders an amount as a fixed two-decimal string without grouping
func Amount(amount float64) string {
	return Round(amount).StringFixed(2)
}

// Formatter renders amounts for one locale
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a new Formatter
func NewFormatter(tag language.Tag, symbol string) *Formatter {
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// DefaultFormatter groups thousands the English way with the yuan sign
func DefaultFormatter() *Formatter {
	return NewFormatter(language.English, DefaultSymbol)
}

// Money renders a rounded amount with thousands grouping and the currency symbol
func (f *Formatter) Money(amount float64) string {
	rounded := Round(amount)
	if rounded.IsNegative() {
		return "-" + f.symbol + f.printer.Sprintf("%.2f", rounded.Abs().InexactFloat64())
	}
	return f.symbol + f.printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// Percent renders a 0-100 value with two decimals
func (f *Formatter) Percent(value float64) string {
	return Round(value).StringFixed(2) + "%"
}
