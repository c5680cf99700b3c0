package report

import (
	"fmt"
	"io"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/earnings"
)

// Write prints a multi-line report of res
func Write(w io.Writer, f *Formatter, res earnings.Results) error {
	lines := []struct {
		label string
		value string
	}{
		{"Now", res.Now.Format("2006-01-02 15:04:05 Mon")},
		{"Today", fmt.Sprintf("%s (%s, %s)", f.Money(res.TodayEarnings), f.Percent(res.TodayProgress), res.Phase)},
		{"This week", f.Money(res.WeekEarnings)},
		{"This month", f.Money(res.MonthEarnings)},
		{"Daily salary", fmt.Sprintf("%s (%d workdays)", f.Money(res.DailySalary), res.EffectiveWorkdays)},
		{"Hourly rate", f.Money(res.HourlyRate)},
		{"Work end", WorkEnd(res.TimeUntilWorkEnd)},
		{"Weekend", FormatCountdown(res.TimeUntilWeekend, WeekendLabel)},
		{"Next holiday", NextHoliday(res.TimeUntilNextHoliday, res.Calendar.Loaded)},
		{"Payday", fmt.Sprintf("%s (%s)", FormatCountdown(res.TimeUntilPayday, PaydayLabel), res.NextPayday.Format("2006-01-02"))},
		{"Calendar", CalendarStatus(res.Calendar)},
	}

	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%-13s %s\n", line.label+":", line.value); err != nil {
			return err
		}
	}
	return nil
}

// Line renders the compact one-line form used while ticking
func Line(f *Formatter, res earnings.Results) string {
	return fmt.Sprintf("%s  today %s (%s)  week %s  month %s  off work: %s",
		res.Now.Format("15:04:05"),
		f.Money(res.TodayEarnings),
		f.Percent(res.TodayProgress),
		f.Money(res.WeekEarnings),
		f.Money(res.MonthEarnings),
		WorkEnd(res.TimeUntilWorkEnd))
}

// CalendarStatus renders the resolver state badge
func CalendarStatus(st calendar.Status) string {
	switch {
	case st.Loaded:
		return fmt.Sprintf("%d loaded (%d records, %s)", st.Year, st.Count, st.Source)
	case st.Failed:
		return fmt.Sprintf("%d load failed, weekend rule in use (%s)", st.Year, st.Source)
	default:
		return "not loaded, weekend rule in use"
	}
}
