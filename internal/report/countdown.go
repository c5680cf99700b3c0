package report

import (
	"fmt"
	"time"

	"github.com/username/salary-ticker/internal/earnings"
)

// Labels shown once a countdown has run out
const (
	DefaultCelebration = "reached"
	WeekendLabel       = "Happy weekend!"
	WorkEndLabel       = "Off work!"
	HolidayLabel       = "Enjoy the holiday!"
	PaydayLabel        = "Payday!"
	NotWorkdayLabel    = "not a workday today"
)

// FormatCountdown renders d dropping leading zero units, or the celebration
// label once less than a second is left
func FormatCountdown(d time.Duration, celebration string) string {
	c := earnings.Decompose(d)
	if c.Reached() {
		if celebration == "" {
			return DefaultCelebration
		}
		return celebration
	}

	switch {
	case c.Days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
	case c.Hours > 0:
		return fmt.Sprintf("%dh %dm %ds", c.Hours, c.Minutes, c.Seconds)
	case c.Minutes > 0:
		return fmt.Sprintf("%dm %ds", c.Minutes, c.Seconds)
	default:
		return fmt.Sprintf("%ds", c.Seconds)
	}
}

// WorkEnd renders the optional time until end of work
func WorkEnd(d *time.Duration) string {
	if d == nil {
		return NotWorkdayLabel
	}
	return FormatCountdown(*d, WorkEndLabel)
}

// NextHoliday renders the optional holiday countdown against the calendar state
func NextHoliday(hc *earnings.HolidayCountdown, loaded bool) string {
	switch {
	case hc == nil && !loaded:
		return "holiday calendar not loaded"
	case hc == nil:
		return "no upcoming holiday"
	case hc.HolidayName == earnings.CurrentHolidayName:
		return HolidayLabel
	case earnings.Decompose(hc.Remaining).Reached():
		return fmt.Sprintf("%s (%s)", HolidayLabel, hc.HolidayName)
	default:
		return fmt.Sprintf("%s until %s", FormatCountdown(hc.Remaining, HolidayLabel), hc.HolidayName)
	}
}
