package earnings

import (
	"fmt"
	"time"

	"github.com/username/salary-ticker/pkg/dateutil"
)

// ClockTime is a wall-clock time of day (HH:MM)
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	if len(s) != 5 || s[2] != ':' {
		return c, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return c, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return c, fmt.Errorf("invalid time of day %q: out of range", s)
	}
	return c, nil
}

// MustClockTime is ParseClockTime for literals
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On returns the instant at this time of day on date's calendar day
func (c ClockTime) On(date time.Time) time.Time {
	return dateutil.AtClock(date, c.Hour, c.Minute)
}

// MarshalText implements encoding.TextMarshaler
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ScheduleSettings is the caller-owned salary and work schedule.
// Expected: WorkStartTime < LunchBreakStart <= LunchBreakEnd < WorkEndTime.
type ScheduleSettings struct {
	MonthlySalary   float64   `json:"monthly_salary"`
	WorkStartTime   ClockTime `json:"work_start_time"`
	WorkEndTime     ClockTime `json:"work_end_time"`
	LunchBreakStart ClockTime `json:"lunch_break_start"`
	LunchBreakEnd   ClockTime `json:"lunch_break_end"`
	PayDay          int       `json:"pay_day"`
}

// DefaultSettings returns the out-of-the-box schedule
func DefaultSettings() ScheduleSettings {
	return ScheduleSettings{
		MonthlySalary:   10000,
		WorkStartTime:   ClockTime{Hour: 9},
		WorkEndTime:     ClockTime{Hour: 18},
		LunchBreakStart: ClockTime{Hour: 12},
		LunchBreakEnd:   ClockTime{Hour: 13},
		PayDay:          15,
	}
}

// Validate checks the structural assumptions the engine relies on.
// The engine itself never calls it.
func (s ScheduleSettings) Validate() error {
	if s.MonthlySalary <= 0 {
		return fmt.Errorf("monthly salary must be positive")
	}
	if s.PayDay < 1 || s.PayDay > 31 {
		return fmt.Errorf("pay day must be between 1 and 31, got %d", s.PayDay)
	}
	if s.WorkStartTime.Minutes() >= s.LunchBreakStart.Minutes() {
		return fmt.Errorf("work start %s must be before lunch start %s", s.WorkStartTime, s.LunchBreakStart)
	}
	if s.LunchBreakStart.Minutes() > s.LunchBreakEnd.Minutes() {
		return fmt.Errorf("lunch start %s must not be after lunch end %s", s.LunchBreakStart, s.LunchBreakEnd)
	}
	if s.LunchBreakEnd.Minutes() >= s.WorkEndTime.Minutes() {
		return fmt.Errorf("lunch end %s must be before work end %s", s.LunchBreakEnd, s.WorkEndTime)
	}
	return nil
}
