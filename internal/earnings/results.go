package earnings

import (
	"time"

	"github.com/username/salary-ticker/internal/calendar"
)

// Results is every metric computed against one instant and one calendar snapshot
type Results struct {
	Now               time.Time
	IsWorkday         bool
	Phase             Phase
	EffectiveWorkdays int
	DailySalary       float64
	HourlyRate        float64
	TodayEarnings     float64
	TodayProgress     float64
	WeekEarnings      float64
	MonthEarnings     float64

	NextPayday      time.Time
	TimeUntilPayday time.Duration

	TimeUntilWorkEnd     *time.Duration
	TimeUntilWeekend     time.Duration
	TimeUntilNextHoliday *HolidayCountdown

	Calendar calendar.Status
}

// Calculate computes all metrics at once
func (e *Engine) Calculate(s ScheduleSettings) Results {
	ev := e.snapshot(s)

	payday := ev.nextPayday()
	res := Results{
		Now:               ev.now,
		IsWorkday:         ev.isWorkday(ev.now),
		Phase:             ev.position().Phase,
		EffectiveWorkdays: ev.effectiveWorkdays(),
		DailySalary:       ev.dailySalary(),
		HourlyRate:        ev.hourlyRate(),
		TodayEarnings:     ev.todayEarnings(),
		TodayProgress:     ev.todayProgress(),
		WeekEarnings:      ev.weekEarnings(),
		MonthEarnings:     ev.monthEarnings(),
		NextPayday:        payday,
		TimeUntilPayday:   payday.Sub(ev.now),
		TimeUntilWeekend:  ev.timeUntilWeekend(),
		Calendar:          ev.status,
	}

	if d, ok := ev.timeUntilWorkEnd(); ok {
		res.TimeUntilWorkEnd = &d
	}
	if hc, ok := ev.timeUntilNextHoliday(); ok {
		res.TimeUntilNextHoliday = &hc
	}

	return res
}

// Countdown is a duration broken into display units
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Decompose splits d into whole days, hours, minutes and seconds.
// Negative durations decompose to zero.
func Decompose(d time.Duration) Countdown {
	if d <= 0 {
		return Countdown{}
	}
	total := int64(d / time.Second)
	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// Reached reports whether the countdown has run out
func (c Countdown) Reached() bool {
	return c == Countdown{}
}
