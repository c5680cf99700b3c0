package earnings

import (
	"time"

	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/pkg/dateutil"
)

const (
	// FallbackWorkdays replaces a zero workday count as the daily salary divisor
	FallbackWorkdays = 22

	// CurrentHolidayName is reported when today is already a non-workday
	CurrentHolidayName = "current holiday"

	// maxWalkBackDays bounds the search for the last workday before a holiday
	maxWalkBackDays = 366
)

// HolidayProvider exposes the cached holiday calendar together with its status.
// *calendar.Resolver implements it.
type HolidayProvider interface {
	Snapshot() (*calendar.Calendar, calendar.Status)
}

// HolidayCountdown is the time left until the next break starts
type HolidayCountdown struct {
	Remaining   time.Duration
	HolidayName string
}

// Engine computes earnings and countdowns for the injected clock
type Engine struct {
	holidays HolidayProvider
	clock    func() time.Time
	logger   *zap.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock replaces time.Now
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates a new Engine
func NewEngine(holidays HolidayProvider, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		holidays: holidays,
		clock:    time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's notion of the current instant
func (e *Engine) Now() time.Time {
	return e.clock()
}

// snapshot pins now and the calendar for one call
func (e *Engine) snapshot(s ScheduleSettings) *evaluation {
	cal, status := e.holidays.Snapshot()
	return &evaluation{
		now:      e.clock(),
		cal:      cal,
		status:   status,
		loaded:   status.Loaded,
		settings: s,
		logger:   e.logger,
	}
}

// IsWorkday classifies date against the cached calendar
func (e *Engine) IsWorkday(date time.Time) bool {
	cal, _ := e.holidays.Snapshot()
	return cal.IsWorkday(date)
}

// WorkdayRange returns the range for date, false when date is not a workday
func (e *Engine) WorkdayRange(date time.Time, s ScheduleSettings) (WorkdayTimeRange, bool) {
	return e.snapshot(s).workdayRange(date)
}

// EffectiveWorkdays counts this month's workdays
func (e *Engine) EffectiveWorkdays(s ScheduleSettings) int {
	return e.snapshot(s).effectiveWorkdays()
}

// DailySalary is the monthly salary split over this month's workdays
func (e *Engine) DailySalary(s ScheduleSettings) float64 {
	return e.snapshot(s).dailySalary()
}

// TodayEarnings returns what has been earned so far today
func (e *Engine) TodayEarnings(s ScheduleSettings) float64 {
	return e.snapshot(s).todayEarnings()
}

// TodayProgress returns today's progress as a percentage in [0, 100]
func (e *Engine) TodayProgress(s ScheduleSettings) float64 {
	return e.snapshot(s).todayProgress()
}

// WeekEarnings sums earnings from Monday through now
func (e *Engine) WeekEarnings(s ScheduleSettings) float64 {
	return e.snapshot(s).weekEarnings()
}

// MonthEarnings sums earnings from the 1st through now
func (e *Engine) MonthEarnings(s ScheduleSettings) float64 {
	return e.snapshot(s).monthEarnings()
}

// HourlyRate returns the hourly rate, 0 when today is not a workday
func (e *Engine) HourlyRate(s ScheduleSettings) float64 {
	return e.snapshot(s).hourlyRate()
}

// NextPayday returns the next payday instant strictly after now
func (e *Engine) NextPayday(s ScheduleSettings) time.Time {
	return e.snapshot(s).nextPayday()
}

// TimeUntilWorkEnd returns nil when today is not a workday
func (e *Engine) TimeUntilWorkEnd(s ScheduleSettings) *time.Duration {
	d, ok := e.snapshot(s).timeUntilWorkEnd()
	if !ok {
		return nil
	}
	return &d
}

// TimeUntilWeekend returns the time until Friday's end of work
func (e *Engine) TimeUntilWeekend(s ScheduleSettings) time.Duration {
	return e.snapshot(s).timeUntilWeekend()
}

// TimeUntilNextHoliday returns nil when the calendar is not loaded or no
// holiday is ahead
func (e *Engine) TimeUntilNextHoliday(s ScheduleSettings) *HolidayCountdown {
	hc, ok := e.snapshot(s).timeUntilNextHoliday()
	if !ok {
		return nil
	}
	return &hc
}

// evaluation is one consistent view of now, the calendar and the settings
type evaluation struct {
	now      time.Time
	cal      *calendar.Calendar
	status   calendar.Status
	loaded   bool
	settings ScheduleSettings
	logger   *zap.Logger

	workdays int
}

func (ev *evaluation) isWorkday(date time.Time) bool {
	return ev.cal.IsWorkday(date)
}

func (ev *evaluation) workdayRange(date time.Time) (WorkdayTimeRange, bool) {
	if !ev.isWorkday(date) {
		return WorkdayTimeRange{}, false
	}
	return RangeOn(date, ev.settings), true
}

func (ev *evaluation) position() Position {
	r, ok := ev.workdayRange(ev.now)
	if !ok {
		return Position{Phase: PhaseOff}
	}
	return r.PositionAt(ev.now)
}

func (ev *evaluation) effectiveWorkdays() int {
	if ev.workdays > 0 {
		return ev.workdays
	}

	count := 0
	end := dateutil.EndOfMonth(ev.now)
	for d := dateutil.StartOfMonth(ev.now); !d.After(end); d = d.AddDate(0, 0, 1) {
		if ev.isWorkday(d) {
			count++
		}
	}

	if count == 0 {
		ev.logger.Warn("No workdays in month, using fallback divisor",
			zap.String("month", ev.now.Format("2006-01")),
			zap.Int("fallback", FallbackWorkdays))
		count = FallbackWorkdays
	}

	ev.workdays = count
	return count
}

func (ev *evaluation) dailySalary() float64 {
	return ev.settings.MonthlySalary / float64(ev.effectiveWorkdays())
}

func (ev *evaluation) todayEarnings() float64 {
	pos := ev.position()
	switch pos.Phase {
	case PhaseOff, PhaseBeforeStart:
		return 0
	case PhaseAfterEnd:
		return ev.dailySalary()
	}
	return ev.dailySalary() * pos.Ratio()
}

func (ev *evaluation) todayProgress() float64 {
	progress := ev.position().Ratio() * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// periodEarnings walks [from, to] one day at a time. Days after now and
// non-workdays contribute nothing; today contributes its accrued earnings.
func (ev *evaluation) periodEarnings(from, to time.Time) float64 {
	var total float64
	for d := dateutil.StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.After(ev.now) {
			break
		}
		if !ev.isWorkday(d) {
			continue
		}
		if dateutil.IsSameDay(d, ev.now) {
			total += ev.todayEarnings()
		} else {
			total += ev.dailySalary()
		}
	}
	return total
}

func (ev *evaluation) weekEarnings() float64 {
	return ev.periodEarnings(dateutil.StartOfWeek(ev.now), dateutil.EndOfWeek(ev.now))
}

func (ev *evaluation) monthEarnings() float64 {
	return ev.periodEarnings(dateutil.StartOfMonth(ev.now), dateutil.EndOfMonth(ev.now))
}

func (ev *evaluation) hourlyRate() float64 {
	r, ok := ev.workdayRange(ev.now)
	if !ok {
		return 0
	}
	hours := r.TotalWork().Hours()
	if hours <= 0 {
		return 0
	}
	return ev.dailySalary() / hours
}

func (ev *evaluation) nextPayday() time.Time {
	payday := paydayIn(ev.now.Year(), ev.now.Month(), ev.settings.PayDay, ev.now.Location())
	if !payday.After(ev.now) {
		payday = paydayIn(ev.now.Year(), ev.now.Month()+1, ev.settings.PayDay, ev.now.Location())
	}
	return payday
}

// paydayIn clamps day to the month's length; month may overflow into the next year
func paydayIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if last := dateutil.DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

func (ev *evaluation) timeUntilWorkEnd() (time.Duration, bool) {
	r, ok := ev.workdayRange(ev.now)
	if !ok {
		return 0, false
	}
	if !ev.now.Before(r.End) {
		return 0, true
	}
	return r.End.Sub(ev.now), true
}

func (ev *evaluation) timeUntilWeekend() time.Duration {
	if dateutil.IsWeekend(ev.now) {
		return 0
	}

	switch wd := ev.now.Weekday(); wd {
	case time.Friday:
		if r, ok := ev.workdayRange(ev.now); ok && ev.now.Before(r.End) {
			return r.End.Sub(ev.now)
		}
		return 0
	default:
		// the calendar Friday, holiday or not
		friday := ev.now.AddDate(0, 0, int(time.Friday-wd))
		return ev.settings.WorkEndTime.On(friday).Sub(ev.now)
	}
}

func (ev *evaluation) timeUntilNextHoliday() (HolidayCountdown, bool) {
	if !ev.loaded {
		return HolidayCountdown{}, false
	}
	if !ev.isWorkday(ev.now) {
		return HolidayCountdown{HolidayName: CurrentHolidayName}, true
	}

	next, ok := ev.cal.NextHoliday(ev.now)
	if !ok {
		return HolidayCountdown{}, false
	}

	lastWorkday, ok := ev.lastWorkdayBefore(next.Date)
	if !ok {
		ev.logger.Warn("No workday found before holiday",
			zap.String("holiday", next.Name),
			zap.String("date", dateutil.DateKey(next.Date)))
		return HolidayCountdown{}, false
	}

	if dateutil.IsSameDay(lastWorkday, ev.now) {
		remaining, _ := ev.timeUntilWorkEnd()
		return HolidayCountdown{Remaining: remaining, HolidayName: next.Name}, true
	}

	target := ev.settings.WorkEndTime.On(lastWorkday)
	return HolidayCountdown{Remaining: target.Sub(ev.now), HolidayName: next.Name}, true
}

func (ev *evaluation) lastWorkdayBefore(holiday time.Time) (time.Time, bool) {
	d := dateutil.StartOfDay(holiday).AddDate(0, 0, -1)
	for i := 0; i < maxWalkBackDays; i++ {
		if ev.isWorkday(d) {
			return d, true
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}
