package earnings

import (
	"fmt"
	"time"
)

// WorkdayTimeRange holds the four instants bounding one workday
type WorkdayTimeRange struct {
	Start      time.Time
	End        time.Time
	LunchStart time.Time
	LunchEnd   time.Time
}

// RangeOn combines date with the schedule's times of day
func RangeOn(date time.Time, s ScheduleSettings) WorkdayTimeRange {
	return WorkdayTimeRange{
		Start:      s.WorkStartTime.On(date),
		End:        s.WorkEndTime.On(date),
		LunchStart: s.LunchBreakStart.On(date),
		LunchEnd:   s.LunchBreakEnd.On(date),
	}
}

// Lunch returns the lunch break length
func (r WorkdayTimeRange) Lunch() time.Duration {
	return r.LunchEnd.Sub(r.LunchStart)
}

// TotalWork returns working time excluding lunch
func (r WorkdayTimeRange) TotalWork() time.Duration {
	return r.End.Sub(r.Start) - r.Lunch()
}

// Phase is where an instant falls within a workday
type Phase int

const (
	PhaseOff Phase = iota // not a workday
	PhaseBeforeStart
	PhaseMorning
	PhaseLunch
	PhaseAfternoon
	PhaseAfterEnd
)

var phaseNames = map[Phase]string{
	PhaseOff:         "off",
	PhaseBeforeStart: "before_start",
	PhaseMorning:     "morning",
	PhaseLunch:       "lunch",
	PhaseAfternoon:   "afternoon",
	PhaseAfterEnd:    "after_end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Position is the shared before/during/after computation every daily
// metric derives from
type Position struct {
	Phase  Phase
	Worked time.Duration // excluding lunch
	Total  time.Duration // excluding lunch
}

// PositionAt locates t within the range
func (r WorkdayTimeRange) PositionAt(t time.Time) Position {
	total := r.TotalWork()

	switch {
	case t.Before(r.Start):
		return Position{Phase: PhaseBeforeStart, Total: total}
	case !t.Before(r.End):
		return Position{Phase: PhaseAfterEnd, Worked: total, Total: total}
	case !t.After(r.LunchStart):
		return Position{Phase: PhaseMorning, Worked: t.Sub(r.Start), Total: total}
	case !t.After(r.LunchEnd):
		// the lunch elapsed so far is not worked
		return Position{Phase: PhaseLunch, Worked: r.LunchStart.Sub(r.Start), Total: total}
	default:
		return Position{Phase: PhaseAfternoon, Worked: t.Sub(r.Start) - r.Lunch(), Total: total}
	}
}

// Ratio returns worked/total clamped at 0; exactly 1 after the end
func (p Position) Ratio() float64 {
	switch p.Phase {
	case PhaseAfterEnd:
		return 1
	case PhaseOff, PhaseBeforeStart:
		return 0
	}
	if p.Total <= 0 {
		return 0
	}
	ratio := float64(p.Worked) / float64(p.Total)
	if ratio < 0 {
		return 0
	}
	return ratio
}
