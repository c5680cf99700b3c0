package api

import (
	"time"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/internal/report"
)

// Money fields are fixed two-decimal strings.

// ResultsDTO is the JSON form of earnings.Results
type ResultsDTO struct {
	Timestamp            time.Time            `json:"timestamp"`
	IsWorkday            bool                 `json:"is_workday"`
	Phase                earnings.Phase       `json:"phase"`
	EffectiveWorkdays    int                  `json:"effective_workdays"`
	DailySalary          string               `json:"daily_salary"`
	HourlyRate           string               `json:"hourly_rate"`
	TodayEarnings        string               `json:"today_earnings"`
	TodayProgress        string               `json:"today_progress"`
	WeekEarnings         string               `json:"week_earnings"`
	MonthEarnings        string               `json:"month_earnings"`
	NextPayday           time.Time            `json:"next_payday"`
	TimeUntilPayday      CountdownDTO         `json:"time_until_payday"`
	TimeUntilWorkEnd     *CountdownDTO        `json:"time_until_work_end"`
	TimeUntilWeekend     CountdownDTO         `json:"time_until_weekend"`
	TimeUntilNextHoliday *HolidayCountdownDTO `json:"time_until_next_holiday"`
	Calendar             calendar.Status      `json:"calendar"`
}

// CountdownDTO carries both the raw duration and its decomposition
type CountdownDTO struct {
	Milliseconds int64 `json:"milliseconds"`
	earnings.Countdown
	Display string `json:"display"`
}

// HolidayCountdownDTO is the time left until the next break
type HolidayCountdownDTO struct {
	CountdownDTO
	HolidayName string `json:"holiday_name"`
}

// NextHolidayDTO is returned by GET /api/holidays/next
type NextHolidayDTO struct {
	Date      string               `json:"date"`
	Name      string               `json:"name"`
	Countdown *HolidayCountdownDTO `json:"countdown"`
}

// CalendarDTO is the resolver state with its records
type CalendarDTO struct {
	Status  calendar.Status          `json:"status"`
	Records []calendar.HolidayRecord `json:"records"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toCountdownDTO(d time.Duration, celebration string) CountdownDTO {
	return CountdownDTO{
		Milliseconds: d.Milliseconds(),
		Countdown:    earnings.Decompose(d),
		Display:      report.FormatCountdown(d, celebration),
	}
}

func toHolidayCountdownDTO(hc *earnings.HolidayCountdown) *HolidayCountdownDTO {
	if hc == nil {
		return nil
	}
	return &HolidayCountdownDTO{
		CountdownDTO: toCountdownDTO(hc.Remaining, report.HolidayLabel),
		HolidayName:  hc.HolidayName,
	}
}

// NewResultsDTO converts engine results to their JSON form
func NewResultsDTO(res earnings.Results) ResultsDTO {
	dto := ResultsDTO{
		Timestamp:            res.Now,
		IsWorkday:            res.IsWorkday,
		Phase:                res.Phase,
		EffectiveWorkdays:    res.EffectiveWorkdays,
		DailySalary:          report.Amount(res.DailySalary),
		HourlyRate:           report.Amount(res.HourlyRate),
		TodayEarnings:        report.Amount(res.TodayEarnings),
		TodayProgress:        report.Amount(res.TodayProgress),
		WeekEarnings:         report.Amount(res.WeekEarnings),
		MonthEarnings:        report.Amount(res.MonthEarnings),
		NextPayday:           res.NextPayday,
		TimeUntilPayday:      toCountdownDTO(res.TimeUntilPayday, report.PaydayLabel),
		TimeUntilWeekend:     toCountdownDTO(res.TimeUntilWeekend, report.WeekendLabel),
		TimeUntilNextHoliday: toHolidayCountdownDTO(res.TimeUntilNextHoliday),
		Calendar:             res.Calendar,
	}
	if res.TimeUntilWorkEnd != nil {
		c := toCountdownDTO(*res.TimeUntilWorkEnd, report.WorkEndLabel)
		dto.TimeUntilWorkEnd = &c
	}
	return dto
}
