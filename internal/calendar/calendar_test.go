package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

// National Day 2025 with the make-up Saturday before it
func nationalDay2025() *Calendar {
	return NewCalendar(2025, map[string]HolidayRecord{
		"2025-09-28": {Date: "2025-09-28", Name: "National Day (make-up)", IsRestDay: false, Target: "National Day"},
		"2025-10-01": {Date: "2025-10-01", Name: "National Day", IsRestDay: true, Wage: 3},
		"2025-10-02": {Date: "2025-10-02", Name: "National Day", IsRestDay: true, Wage: 3},
		"2025-10-03": {Date: "2025-10-03", Name: "National Day", IsRestDay: true, Wage: 3},
		"2025-10-11": {Date: "2025-10-11", Name: "National Day (make-up)", IsRestDay: false, After: true},
	})
}

func TestCalendar_IsWorkday(t *testing.T) {
	cal := nationalDay2025()

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"make-up Saturday is a workday", day(2025, time.October, 11), true},
		{"make-up Sunday is a workday", day(2025, time.September, 28), true},
		{"holiday Wednesday is not a workday", day(2025, time.October, 1), false},
		{"ordinary Thursday is a workday", day(2025, time.October, 16), true},
		{"ordinary Saturday is not a workday", day(2025, time.October, 18), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsWorkday(tt.date))
		})
	}
}

func TestCalendar_NilAndEmptyFallBackToWeekendRule(t *testing.T) {
	var nilCal *Calendar

	saturday := day(2025, time.October, 11)
	monday := day(2025, time.October, 13)

	assert.False(t, nilCal.IsWorkday(saturday))
	assert.True(t, nilCal.IsWorkday(monday))
	assert.False(t, Empty().IsWorkday(saturday))
	assert.Equal(t, 0, nilCal.Len())

	_, ok := nilCal.NextHoliday(monday)
	assert.False(t, ok)
}

func TestCalendar_NextHoliday(t *testing.T) {
	cal := nationalDay2025()

	t.Run("earliest rest day strictly after date", func(t *testing.T) {
		h, ok := cal.NextHoliday(time.Date(2025, time.September, 20, 15, 0, 0, 0, time.Local))
		require.True(t, ok)
		assert.Equal(t, "National Day", h.Name)
		assert.True(t, h.Date.Equal(day(2025, time.October, 1)))
	})

	t.Run("today's holiday is excluded", func(t *testing.T) {
		h, ok := cal.NextHoliday(day(2025, time.October, 1))
		require.True(t, ok)
		assert.True(t, h.Date.Equal(day(2025, time.October, 2)))
	})

	t.Run("make-up days are skipped", func(t *testing.T) {
		_, ok := cal.NextHoliday(day(2025, time.October, 3))
		assert.False(t, ok)
	})

	t.Run("calendar with only make-up days yields none", func(t *testing.T) {
		onlyWork := NewCalendar(2025, map[string]HolidayRecord{
			"2025-10-11": {Date: "2025-10-11", IsRestDay: false},
		})
		_, ok := onlyWork.NextHoliday(day(2025, time.January, 1))
		assert.False(t, ok)
	})
}

func TestCalendar_MergeAndRecords(t *testing.T) {
	base := NewCalendar(2025, map[string]HolidayRecord{
		"2025-12-31": {Date: "2025-12-31", Name: "base", IsRestDay: true},
	})
	next := NewCalendar(2026, map[string]HolidayRecord{
		"2026-01-01": {Date: "2026-01-01", Name: "New Year", IsRestDay: true},
		"2025-12-31": {Date: "2025-12-31", Name: "other", IsRestDay: false},
	})

	merged := base.Merge(next)

	assert.Equal(t, 2025, merged.Year())
	assert.Equal(t, 2, merged.Len())
	rec, ok := merged.Lookup(day(2025, time.December, 31))
	require.True(t, ok)
	assert.Equal(t, "base", rec.Name)

	records := merged.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "2025-12-31", records[0].Date)
	assert.Equal(t, "2026-01-01", records[1].Date)

	// inputs are untouched
	assert.Equal(t, 1, base.Len())
}

func TestNewCalendar_CopiesInput(t *testing.T) {
	src := map[string]HolidayRecord{"2025-01-01": {Date: "2025-01-01", IsRestDay: true}}
	cal := NewCalendar(2025, src)
	delete(src, "2025-01-01")

	assert.Equal(t, 1, cal.Len())
}
