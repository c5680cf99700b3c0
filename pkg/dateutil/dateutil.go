package dateutil

import "time"

// DateKeyLayout is the ISO calendar date layout used as holiday map key
const DateKeyLayout = "2006-01-02"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// EndOfDay returns the end of the day (23:59:59.999) for the given date
func EndOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 999999999, date.Location())
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	daysFromMonday := weekday - 1
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// EndOfWeek returns the Sunday of the week for the given date
func EndOfWeek(date time.Time) time.Time {
	monday := StartOfWeek(date)
	sunday := monday.AddDate(0, 0, 6)
	return EndOfDay(sunday)
}

// StartOfMonth returns the first day of the month (00:00:00)
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month (23:59:59.999)
func EndOfMonth(date time.Time) time.Time {
	return EndOfDay(time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, date.Location()))
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// DateKey formats the calendar date as YYYY-MM-DD
func DateKey(date time.Time) string {
	return date.Format(DateKeyLayout)
}

// AtClock returns the instant on the date's calendar day at hour:minute
func AtClock(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ParseDateIn parses YYYY-MM-DD as local midnight in loc
func ParseDateIn(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, key, loc)
}
