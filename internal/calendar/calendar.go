package calendar

import (
	"sort"
	"time"

	"github.com/username/salary-ticker/pkg/dateutil"
)

// HolidayRecord represents the special status of one calendar date
type HolidayRecord struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Name      string `json:"name"`
	IsRestDay bool   `json:"is_rest_day"` // false = make-up workday
	Wage      int    `json:"wage,omitempty"`
	Rest      int    `json:"rest,omitempty"`
	After     bool   `json:"after,omitempty"`
	Target    string `json:"target,omitempty"`
}

// Holiday is the next upcoming rest day
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Calendar is an immutable date -> record mapping for one resolved year.
// A nil *Calendar behaves as an empty calendar.
type Calendar struct {
	year    int
	records map[string]HolidayRecord
}

// NewCalendar creates a calendar from records keyed by ISO date.
// The map is copied.
func NewCalendar(year int, records map[string]HolidayRecord) *Calendar {
	copied := make(map[string]HolidayRecord, len(records))
	for key, rec := range records {
		copied[key] = rec
	}
	return &Calendar{year: year, records: copied}
}

// Empty returns a calendar without records
func Empty() *Calendar {
	return &Calendar{records: map[string]HolidayRecord{}}
}

// Year returns the year the calendar was resolved for (0 if none)
func (c *Calendar) Year() int {
	if c == nil {
		return 0
	}
	return c.year
}

// Len returns the number of records
func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Lookup returns the record for the given date, if any
func (c *Calendar) Lookup(date time.Time) (HolidayRecord, bool) {
	if c == nil {
		return HolidayRecord{}, false
	}
	rec, ok := c.records[dateutil.DateKey(date)]
	return rec, ok
}

// IsWorkday classifies the date. A record decides (make-up days on a weekend are
// workdays); without a record Monday-Friday are workdays.
func (c *Calendar) IsWorkday(date time.Time) bool {
	if rec, ok := c.Lookup(date); ok {
		return !rec.IsRestDay
	}
	return dateutil.IsWeekday(date)
}

// NextHoliday returns the earliest rest day strictly after the given date.
// Make-up workdays are ignored.
func (c *Calendar) NextHoliday(after time.Time) (Holiday, bool) {
	if c == nil || len(c.records) == 0 {
		return Holiday{}, false
	}

	afterKey := dateutil.DateKey(after)
	var keys []string
	for key, rec := range c.records {
		if key > afterKey && rec.IsRestDay {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return Holiday{}, false
	}
	sort.Strings(keys)

	date, err := dateutil.ParseDateIn(keys[0], after.Location())
	if err != nil {
		return Holiday{}, false
	}
	return Holiday{Date: date, Name: c.records[keys[0]].Name}, true
}

// Records returns all records sorted by date
func (c *Calendar) Records() []HolidayRecord {
	if c == nil {
		return nil
	}
	out := make([]HolidayRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Merge returns a new calendar keeping c's year with other's records added.
// Records already present in c win.
func (c *Calendar) Merge(other *Calendar) *Calendar {
	merged := NewCalendar(c.Year(), nil)
	if other != nil {
		for key, rec := range other.records {
			merged.records[key] = rec
		}
	}
	if c != nil {
		for key, rec := range c.records {
			merged.records[key] = rec
		}
	}
	return merged
}
