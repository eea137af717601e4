// Package domain defines the in-memory data model shared by the attendance
// parser, the weekday aggregator, the identity directory, and the service
// layer. All values are plain data: they carry no locks and are never mutated
// after a source has been parsed.
package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a naive wall-clock time with second precision.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses an "HH:MM:SS" value. A single-digit hour is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// SecondsSinceMidnight returns the number of seconds elapsed since 00:00:00.
func (t TimeOfDay) SecondsSinceMidnight() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// String formats the time as "HH:MM:SS".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Date is a calendar date without time zone. It is comparable and used as a
// map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a "YYYY-MM-DD" value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// ISOWeekday returns the weekday index with Monday = 0 and Sunday = 6.
func (d Date) ISOWeekday() int {
	wd := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IntervalRecord is one user's arrival/departure pair for a single date.
// End is not required to be after Start.
type IntervalRecord struct {
	Start TimeOfDay
	End   TimeOfDay
}

// DateMap holds at most one interval per calendar date.
type DateMap map[Date]IntervalRecord

// AttendanceTable maps a user id to that user's dated intervals. A table is
// built once per parse and treated as read-only afterwards.
type AttendanceTable map[int]DateMap

// UserIDs returns the set of user ids present in the table.
func (t AttendanceTable) UserIDs() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	return ids
}

// DaysInWeek is the number of weekday buckets.
const DaysInWeek = 7

// WeekdayLabels are the abbreviated weekday names indexed by ISO weekday
// (Monday first).
var WeekdayLabels = [DaysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
