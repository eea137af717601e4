// Package stats derives per-weekday statistics from one user's dated
// attendance intervals.
//
// Every grouping returns exactly domain.DaysInWeek buckets, Monday first.
// Durations are end minus start in seconds and are never clamped, so an
// interval whose end precedes its start contributes a negative value.
package stats

import (
	"encoding/json"
	"fmt"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
)

// Buckets holds the values contributed by each weekday, index 0 = Monday.
type Buckets [domain.DaysInWeek][]int

// SecondsSinceMidnight is a convenience wrapper over TimeOfDay.
func SecondsSinceMidnight(t domain.TimeOfDay) int { return t.SecondsSinceMidnight() }

// Interval returns end - start in seconds. The result is negative when end is
// earlier than start.
func Interval(start, end domain.TimeOfDay) int {
	return end.SecondsSinceMidnight() - start.SecondsSinceMidnight()
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(Sum(xs)) / float64(len(xs))
}

// Sum returns the total of xs, or 0 for an empty slice.
func Sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// GroupByWeekday buckets the duration of every interval by its weekday.
func GroupByWeekday(days domain.DateMap) Buckets {
	var out Buckets
	for date, iv := range days {
		wd := date.ISOWeekday()
		out[wd] = append(out[wd], Interval(iv.Start, iv.End))
	}
	return out
}

// MeanByWeekday maps each duration bucket to its mean.
func MeanByWeekday(days domain.DateMap) [domain.DaysInWeek]float64 {
	var out [domain.DaysInWeek]float64
	for i, b := range GroupByWeekday(days) {
		out[i] = Mean(b)
	}
	return out
}

// SumByWeekday maps each duration bucket to its total.
func SumByWeekday(days domain.DateMap) [domain.DaysInWeek]int {
	var out [domain.DaysInWeek]int
	for i, b := range GroupByWeekday(days) {
		out[i] = Sum(b)
	}
	return out
}

// ClockMean is the mean of a bucket of seconds-since-midnight values. An empty
// bucket has Valid == false and serializes as an empty JSON array, matching
// the historic wire format; a non-empty bucket serializes as "H:MM:SS".
type ClockMean struct {
	Seconds float64
	Valid   bool
}

// String returns the "H:MM:SS" form, or "" for an empty bucket.
func (m ClockMean) String() string {
	if !m.Valid {
		return ""
	}
	return SecondsToClock(m.Seconds)
}

// MarshalJSON implements json.Marshaler.
func (m ClockMean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("[]"), nil
	}
	return json.Marshal(m.String())
}

// GroupStartEnd returns the mean start and mean end time of day per weekday.
func GroupStartEnd(days domain.DateMap) (starts, ends [domain.DaysInWeek]ClockMean) {
	var s, e Buckets
	for date, iv := range days {
		wd := date.ISOWeekday()
		s[wd] = append(s[wd], iv.Start.SecondsSinceMidnight())
		e[wd] = append(e[wd], iv.End.SecondsSinceMidnight())
	}
	for i := range s {
		if len(s[i]) > 0 {
			starts[i] = ClockMean{Seconds: Mean(s[i]), Valid: true}
			ends[i] = ClockMean{Seconds: Mean(e[i]), Valid: true}
		}
	}
	return starts, ends
}

// SecondsToClock formats seconds since midnight as "H:MM:SS". Fractional
// seconds are truncated; the hour is not zero-padded.
func SecondsToClock(seconds float64) string {
	total := int(seconds)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, total%3600/60, total%60)
}
