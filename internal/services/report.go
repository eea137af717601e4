package services

import (
	"encoding/json"

	"github.com/tbourn/go-presence-analyzer/internal/stats"
)

// UserSummary is one entry of the user listing.
type UserSummary struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// WeekdayRow pairs a weekday label with a value. It serializes as a two
// element JSON array, e.g. ["Mon", 28800].
type WeekdayRow[T any] struct {
	Weekday string
	Value   T
}

// MarshalJSON implements json.Marshaler.
func (r WeekdayRow[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Weekday, r.Value})
}

// StartEnd is the mean arrival and departure for one weekday. Empty weekdays
// serialize as [[], []].
type StartEnd struct {
	Start stats.ClockMean
	End   stats.ClockMean
}

// MarshalJSON implements json.Marshaler.
func (s StartEnd) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]stats.ClockMean{s.Start, s.End})
}

// WeekdayTotals is the total presence per weekday preceded by a header row.
// It serializes as one flat array: [["Weekday","Presence (s)"],["Mon",0],...].
type WeekdayTotals struct {
	Header WeekdayRow[string]
	Rows   []WeekdayRow[int]
}

// MarshalJSON implements json.Marshaler.
func (t WeekdayTotals) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for _, r := range t.Rows {
		out = append(out, r)
	}
	return json.Marshal(out)
}
