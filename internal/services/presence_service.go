// Package services – PresenceService
//
// This file implements the PresenceService, the single entry point the HTTP
// layer uses to read attendance statistics. It owns no state of its own: the
// parsed attendance table and the parsed user directory both live in a shared
// TTL cache, so a source file changed on disk becomes visible once its entry
// expires (or the cache is purged).
//
// Parse diagnostics are logged here rather than in the parsers, and a user id
// missing from the attendance table is reported as ErrUserNotFound.
package services

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/go-presence-analyzer/internal/attendance"
	"github.com/tbourn/go-presence-analyzer/internal/cache"
	"github.com/tbourn/go-presence-analyzer/internal/directory"
	"github.com/tbourn/go-presence-analyzer/internal/domain"
	"github.com/tbourn/go-presence-analyzer/internal/stats"
)

// Cache keys of the two memoized sources.
const (
	KeyAttendance = "attendance"
	KeyDirectory  = "directory"
)

// TotalsHeader is the pseudo-row that precedes weekday totals.
var TotalsHeader = WeekdayRow[string]{Weekday: "Weekday", Value: "Presence (s)"}

// rowsDropped counts attendance rows rejected by the parser per refresh.
var rowsDropped = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "attendance_rows_dropped_total",
	Help: "Attendance rows dropped because a field failed to parse.",
})

func init() {
	prometheus.MustRegister(rowsDropped)
}

// AttendanceLoader reads the attendance source at path.
type AttendanceLoader func(path string) (domain.AttendanceTable, attendance.Report, error)

// DirectoryLoader reads the directory source at path.
type DirectoryLoader func(path string) (*directory.Directory, error)

// PresenceService answers per-user weekday statistics.
type PresenceService struct {
	// Cache memoizes the parsed sources.
	Cache *cache.Cache

	// AttendancePath and DirectoryPath locate the raw sources.
	AttendancePath string
	DirectoryPath  string

	// AttendanceTTL and DirectoryTTL bound how stale a parsed source may be.
	AttendanceTTL time.Duration
	DirectoryTTL  time.Duration

	// NameLocale drives the collation used to sort users by name.
	NameLocale language.Tag

	// LoadAttendance and LoadDirectory are the source readers; tests swap them.
	LoadAttendance AttendanceLoader
	LoadDirectory  DirectoryLoader

	// Log receives parse diagnostics.
	Log zerolog.Logger
}

// NewPresenceService constructs a PresenceService reading the given files,
// with ten-minute TTLs and Polish name collation.
func NewPresenceService(c *cache.Cache, attendancePath, directoryPath string) *PresenceService {
	if c == nil {
		c = cache.New()
	}
	return &PresenceService{
		Cache:          c,
		AttendancePath: attendancePath,
		DirectoryPath:  directoryPath,
		AttendanceTTL:  10 * time.Minute,
		DirectoryTTL:   10 * time.Minute,
		NameLocale:     language.Polish,
		LoadAttendance: func(p string) (domain.AttendanceTable, attendance.Report, error) { return attendance.Load(p) },
		LoadDirectory:  directory.Load,
		Log:            log.Logger,
	}
}

// Attendance returns the current attendance table.
func (s *PresenceService) Attendance(ctx context.Context) (domain.AttendanceTable, error) {
	return cache.GetOrCompute(ctx, s.Cache, KeyAttendance, s.AttendanceTTL, func(context.Context) (domain.AttendanceTable, error) {
		table, rep, err := s.LoadAttendance(s.AttendancePath)
		if err != nil {
			return nil, err
		}
		s.logReport(rep)
		return table, nil
	})
}

// Directory returns the current user directory.
func (s *PresenceService) Directory(ctx context.Context) (*directory.Directory, error) {
	return cache.GetOrCompute(ctx, s.Cache, KeyDirectory, s.DirectoryTTL, func(context.Context) (*directory.Directory, error) {
		return s.LoadDirectory(s.DirectoryPath)
	})
}

func (s *PresenceService) logReport(rep attendance.Report) {
	for _, re := range rep.Dropped {
		s.Log.Debug().
			Int("line", re.Line).
			Str("field", re.Field).
			Err(re.Err).
			Msg("problem with attendance line")
	}
	if n := len(rep.Dropped); n > 0 {
		rowsDropped.Add(float64(n))
		s.Log.Warn().
			Str("path", s.AttendancePath).
			Int("dropped", n).
			Int("rows", rep.Rows).
			Msg("attendance rows dropped")
	}
	s.Log.Info().
		Str("path", s.AttendancePath).
		Int("rows", rep.Rows).
		Int("skipped", rep.Skipped).
		Int("overwrote", rep.Overwrote).
		Msg("attendance source parsed")
}

// Identities merges every user id seen in the attendance table with the
// directory, applying default metadata for ids the directory lacks.
func (s *PresenceService) Identities(ctx context.Context) (map[int]domain.IdentityEntry, error) {
	table, err := s.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	return directory.Merge(table.UserIDs(), dir.Users), nil
}

// ListUsers returns every known user ordered by display name (locale-aware),
// ties broken by id.
func (s *PresenceService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	ids, err := s.Identities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(ids))
	for id, e := range ids {
		out = append(out, UserSummary{UserID: id, Name: e.Name, Avatar: e.Avatar})
	}

	// Collators keep internal buffers; one per call.
	col := collate.New(s.NameLocale, collate.IgnoreCase)
	sort.Slice(out, func(i, j int) bool {
		if c := col.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *PresenceService) userDays(ctx context.Context, userID int) (domain.DateMap, error) {
	table, err := s.Attendance(ctx)
	if err != nil {
		return nil, err
	}
	days, ok := table[userID]
	if !ok {
		s.Log.Debug().Int("user_id", userID).Msg("user not found")
		return nil, ErrUserNotFound
	}
	return days, nil
}

// MeanTimeByWeekday returns the mean presence duration in seconds per weekday.
func (s *PresenceService) MeanTimeByWeekday(ctx context.Context, userID int) ([]WeekdayRow[float64], error) {
	days, err := s.userDays(ctx, userID)
	if err != nil {
		return nil, err
	}
	means := stats.MeanByWeekday(days)
	out := make([]WeekdayRow[float64], 0, domain.DaysInWeek)
	for i, m := range means {
		out = append(out, WeekdayRow[float64]{Weekday: domain.WeekdayLabels[i], Value: m})
	}
	return out, nil
}

// TotalTimeByWeekday returns the total presence in seconds per weekday.
func (s *PresenceService) TotalTimeByWeekday(ctx context.Context, userID int) (WeekdayTotals, error) {
	days, err := s.userDays(ctx, userID)
	if err != nil {
		return WeekdayTotals{}, err
	}
	sums := stats.SumByWeekday(days)
	rows := make([]WeekdayRow[int], 0, domain.DaysInWeek)
	for i, total := range sums {
		rows = append(rows, WeekdayRow[int]{Weekday: domain.WeekdayLabels[i], Value: total})
	}
	return WeekdayTotals{Header: TotalsHeader, Rows: rows}, nil
}

// StartEndByWeekday returns the mean arrival and departure per weekday.
func (s *PresenceService) StartEndByWeekday(ctx context.Context, userID int) ([]WeekdayRow[StartEnd], error) {
	days, err := s.userDays(ctx, userID)
	if err != nil {
		return nil, err
	}
	starts, ends := stats.GroupStartEnd(days)
	out := make([]WeekdayRow[StartEnd], 0, domain.DaysInWeek)
	for i := range starts {
		out = append(out, WeekdayRow[StartEnd]{
			Weekday: domain.WeekdayLabels[i],
			Value:   StartEnd{Start: starts[i], End: ends[i]},
		})
	}
	return out, nil
}

// PhotoURL returns the absolute avatar URL of a user: the directory host
// followed verbatim by the avatar path.
func (s *PresenceService) PhotoURL(ctx context.Context, userID int) (string, error) {
	ids, err := s.Identities(ctx)
	if err != nil {
		return "", err
	}
	entry, ok := ids[userID]
	if !ok {
		s.Log.Debug().Int("user_id", userID).Msg("user not found")
		return "", ErrUserNotFound
	}
	dir, err := s.Directory(ctx)
	if err != nil {
		return "", err
	}
	host, err := dir.ResolveHost()
	if err != nil {
		return "", err
	}
	return host + entry.Avatar, nil
}
