// Package attendance parses the raw presence export into an immutable
// domain.AttendanceTable.
//
// The source is a comma-delimited text file with one row per user and date:
//
//	user_id,date,start,end
//	10,2013-09-10,09:39:05,10:48:46
//
// Rows that do not have exactly four fields (headers, footers, blank lines)
// are skipped silently. Rows with the right shape but an unparsable field are
// dropped and reported as RowError diagnostics in the returned Report; they
// never fail the parse. Like the search index this package replaces, it does
// no logging of its own: callers decide what to do with the Report.
package attendance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
)

// SourceName identifies the attendance source in domain.SourceError values.
const SourceName = "attendance"

const fieldsPerRow = 4

// RowError describes a well-shaped row that was dropped because one of its
// fields failed to parse.
type RowError struct {
	Line  int    // 1-based line number in the source
	Field string // user_id, date, start or end
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: invalid %s: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Report summarizes what a parse kept and what it dropped.
type Report struct {
	Rows      int        // rows accepted into the table
	Skipped   int        // rows ignored for having the wrong field count
	Dropped   []RowError // well-shaped rows with unparsable fields
	Overwrote int        // rows that replaced an earlier (user, date) entry
}

// Option customizes the reader.
type Option func(*config)

type config struct {
	comma rune
}

func defaultConfig() config {
	return config{comma: ','}
}

// WithDelimiter overrides the field delimiter (default ',').
func WithDelimiter(r rune) Option {
	return func(c *config) {
		if r != 0 && r != '\n' && r != '\r' && r != '"' {
			c.comma = r
		}
	}
}

// Load opens the file at path and parses it. A file that cannot be opened or
// read yields a *domain.SourceError.
func Load(path string, opts ...Option) (domain.AttendanceTable, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, &domain.SourceError{Source: SourceName, Path: path, Err: err}
	}
	defer f.Close()

	table, rep, err := Parse(f, opts...)
	if err != nil {
		var se *domain.SourceError
		if errors.As(err, &se) && se.Path == "" {
			se.Path = path
		}
		return nil, rep, err
	}
	return table, rep, nil
}

// Parse reads every row from r. Multiple rows for the same user and date
// overwrite each other; the last one wins.
func Parse(r io.Reader, opts ...Option) (domain.AttendanceTable, Report, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	cr := csv.NewReader(r)
	cr.Comma = cfg.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	table := make(domain.AttendanceTable)
	var rep Report

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				// Malformed quoting only affects this row.
				rep.Dropped = append(rep.Dropped, RowError{Line: pe.Line, Field: "row", Err: pe.Err})
				continue
			}
			return nil, rep, &domain.SourceError{Source: SourceName, Err: err}
		}
		line, _ := cr.FieldPos(0)

		if len(rec) != fieldsPerRow {
			rep.Skipped++
			continue
		}

		userID, date, iv, rowErr := parseRow(rec)
		if rowErr != nil {
			rowErr.Line = line
			rep.Dropped = append(rep.Dropped, *rowErr)
			continue
		}

		days, ok := table[userID]
		if !ok {
			days = make(domain.DateMap)
			table[userID] = days
		}
		if _, dup := days[date]; dup {
			rep.Overwrote++
		}
		days[date] = iv
		rep.Rows++
	}
	return table, rep, nil
}

func parseRow(rec []string) (int, domain.Date, domain.IntervalRecord, *RowError) {
	userID, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return 0, domain.Date{}, domain.IntervalRecord{}, &RowError{Field: "user_id", Err: err}
	}
	date, err := domain.ParseDate(strings.TrimSpace(rec[1]))
	if err != nil {
		return 0, domain.Date{}, domain.IntervalRecord{}, &RowError{Field: "date", Err: err}
	}
	start, err := domain.ParseTimeOfDay(strings.TrimSpace(rec[2]))
	if err != nil {
		return 0, domain.Date{}, domain.IntervalRecord{}, &RowError{Field: "start", Err: err}
	}
	end, err := domain.ParseTimeOfDay(strings.TrimSpace(rec[3]))
	if err != nil {
		return 0, domain.Date{}, domain.IntervalRecord{}, &RowError{Field: "end", Err: err}
	}
	return userID, date, domain.IntervalRecord{Start: start, End: end}, nil
}
