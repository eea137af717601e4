package domain

import (
	"errors"
	"fmt"
)

// ErrDataSource is the sentinel matched by every SourceError. Callers check it
// with errors.Is to distinguish an unreadable source from other failures.
var ErrDataSource = errors.New("data source unavailable")

// SourceError reports that a raw source could not be opened or lacks a
// required structural element.
type SourceError struct {
	Source string // "attendance" or "directory"
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s source: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s source %q: %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDataSource) true for any SourceError.
func (e *SourceError) Is(target error) bool { return target == ErrDataSource }
