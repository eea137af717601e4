// Package services defines the business logic behind the presence API.
// This file centralizes service-level error values so that callers can check
// them with errors.Is and map them to transport results consistently.
//
// Source failures are reported as *domain.SourceError values (matched by
// domain.ErrDataSource) and are not redeclared here.
package services

import "errors"

var (
	// ErrUserNotFound indicates that the requested user id has no attendance
	// records. It is an expected outcome, not a defect.
	ErrUserNotFound = errors.New("user not found")
)
