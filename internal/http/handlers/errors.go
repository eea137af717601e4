// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These codes give clients a stable, machine-readable error taxonomy that
// supplements the human-readable message. Every error response carries one of
// them together with the HTTP status.
//
// Mapping used by the presence endpoints:
//   - bad_request        400  user id is not a non-negative integer
//   - not_found          404  user id has no attendance records
//   - source_unavailable 503  a data source could not be read or is malformed
//   - internal_error     500  anything else
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "source_unavailable",
//	  "message": "data source unavailable"
//	}
package handlers

const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
	ErrCodeInternal          = "internal_error"
	ErrCodeSourceUnavailable = "source_unavailable"
)
