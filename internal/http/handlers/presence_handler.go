// Presence HTTP handlers.
//
// This file exposes the read-only presence endpoints:
//   - GET /users                          (merged user listing, sorted by name)
//   - GET /mean_time_weekday/{user_id}    (mean presence per weekday, seconds)
//   - GET /presence_weekday/{user_id}     (total presence per weekday, with header row)
//   - GET /presence_start_end/{user_id}   (mean arrival and departure per weekday)
//   - GET /get_url_photo/{user_id}        (absolute avatar URL)
//
// Handlers are transport-thin: they validate the path parameter, call the
// presence service, and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
	"github.com/tbourn/go-presence-analyzer/internal/services"
	"github.com/tbourn/go-presence-analyzer/internal/utils"
)

//
// Service contract (context-aware)
//

// PresenceService defines the read operations consumed by HTTP handlers.
//
// Implementations must be safe for concurrent use. Unknown ids are reported
// with services.ErrUserNotFound and unreadable sources with errors matching
// domain.ErrDataSource.
type PresenceService interface {
	// ListUsers returns every known user ordered by display name.
	ListUsers(ctx context.Context) ([]services.UserSummary, error)
	// MeanTimeByWeekday returns the mean presence in seconds per weekday.
	MeanTimeByWeekday(ctx context.Context, userID int) ([]services.WeekdayRow[float64], error)
	// TotalTimeByWeekday returns the total presence in seconds per weekday.
	TotalTimeByWeekday(ctx context.Context, userID int) (services.WeekdayTotals, error)
	// StartEndByWeekday returns the mean arrival and departure per weekday.
	StartEndByWeekday(ctx context.Context, userID int) ([]services.WeekdayRow[services.StartEnd], error)
	// PhotoURL returns the absolute avatar URL of a user.
	PhotoURL(ctx context.Context, userID int) (string, error)
}

//
// Handler wiring
//

// Handlers groups the presence endpoints.
type Handlers struct {
	svc PresenceService
}

// New constructs a Handlers instance bound to the given service.
func New(svc PresenceService) *Handlers {
	return &Handlers{svc: svc}
}

//
// DTOs
//

// PhotoResponse carries the avatar URL of a user.
type PhotoResponse struct {
	URL string `json:"url" example:"https://intranet.example.com/api/images/users/10"`
}

//
// Helpers
//

// userIDParam is the path parameter name shared by all per-user routes.
const userIDParam = "user_id"

// pathUserID parses the user id path parameter, writing a 400 on failure.
func pathUserID(c *gin.Context) (int, bool) {
	id, valid := utils.ParseID(c.Param(userIDParam))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

// serviceError maps a presence service error onto the error envelope.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrDataSource):
		_ = c.Error(err)
		fail(c, http.StatusServiceUnavailable, ErrCodeSourceUnavailable, "data source unavailable")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

//
// Handlers
//

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Description Returns every user that has attendance records, merged with the
// @Description user directory (default name and avatar when absent), sorted by name.
// @Tags        Users
// @Produce     json
//
// @Success     200  {array}   services.UserSummary
// @Failure     503  {object}  handlers.ErrorResponse  "Data source unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, users)
}

// MeanTimeWeekday godoc
// @ID          meanTimeWeekday
// @Summary     Mean presence per weekday
// @Description Returns seven [weekday, seconds] pairs, Monday first. Weekdays
// @Description without records report 0.
// @Tags        Presence
// @Produce     json
//
// @Param       user_id  path  int  true  "User ID"  minimum(0) example(10)
//
// @Success     200  {array}   []interface{}  "e.g. [[\"Mon\",0],[\"Tue\",30047.5],...]"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad user id"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Data source unavailable"
// @Router      /mean_time_weekday/{user_id} [get]
func (h *Handlers) MeanTimeWeekday(c *gin.Context) {
	id, valid := pathUserID(c)
	if !valid {
		return
	}
	rows, err := h.svc.MeanTimeByWeekday(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// PresenceWeekday godoc
// @ID          presenceWeekday
// @Summary     Total presence per weekday
// @Description Returns a header row ["Weekday","Presence (s)"] followed by seven
// @Description [weekday, seconds] pairs, Monday first.
// @Tags        Presence
// @Produce     json
//
// @Param       user_id  path  int  true  "User ID"  minimum(0) example(10)
//
// @Success     200  {array}   []interface{}  "e.g. [[\"Weekday\",\"Presence (s)\"],[\"Mon\",0],...]"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad user id"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Data source unavailable"
// @Router      /presence_weekday/{user_id} [get]
func (h *Handlers) PresenceWeekday(c *gin.Context) {
	id, valid := pathUserID(c)
	if !valid {
		return
	}
	totals, err := h.svc.TotalTimeByWeekday(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, totals)
}

// PresenceStartEnd godoc
// @ID          presenceStartEnd
// @Summary     Mean arrival and departure per weekday
// @Description Returns seven [weekday, [start, end]] entries, Monday first. Times
// @Description are "H:MM:SS"; weekdays without records report [[], []].
// @Tags        Presence
// @Produce     json
//
// @Param       user_id  path  int  true  "User ID"  minimum(0) example(10)
//
// @Success     200  {array}   []interface{}  "e.g. [[\"Mon\",[[],[]]],[\"Tue\",[\"9:39:05\",\"17:59:52\"]],...]"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad user id"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Data source unavailable"
// @Router      /presence_start_end/{user_id} [get]
func (h *Handlers) PresenceStartEnd(c *gin.Context) {
	id, valid := pathUserID(c)
	if !valid {
		return
	}
	rows, err := h.svc.StartEndByWeekday(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// PhotoURL godoc
// @ID          photoURL
// @Summary     Avatar URL
// @Description Returns the absolute avatar URL: the directory host followed by
// @Description the user's avatar path (a default path when the directory lacks the user).
// @Tags        Users
// @Produce     json
//
// @Param       user_id  path  int  true  "User ID"  minimum(0) example(10)
//
// @Success     200  {object}  handlers.PhotoResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad user id"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Data source unavailable"
// @Router      /get_url_photo/{user_id} [get]
func (h *Handlers) PhotoURL(c *gin.Context) {
	id, valid := pathUserID(c)
	if !valid {
		return
	}
	url, err := h.svc.PhotoURL(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, PhotoResponse{URL: url})
}
