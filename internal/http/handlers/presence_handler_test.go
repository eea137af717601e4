package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
	"github.com/tbourn/go-presence-analyzer/internal/services"
	"github.com/tbourn/go-presence-analyzer/internal/stats"
)

// ---------- flexible service stub ----------

type stubPresence struct {
	listUsers func(context.Context) ([]services.UserSummary, error)
	mean      func(context.Context, int) ([]services.WeekdayRow[float64], error)
	total     func(context.Context, int) (services.WeekdayTotals, error)
	startEnd  func(context.Context, int) ([]services.WeekdayRow[services.StartEnd], error)
	photo     func(context.Context, int) (string, error)

	lastID int
}

func (s *stubPresence) ListUsers(ctx context.Context) ([]services.UserSummary, error) {
	if s.listUsers != nil {
		return s.listUsers(ctx)
	}
	return []services.UserSummary{}, nil
}

func (s *stubPresence) MeanTimeByWeekday(ctx context.Context, id int) ([]services.WeekdayRow[float64], error) {
	s.lastID = id
	if s.mean != nil {
		return s.mean(ctx, id)
	}
	return nil, services.ErrUserNotFound
}

func (s *stubPresence) TotalTimeByWeekday(ctx context.Context, id int) (services.WeekdayTotals, error) {
	s.lastID = id
	if s.total != nil {
		return s.total(ctx, id)
	}
	return services.WeekdayTotals{}, services.ErrUserNotFound
}

func (s *stubPresence) StartEndByWeekday(ctx context.Context, id int) ([]services.WeekdayRow[services.StartEnd], error) {
	s.lastID = id
	if s.startEnd != nil {
		return s.startEnd(ctx, id)
	}
	return nil, services.ErrUserNotFound
}

func (s *stubPresence) PhotoURL(ctx context.Context, id int) (string, error) {
	s.lastID = id
	if s.photo != nil {
		return s.photo(ctx, id)
	}
	return "", services.ErrUserNotFound
}

// ---------- helpers ----------

func newRouter(svc PresenceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-test")
		c.Next()
	})
	h := New(svc)
	r.GET("/users", h.ListUsers)
	r.GET("/mean_time_weekday/:user_id", h.MeanTimeWeekday)
	r.GET("/presence_weekday/:user_id", h.PresenceWeekday)
	r.GET("/presence_start_end/:user_id", h.PresenceStartEnd)
	r.GET("/get_url_photo/:user_id", h.PhotoURL)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, w.Body.String())
	}
	return er
}

func weekdayRows[T any](vals [7]T) []services.WeekdayRow[T] {
	out := make([]services.WeekdayRow[T], 0, 7)
	for i, v := range vals {
		out = append(out, services.WeekdayRow[T]{Weekday: domain.WeekdayLabels[i], Value: v})
	}
	return out
}

// ---------- tests ----------

func TestListUsers_OK(t *testing.T) {
	svc := &stubPresence{listUsers: func(context.Context) ([]services.UserSummary, error) {
		return []services.UserSummary{
			{UserID: 11, Name: "Maciej D.", Avatar: "/api/images/users/11"},
			{UserID: 10, Name: "Żaneta K.", Avatar: "/api/images/users/10"},
		}, nil
	}}
	w := get(newRouter(svc), "/users")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	want := `[{"user_id":11,"name":"Maciej D.","avatar":"/api/images/users/11"},{"user_id":10,"name":"Żaneta K.","avatar":"/api/images/users/10"}]`
	if got := w.Body.String(); got != want {
		t.Fatalf("body = %s", got)
	}
}

func TestWeekdayEndpoints_Shapes(t *testing.T) {
	svc := &stubPresence{
		mean: func(context.Context, int) ([]services.WeekdayRow[float64], error) {
			return weekdayRows([7]float64{0, 30047.5, 0, 0, 0, 0, 0}), nil
		},
		total: func(context.Context, int) (services.WeekdayTotals, error) {
			return services.WeekdayTotals{
				Header: services.TotalsHeader,
				Rows:   weekdayRows([7]int{0, 30047, 0, 0, 0, 0, 0}),
			}, nil
		},
		startEnd: func(context.Context, int) ([]services.WeekdayRow[services.StartEnd], error) {
			var v [7]services.StartEnd
			v[1] = services.StartEnd{
				Start: stats.ClockMean{Seconds: 34745, Valid: true},
				End:   stats.ClockMean{Seconds: 64792, Valid: true},
			}
			return weekdayRows(v), nil
		},
	}
	r := newRouter(svc)

	cases := []struct {
		path string
		want string
	}{
		{"/mean_time_weekday/10", `[["Mon",0],["Tue",30047.5],["Wed",0],["Thu",0],["Fri",0],["Sat",0],["Sun",0]]`},
		{"/presence_weekday/10", `[["Weekday","Presence (s)"],["Mon",0],["Tue",30047],["Wed",0],["Thu",0],["Fri",0],["Sat",0],["Sun",0]]`},
		{"/presence_start_end/10", `[["Mon",[[],[]]],["Tue",["9:39:05","17:59:52"]],["Wed",[[],[]]],["Thu",[[],[]]],["Fri",[[],[]]],["Sat",[[],[]]],["Sun",[[],[]]]]`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := get(r, tc.path)
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if got := w.Body.String(); got != tc.want {
				t.Fatalf("body = %s\nwant  %s", got, tc.want)
			}
			if svc.lastID != 10 {
				t.Fatalf("service got id %d", svc.lastID)
			}
		})
	}
}

func TestPhotoURL_OK(t *testing.T) {
	svc := &stubPresence{photo: func(_ context.Context, id int) (string, error) {
		return fmt.Sprintf("https://intranet.example.com/api/images/users/%d", id), nil
	}}
	w := get(newRouter(svc), "/get_url_photo/10")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body PhotoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.URL != "https://intranet.example.com/api/images/users/10" {
		t.Fatalf("url = %q", body.URL)
	}
}

func TestPerUserEndpoints_BadID(t *testing.T) {
	r := newRouter(&stubPresence{})
	for _, p := range []string{
		"/mean_time_weekday/abc",
		"/presence_weekday/-1",
		"/presence_start_end/1.5",
		"/get_url_photo/99999999999999999999999",
	} {
		w := get(r, p)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
		if er := decodeError(t, w); er.Code != ErrCodeBadRequest || er.RequestID != "rid-test" {
			t.Fatalf("%s: unexpected body %+v", p, er)
		}
	}
}

func TestPerUserEndpoints_NotFound(t *testing.T) {
	r := newRouter(&stubPresence{})
	for _, p := range []string{
		"/mean_time_weekday/9",
		"/presence_weekday/9",
		"/presence_start_end/9",
		"/get_url_photo/9",
	} {
		w := get(r, p)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
		if er := decodeError(t, w); er.Code != ErrCodeNotFound || er.Message != "user not found" {
			t.Fatalf("%s: unexpected body %+v", p, er)
		}
	}
}

func TestServiceErrors_Mapping(t *testing.T) {
	srcErr := &domain.SourceError{Source: "attendance", Path: "/data/x.csv", Err: errors.New("no such file")}
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"source", srcErr, http.StatusServiceUnavailable, ErrCodeSourceUnavailable},
		{"wrapped source", fmt.Errorf("load: %w", srcErr), http.StatusServiceUnavailable, ErrCodeSourceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPresence{
				listUsers: func(context.Context) ([]services.UserSummary, error) { return nil, tc.err },
			}
			w := get(newRouter(svc), "/users")
			if w.Code != tc.status {
				t.Fatalf("status=%d, want %d", w.Code, tc.status)
			}
			er := decodeError(t, w)
			if er.Code != tc.code {
				t.Fatalf("code=%q, want %q", er.Code, tc.code)
			}
			if er.Message == tc.err.Error() {
				t.Fatalf("internal error text must not leak: %q", er.Message)
			}
		})
	}
}
