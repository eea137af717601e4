// Package fetch downloads the intranet user directory and replaces the local
// copy atomically.
//
// A download is written to a temporary file in the destination directory,
// parsed, and only then renamed over the destination, so readers never see a
// partial or malformed document. A failed attempt leaves the previous file
// untouched.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-presence-analyzer/internal/directory"
)

// maxDocumentBytes caps a downloaded directory document.
const maxDocumentBytes = 32 << 20

// ErrStatus is wrapped when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

var attempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "directory_fetch_total",
		Help: "Directory fetch attempts by result (ok, error).",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(attempts)
}

// Fetcher copies the document at URL to Dest.
type Fetcher struct {
	URL     string
	Dest    string
	Timeout time.Duration

	Client *http.Client
	Clock  clockwork.Clock
	Log    zerolog.Logger

	tracer trace.Tracer
}

// New returns a Fetcher with a default HTTP client and the real clock.
func New(url, dest string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		URL:     url,
		Dest:    dest,
		Timeout: timeout,
		Client:  http.DefaultClient,
		Clock:   clockwork.NewRealClock(),
		Log:     log.Logger,
		tracer:  otel.Tracer("github.com/tbourn/go-presence-analyzer/internal/fetch"),
	}
}

// Once performs a single download-validate-replace cycle.
func (f *Fetcher) Once(ctx context.Context) (err error) {
	if f.tracer == nil {
		f.tracer = otel.Tracer("github.com/tbourn/go-presence-analyzer/internal/fetch")
	}
	ctx, span := f.tracer.Start(ctx, "directory.fetch", trace.WithAttributes(
		attribute.String("url", f.URL),
		attribute.String("dest", f.Dest),
	))
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		attempts.WithLabelValues(result).Inc()
		span.End()
	}()

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	start := f.Clock.Now()
	n, err := f.download(ctx)
	if err != nil {
		return err
	}
	f.Log.Info().
		Str("url", f.URL).
		Str("dest", f.Dest).
		Int64("bytes", n).
		Dur("took", f.Clock.Since(start)).
		Msg("directory refreshed")
	return nil
}

func (f *Fetcher) download(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", f.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("get %s: %w %d", f.URL, ErrStatus, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Dest), ".users-*.xml")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDocumentBytes))
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write temp: %w", err)
	}

	if _, err := directory.Load(tmpName); err != nil {
		return 0, fmt.Errorf("validate download: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, f.Dest); err != nil {
		return 0, fmt.Errorf("replace %s: %w", f.Dest, err)
	}
	committed = true
	return n, nil
}

// Run fetches once, then every interval until ctx is done. A non-positive
// interval makes Run equivalent to Once. Failures inside the loop are logged
// and retried on the next tick; only the first attempt's error is returned.
func (f *Fetcher) Run(ctx context.Context, interval time.Duration) error {
	if err := f.Once(ctx); err != nil || interval <= 0 {
		return err
	}

	t := f.Clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.Chan():
			if err := f.Once(ctx); err != nil {
				f.Log.Error().Err(err).Str("url", f.URL).Msg("directory fetch failed")
			}
		}
	}
}
