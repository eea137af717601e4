// Package cache memoizes zero-argument computations for a configurable
// time-to-live.
//
// Each key moves through Empty → Fresh → Stale → Fresh. Staleness is checked
// lazily on lookup; there is no background timer. A recomputation runs
// synchronously inside GetOrCompute, and at most one recomputation per key is
// in flight at any time: concurrent callers for the same stale key wait for
// the running computation and share its result. Different keys never block
// each other beyond the short critical section around the entry map.
//
// A failed computation is returned to every waiting caller and leaves the
// previous entry (if any) in place.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ErrTypeMismatch is returned when a key is read with a different type than
// the one it was stored with.
var ErrTypeMismatch = errors.New("cache: value type mismatch")

var (
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by key and result (hit, miss).",
		},
		[]string{"key", "result"},
	)

	recomputeDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_recompute_duration_seconds",
			Help:    "Time spent recomputing a cache entry.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"key"},
	)

	recomputeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_recompute_failures_total",
			Help: "Recomputations that returned an error.",
		},
		[]string{"key"},
	)
)

func init() {
	prometheus.MustRegister(lookups, recomputeDur, recomputeFailures)
}

type entry struct {
	value      any
	computedAt time.Time
}

// Cache is a keyed TTL memoizer. The zero value is not usable; call New.
// A Cache is safe for concurrent use.
type Cache struct {
	clock  clockwork.Clock
	tracer trace.Tracer

	mu      sync.RWMutex
	entries map[string]entry

	flights singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(cc *Cache) {
		if c != nil {
			cc.clock = c
		}
	}
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		clock:   clockwork.NewRealClock(),
		tracer:  otel.Tracer("github.com/tbourn/go-presence-analyzer/internal/cache"),
		entries: make(map[string]entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetOrCompute returns the value cached under key when it is younger than
// ttl. Otherwise it calls fn, stores the result stamped with the current time
// and returns it. A non-positive ttl means every call recomputes.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.fresh(key, ttl); ok {
		lookups.WithLabelValues(key, "hit").Inc()
		return cast[T](key, v)
	}
	lookups.WithLabelValues(key, "miss").Inc()

	v, err, _ := c.flights.Do(key, func() (any, error) {
		// A flight that finished between our check and Do may already
		// have refreshed the entry.
		if v, ok := c.fresh(key, ttl); ok {
			return v, nil
		}
		return c.recompute(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	})
	if err != nil {
		return zero, err
	}
	return cast[T](key, v)
}

func (c *Cache) recompute(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ctx, span := c.tracer.Start(ctx, "cache.recompute", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	start := c.clock.Now()
	v, err := fn(ctx)
	recomputeDur.WithLabelValues(key).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		recomputeFailures.WithLabelValues(key).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: v, computedAt: c.clock.Now()}
	c.mu.Unlock()
	return v, nil
}

func (c *Cache) fresh(key string, ttl time.Duration) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.clock.Since(e.computedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops the entry for key so the next lookup recomputes. A
// recomputation already in flight is not interrupted; callers arriving while
// it runs still join it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Age reports how long ago the entry for key was computed.
func (c *Cache) Age(key string) (time.Duration, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return c.clock.Since(e.computedAt), true
}

func cast[T any](key string, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}
