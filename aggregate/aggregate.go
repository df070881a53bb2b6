// Package aggregate assembles per-account and cross-account analytics from a
// market data source. Every call is request-scoped: inputs are read-only and
// a failing account never aborts the others.
package aggregate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/portfolio/broker"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs the aggregations against a Connector. It holds only
// immutable settings and is safe for concurrent use.
type Aggregator struct {
	connector   broker.Connector
	location    *time.Location
	concurrency int
	now         func() time.Time
	logger      zerolog.Logger
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithLocation sets the zone used to format timestamps and to bucket daily
// samples.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithConcurrency fetches up to n accounts at once. Results keep registry
// order regardless of completion order.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger for per-account failures. A logger carried by
// the request context takes precedence.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// New returns an Aggregator reading from c.
func New(c broker.Connector, opts ...Option) *Aggregator {
	a := &Aggregator{
		connector:   c,
		location:    time.Local,
		concurrency: 1,
		now:         time.Now,
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// log returns the logger attached to ctx, or the Aggregator's own when ctx
// carries none.
func (a *Aggregator) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.logger
}

// forEach calls fn for every index in [0, n). With concurrency above one the
// calls run in parallel; fn must only write to its own slot.
func (a *Aggregator) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if a.concurrency <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(ctx, i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
