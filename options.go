package nickdb

import (
	"time"

	"github.com/jonwraymond/nickdb/observe"
	"github.com/jonwraymond/nickdb/registry"
)

type options struct {
	cfg     registry.Config
	regOpts []registry.Option
	tracer  observe.Tracer
}

// Option configures a DB.
type Option func(*options)

// WithDelimiter sets the token delimiter applied to every document.
// Default: '^'.
func WithDelimiter(delimiter rune) Option {
	return func(o *options) { o.cfg.Delimiter = delimiter }
}

// WithIdleAfter sets how long a document may go untouched before a sweep
// may evict it. Default: 1 minute.
func WithIdleAfter(d time.Duration) Option {
	return func(o *options) { o.cfg.IdleAfter = d }
}

// WithSweepStride sets the sweep sampling stride. 1 means a full scan.
// Default: 2.
func WithSweepStride(n int) Option {
	return func(o *options) { o.cfg.SweepStride = n }
}

// WithLogger wires a logger into the registry. Default: no-op.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.regOpts = append(o.regOpts, registry.WithLogger(l)) }
}

// WithMetrics wires a metrics recorder into the registry. Default: no-op.
func WithMetrics(m observe.Metrics) Option {
	return func(o *options) { o.regOpts = append(o.regOpts, registry.WithMetrics(m)) }
}

// WithTracer wires a tracer around document lookups. Default: no-op.
func WithTracer(t observe.Tracer) Option {
	return func(o *options) { o.tracer = t }
}
