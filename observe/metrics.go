package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Lookup outcomes recorded by the registry.
const (
	// LookupHit means a cached Document matched the caller's current string.
	LookupHit = "hit"
	// LookupMiss means no Document was cached for the identity.
	LookupMiss = "miss"
	// LookupStale means a cached Document existed but its remembered host
	// string no longer matched and the entry was rebuilt.
	LookupStale = "stale"
)

// Metrics records registry cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one GetOrCreate call with its outcome and duration.
	RecordLookup(ctx context.Context, outcome string, duration time.Duration)

	// RecordEvictions records documents removed by an idle-eviction sweep.
	RecordEvictions(ctx context.Context, n int64)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	lookupCount  metric.Int64Counter
	evictedCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording to the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookupCount, err := meter.Int64Counter(
		"nickdb.registry.lookups",
		metric.WithDescription("Total number of registry lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	evictedCount, err := meter.Int64Counter(
		"nickdb.registry.evictions",
		metric.WithDescription("Total number of documents evicted by idle sweeps"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"nickdb.registry.lookup.duration_ms",
		metric.WithDescription("Registry lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		lookupCount:  lookupCount,
		evictedCount: evictedCount,
		durationHist: durationHist,
	}, nil
}

// RecordLookup records one lookup.
func (m *metricsImpl) RecordLookup(ctx context.Context, outcome string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	m.lookupCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// RecordEvictions records swept documents.
func (m *metricsImpl) RecordEvictions(ctx context.Context, n int64) {
	m.evictedCount.Add(ctx, n)
}

// nopMetrics discards everything.
type nopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordLookup(ctx context.Context, outcome string, duration time.Duration) {}
func (nopMetrics) RecordEvictions(ctx context.Context, n int64)                             {}
