package obs

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Metrics bundles the counters and histograms emitted by the AHI and
// the plan finaliser. A nil or zero-value *Metrics records nothing;
// NewMetrics wires real instruments from a
// metric.Meter so callers embedding optiq into a larger service can
// point it at their own MeterProvider.
type Metrics struct {
	ahiHits        metric.Int64Counter
	ahiMisses      metric.Int64Counter
	ahiBuilds      metric.Int64Counter
	ahiInvalidated metric.Int64Counter
	finalizeMillis metric.Float64Histogram
}

// NewMetrics creates instruments on the given meter. The instrument
// names follow OpenTelemetry's dotted convention so they compose
// cleanly with a host application's own metrics namespace.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.ahiHits, err = meter.Int64Counter("optiq.ahi.hits",
		metric.WithDescription("adaptive hash index probes that found a matching record")); err != nil {
		return nil, err
	}
	if m.ahiMisses, err = meter.Int64Counter("optiq.ahi.misses",
		metric.WithDescription("adaptive hash index probes that fell through to the B-tree")); err != nil {
		return nil, err
	}
	if m.ahiBuilds, err = meter.Int64Counter("optiq.ahi.builds",
		metric.WithDescription("hash nodes inserted by page builds")); err != nil {
		return nil, err
	}
	if m.ahiInvalidated, err = meter.Int64Counter("optiq.ahi.invalidated",
		metric.WithDescription("hash nodes removed by page invalidation")); err != nil {
		return nil, err
	}
	if m.finalizeMillis, err = meter.Float64Histogram("optiq.planner.finalize_ms",
		metric.WithDescription("wall-clock time spent in plan_finalize")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordHit increments the AHI hit counter.
func (m *Metrics) RecordHit(ctx context.Context) {
	if m == nil || m.ahiHits == nil {
		return
	}
	m.ahiHits.Add(ctx, 1)
}

// RecordMiss increments the AHI miss counter.
func (m *Metrics) RecordMiss(ctx context.Context) {
	if m == nil || m.ahiMisses == nil {
		return
	}
	m.ahiMisses.Add(ctx, 1)
}

// RecordBuild increments the AHI build counter by the number of nodes
// inserted for the page.
func (m *Metrics) RecordBuild(ctx context.Context, nodes int64) {
	if m == nil || m.ahiBuilds == nil {
		return
	}
	m.ahiBuilds.Add(ctx, nodes)
}

// RecordInvalidated increments the count of hash nodes dropped by page
// invalidation.
func (m *Metrics) RecordInvalidated(ctx context.Context, nodes int64) {
	if m == nil || m.ahiInvalidated == nil {
		return
	}
	m.ahiInvalidated.Add(ctx, nodes)
}

// RecordFinalizeDuration records the wall-clock time, in milliseconds,
// spent in a single plan_finalize call.
func (m *Metrics) RecordFinalizeDuration(ctx context.Context, ms float64) {
	if m == nil || m.finalizeMillis == nil {
		return
	}
	m.finalizeMillis.Record(ctx, ms)
}
