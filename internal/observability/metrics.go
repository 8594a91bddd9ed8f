package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dshills/keystrike/internal/input"
)

// MeterName is the instrumentation scope of keystrike metrics.
const MeterName = "keystrike"

// Recorder records dispatch metrics with OpenTelemetry.
type Recorder struct {
	ctx         context.Context
	events      metric.Int64Counter
	cycles      metric.Int64Counter
	resolutions metric.Int64Counter
	overflows   metric.Int64Counter
}

var _ input.Recorder = (*Recorder)(nil)

// NewRecorder creates the instruments on the given meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	events, err := meter.Int64Counter("keystrike.events",
		metric.WithDescription("Number of key events dispatched"),
	)
	if err != nil {
		return nil, err
	}

	cycles, err := meter.Int64Counter("keystrike.cycles",
		metric.WithDescription("Number of scan cycles"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter("keystrike.resolutions",
		metric.WithDescription("Number of pending events resolved by plugins"),
	)
	if err != nil {
		return nil, err
	}

	overflows, err := meter.Int64Counter("keystrike.dispatch_depth_overflows",
		metric.WithDescription("Number of events dropped by the dispatch depth bound"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		ctx:         context.Background(),
		events:      events,
		cycles:      cycles,
		resolutions: resolutions,
		overflows:   overflows,
	}, nil
}

// NewGlobalRecorder returns a recorder on the global meter provider. If the
// instruments cannot be created, a NoopRecorder is returned.
//
// Configure the provider before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewGlobalRecorder() input.Recorder {
	r, err := NewRecorder(otel.Meter(MeterName))
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopRecorder{}
	}
	return r
}

// RecordEvent records one dispatched event and its verdict.
func (r *Recorder) RecordEvent(res input.Result, injected bool) {
	r.events.Add(r.ctx, 1, metric.WithAttributes(
		attribute.String("result", res.String()),
		attribute.Bool("injected", injected),
	))
}

// RecordCycle records one scan cycle.
func (r *Recorder) RecordCycle() {
	r.cycles.Add(r.ctx, 1)
}

// RecordResolution records a plugin resolving its pending event.
func (r *Recorder) RecordResolution(resolver, outcome string) {
	r.resolutions.Add(r.ctx, 1, metric.WithAttributes(
		attribute.String("resolver", resolver),
		attribute.String("outcome", outcome),
	))
}

// RecordDepthOverflow records an event dropped at the depth bound.
func (r *Recorder) RecordDepthOverflow() {
	r.overflows.Add(r.ctx, 1)
}
