package app

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/observability"
)

// meterState holds the metrics recorder and, when the application created
// its own provider, the reader used to log totals at shutdown.
type meterState struct {
	recorder input.Recorder
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func newMeterState(cfg config.MetricsConfig, provider metric.MeterProvider) (*meterState, error) {
	switch {
	case !cfg.Enabled:
		return &meterState{recorder: observability.NoopRecorder{}}, nil
	case cfg.Global && provider == nil:
		return &meterState{recorder: observability.NewGlobalRecorder()}, nil
	}

	m := &meterState{}
	if provider == nil {
		m.reader = sdkmetric.NewManualReader()
		m.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(m.reader))
		provider = m.provider
	}

	rec, err := observability.NewRecorder(provider.Meter(observability.MeterName))
	if err != nil {
		return nil, err
	}
	m.recorder = rec
	return m, nil
}

// Totals collects every counter of an owned provider, summed over
// attributes. It returns nil when metrics are off or the provider belongs
// to the caller.
func (m *meterState) Totals(ctx context.Context) (map[string]int64, error) {
	if m == nil || m.reader == nil {
		return nil, nil
	}
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			sum, ok := mt.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[mt.Name] += dp.Value
			}
		}
	}
	return totals, nil
}

func (m *meterState) shutdown(ctx context.Context, logger *slog.Logger) {
	if m == nil || m.provider == nil {
		return
	}
	if totals, err := m.Totals(ctx); err != nil {
		logger.Warn("collecting metrics", "error", err)
	} else {
		for _, name := range slices.Sorted(maps.Keys(totals)) {
			logger.Info("metric total", "name", name, "value", totals[name])
		}
	}
	if err := m.provider.Shutdown(ctx); err != nil {
		logger.Warn("shutting down meter provider", "error", err)
	}
	m.provider = nil
}

// MetricTotals returns the summed counters of the application's own meter
// provider.
func (app *Application) MetricTotals(ctx context.Context) (map[string]int64, error) {
	return app.metrics.Totals(ctx)
}
