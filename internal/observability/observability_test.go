package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/keymap"
)

func setupRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	r, err := NewRecorder(provider.Meter(MeterName))
	require.NoError(t, err)
	return r, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sum adds every data point of a counter whose attributes include all of
// attrs.
func sum(t *testing.T, rm *metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	var total int64
	for _, dp := range data.DataPoints {
		match := true
		for _, kv := range attrs {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v.Emit() != kv.Value.Emit() {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestRecorderCounters(t *testing.T) {
	r, reader := setupRecorder(t)

	r.RecordEvent(input.OK, false)
	r.RecordEvent(input.OK, true)
	r.RecordEvent(input.Abort, false)
	r.RecordCycle()
	r.RecordCycle()
	r.RecordResolution("holdtap", "tap")
	r.RecordDepthOverflow()

	rm := collect(t, reader)
	assert.Equal(t, int64(3), sum(t, rm, "keystrike.events"))
	assert.Equal(t, int64(1), sum(t, rm, "keystrike.events",
		attribute.String("result", "ok"), attribute.Bool("injected", true)))
	assert.Equal(t, int64(1), sum(t, rm, "keystrike.events", attribute.String("result", "abort")))
	assert.Equal(t, int64(2), sum(t, rm, "keystrike.cycles"))
	assert.Equal(t, int64(1), sum(t, rm, "keystrike.resolutions",
		attribute.String("resolver", "holdtap"), attribute.String("outcome", "tap")))
	assert.Equal(t, int64(1), sum(t, rm, "keystrike.dispatch_depth_overflows"))
}

func TestRecorderOnRuntime(t *testing.T) {
	r, reader := setupRecorder(t)

	km := keymap.New("test", key.Matrix{Rows: 1, Cols: 2})
	_, err := km.AddLayer("base", []key.Key{key.A, key.B})
	require.NoError(t, err)
	rt := input.NewRuntime(km, hid.NewKeyboard(&hid.Recorder{}),
		input.WithClock(input.NewManualClock(0)),
		input.WithRecorder(r),
	)

	rt.Cycle([]input.Transition{input.Press(0), input.Press(1)})
	rt.Cycle([]input.Transition{input.Release(0)})
	rt.Cycle(nil)

	rm := collect(t, reader)
	assert.Equal(t, int64(3), sum(t, rm, "keystrike.cycles"))
	assert.Equal(t, int64(3), sum(t, rm, "keystrike.events",
		attribute.String("result", "ok"), attribute.Bool("injected", false)))
}

func TestNoopRecorder(t *testing.T) {
	var rec input.Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		rec.RecordEvent(input.Consumed, false)
		rec.RecordCycle()
		rec.RecordResolution("multitap", "timeout")
		rec.RecordDepthOverflow()
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelInfo, &buf)

	logger.Debug("hidden")
	EnrichLogger(logger, "run-1").Info("visible", "k", "v")
	LogRunComplete(logger, input.StatsSnapshot{Cycles: 7})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=visible")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "cycles=7")

	assert.NotPanics(t, func() {
		NewLogger(slog.LevelDebug, nil).Info("discarded")
		LogRunStart(nil, "default", nil)
	})
	assert.Nil(t, EnrichLogger(nil, "x"))
}
