// Package observability provides structured logging and dispatch metrics
// for keystrike.
//
// Logging uses slog. Metrics are recorded through OpenTelemetry and are
// opt-in: NoopRecorder is used when metrics are disabled.
package observability

import (
	"io"
	"log/slog"

	"github.com/dshills/keystrike/internal/input"
)

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// EnrichLogger adds the run id to a logger.
func EnrichLogger(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("run_id", runID))
}

// LogRunStart logs the start of a run.
func LogRunStart(logger *slog.Logger, keymap string, plugins []string) {
	if logger == nil {
		return
	}
	logger.Info("keystrike starting",
		slog.String("keymap", keymap),
		slog.Any("plugins", plugins),
	)
}

// LogRunComplete logs the end of a run with the final dispatch counters.
func LogRunComplete(logger *slog.Logger, s input.StatsSnapshot) {
	if logger == nil {
		return
	}
	logger.Info("keystrike stopped",
		slog.Uint64("cycles", s.Cycles),
		slog.Uint64("physical_events", s.PhysicalEvents),
		slog.Uint64("injected_events", s.InjectedEvents),
		slog.Uint64("reports", s.Reports),
		slog.Uint64("resolutions", s.Resolutions),
		slog.Uint64("depth_overflows", s.DepthOverflows),
	)
}
