package observability

import "github.com/dshills/keystrike/internal/input"

// NoopRecorder is a Recorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopRecorder struct{}

// Compile-time interface check.
var _ input.Recorder = NoopRecorder{}

// RecordEvent does nothing.
func (NoopRecorder) RecordEvent(input.Result, bool) {}

// RecordCycle does nothing.
func (NoopRecorder) RecordCycle() {}

// RecordResolution does nothing.
func (NoopRecorder) RecordResolution(string, string) {}

// RecordDepthOverflow does nothing.
func (NoopRecorder) RecordDepthOverflow() {}
