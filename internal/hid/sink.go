package hid

import (
	"fmt"
	"io"
)

// Recorder is a Sink that keeps every report, for tests and scenario
// expectations.
type Recorder struct {
	Reports []Report
}

// SendReport implements Sink.
func (r *Recorder) SendReport(rep Report) error {
	r.Reports = append(r.Reports, rep.Clone())
	return nil
}

// Last returns the most recent report, or an empty one.
func (r *Recorder) Last() Report {
	if len(r.Reports) == 0 {
		return Report{}
	}
	return r.Reports[len(r.Reports)-1]
}

// Strings renders every report with Report.String.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Reports))
	for i, rep := range r.Reports {
		out[i] = rep.String()
	}
	return out
}

// Reset drops recorded reports.
func (r *Recorder) Reset() {
	r.Reports = nil
}

// WriterSink prints one line per report.
type WriterSink struct {
	W      io.Writer
	Prefix string
}

// SendReport implements Sink.
func (s WriterSink) SendReport(rep Report) error {
	if _, err := fmt.Fprintf(s.W, "%s%s\n", s.Prefix, rep.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Report) error

// SendReport implements Sink.
func (f SinkFunc) SendReport(rep Report) error {
	return f(rep)
}

// MultiSink fans a report out to several sinks and returns the first error.
type MultiSink []Sink

// SendReport implements Sink.
func (m MultiSink) SendReport(rep Report) error {
	var first error
	for _, s := range m {
		if err := s.SendReport(rep); err != nil && first == nil {
			first = err
		}
	}
	return first
}
