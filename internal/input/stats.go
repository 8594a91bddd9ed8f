package input

import "sync/atomic"

// Stats tracks dispatch counters. Counters are atomic so a status reporter
// can read them from another goroutine while the cycle loop runs.
type Stats struct {
	physicalEvents atomic.Uint64
	injectedEvents atomic.Uint64
	passed         atomic.Uint64
	consumed       atomic.Uint64
	aborted        atomic.Uint64
	reports        atomic.Uint64
	cycles         atomic.Uint64
	depthOverflows atomic.Uint64
	resolutions    atomic.Uint64

	enabled atomic.Bool
}

// NewStats creates a new stats tracker.
func NewStats() *Stats {
	s := &Stats{}
	s.enabled.Store(true)
	return s
}

// SetEnabled enables or disables collection.
func (s *Stats) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

// IsEnabled returns whether collection is enabled.
func (s *Stats) IsEnabled() bool {
	return s.enabled.Load()
}

func (s *Stats) recordEvent(injected bool) {
	if !s.enabled.Load() {
		return
	}
	if injected {
		s.injectedEvents.Add(1)
	} else {
		s.physicalEvents.Add(1)
	}
}

func (s *Stats) recordResult(r Result) {
	if !s.enabled.Load() {
		return
	}
	switch r {
	case OK:
		s.passed.Add(1)
	case Consumed:
		s.consumed.Add(1)
	case Abort:
		s.aborted.Add(1)
	}
}

func (s *Stats) recordReport() {
	if s.enabled.Load() {
		s.reports.Add(1)
	}
}

func (s *Stats) recordCycle() {
	if s.enabled.Load() {
		s.cycles.Add(1)
	}
}

func (s *Stats) recordDepthOverflow() {
	if s.enabled.Load() {
		s.depthOverflows.Add(1)
	}
}

func (s *Stats) recordResolution() {
	if s.enabled.Load() {
		s.resolutions.Add(1)
	}
}

// StatsSnapshot holds a point-in-time view of the counters.
type StatsSnapshot struct {
	PhysicalEvents uint64
	InjectedEvents uint64
	Passed         uint64
	Consumed       uint64
	Aborted        uint64
	Reports        uint64
	Cycles         uint64
	DepthOverflows uint64
	Resolutions    uint64
}

// Snapshot returns a point-in-time view of all counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		PhysicalEvents: s.physicalEvents.Load(),
		InjectedEvents: s.injectedEvents.Load(),
		Passed:         s.passed.Load(),
		Consumed:       s.consumed.Load(),
		Aborted:        s.aborted.Load(),
		Reports:        s.reports.Load(),
		Cycles:         s.cycles.Load(),
		DepthOverflows: s.depthOverflows.Load(),
		Resolutions:    s.resolutions.Load(),
	}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.physicalEvents.Store(0)
	s.injectedEvents.Store(0)
	s.passed.Store(0)
	s.consumed.Store(0)
	s.aborted.Store(0)
	s.reports.Store(0)
	s.cycles.Store(0)
	s.depthOverflows.Store(0)
	s.resolutions.Store(0)
}
