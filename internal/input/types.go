package input

import "github.com/dshills/keystrike/internal/input/key"

// Result is the verdict a plugin returns for an event or hook.
type Result uint8

const (
	// OK passes the event on to the next handler.
	OK Result = iota
	// Consumed stops delivery to the host, but the event still updates
	// live keys and later handlers may observe it.
	Consumed
	// Abort suppresses the event entirely.
	Abort
)

// String returns a string representation of the result.
func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Consumed:
		return "consumed"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Transition is a single keyswitch state change reported by a scanner.
type Transition struct {
	Addr  key.Addr
	State key.State
}

// Press returns the toggle-on transition for addr.
func Press(addr key.Addr) Transition {
	return Transition{Addr: addr, State: key.IsPressed}
}

// Release returns the toggle-off transition for addr.
func Release(addr key.Addr) Transition {
	return Transition{Addr: addr, State: key.WasPressed}
}

// Keymap resolves a physical address to the key it produces.
type Keymap interface {
	Lookup(addr key.Addr) key.Key
}

// Keyboard assembles and sends host reports.
type Keyboard interface {
	Press(k key.Key)
	ReleaseAll()
	Send()
}

// Recorder receives dispatch measurements. See observability for the
// OpenTelemetry implementation.
type Recorder interface {
	RecordEvent(r Result, injected bool)
	RecordCycle()
	RecordResolution(resolver, outcome string)
	RecordDepthOverflow()
}

type nopRecorder struct{}

func (nopRecorder) RecordEvent(Result, bool) {}
func (nopRecorder) RecordCycle() {}
func (nopRecorder) RecordResolution(string, string) {}
func (nopRecorder) RecordDepthOverflow() {}
