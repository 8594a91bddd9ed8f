package input

import "github.com/dshills/keystrike/internal/input/key"

// Plugin is any value registered with the Runtime. A plugin takes part in
// dispatch by implementing one or more of the capability interfaces below.
type Plugin any

// PhysicalKeyHandler sees events before the key stage. Resolvers that
// defer decisions implement it.
type PhysicalKeyHandler interface {
	OnPhysicalKeyEvent(ev *key.Event) Result
}

// KeyHandler sees events that passed the physical stage.
type KeyHandler interface {
	OnKeyEvent(ev *key.Event) Result
}

// KeyObserver is told about events that an earlier handler in the same
// stage consumed.
type KeyObserver interface {
	ObserveKeyEvent(ev key.Event)
}

// CycleHandler runs at the end of every scan cycle.
type CycleHandler interface {
	AfterEachCycle() Result
}

// LEDSyncHandler runs right before LED state is pushed out.
type LEDSyncHandler interface {
	BeforeSyncingLEDs() Result
}

// ReportHandler runs after a report has been rebuilt from live keys and
// before it is sent. It may press extra keys on the Keyboard. Abort drops
// the report.
type ReportHandler interface {
	BeforeReportingState(ev key.Event) Result
}

// Named plugins report a name used in logs and registrations.
type Named interface {
	Name() string
}

func isPlugin(p Plugin) bool {
	switch p.(type) {
	case PhysicalKeyHandler, KeyHandler, KeyObserver, CycleHandler, LEDSyncHandler, ReportHandler:
		return true
	default:
		return false
	}
}
