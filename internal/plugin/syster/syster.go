// Package syster turns typed words into actions.
//
// Pressing the Syster key starts a symbol. Letters and digits typed after
// it reach the host as usual and are collected; Backspace removes the last
// one. Space ends the symbol: the typed characters are erased on the host
// and the symbol is handed to the Behavior.
package syster

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
)

// Name is the plugin name used in logs and metrics.
const Name = "syster"

// MaxSymbolLength bounds a symbol. Characters past it are dropped.
const MaxSymbolLength = 32

// Action tells a Behavior why it is being called.
type Action uint8

const (
	// Start is reported when the Syster key begins a symbol.
	Start Action = iota
	// End is reported once the typed characters have been erased.
	End
	// Symbol is reported with the finished symbol, right after End.
	Symbol
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case Start:
		return "start"
	case End:
		return "end"
	case Symbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Behavior reacts to symbol input. symbol is empty except for Symbol.
type Behavior interface {
	Act(s *Syster, action Action, symbol string)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(s *Syster, action Action, symbol string)

// Act implements Behavior.
func (f BehaviorFunc) Act(s *Syster, action Action, symbol string) {
	f(s, action, symbol)
}

// TableBehavior taps the keys stored under a finished symbol. Unknown
// symbols do nothing.
type TableBehavior map[string][]key.Key

// Act implements Behavior.
func (t TableBehavior) Act(s *Syster, action Action, symbol string) {
	if action != Symbol {
		return
	}
	for _, k := range t[symbol] {
		s.Tap(k)
	}
}

// Option configures a Syster.
type Option func(*Syster)

// WithBehavior sets the behavior. Defaults to an empty table.
func WithBehavior(b Behavior) Option {
	return func(s *Syster) {
		if b != nil {
			s.behavior = b
		}
	}
}

// WithEnabled sets whether the Syster key starts symbols.
func WithEnabled(enabled bool) Option {
	return func(s *Syster) {
		s.enabled = enabled
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syster) {
		if l != nil {
			s.logger = l
		}
	}
}

// Syster collects symbols.
type Syster struct {
	rt       *input.Runtime
	logger   *slog.Logger
	behavior Behavior
	enabled  bool

	active bool
	symbol []byte
}

// New creates a symbol collector.
func New(rt *input.Runtime, opts ...Option) *Syster {
	s := &Syster{
		rt:       rt,
		logger:   rt.Logger(),
		behavior: TableBehavior{},
		enabled:  true,
		symbol:   make([]byte, 0, MaxSymbolLength),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements input.Named.
func (s *Syster) Name() string {
	return Name
}

// OnKeyEvent implements input.KeyHandler.
func (s *Syster) OnKeyEvent(ev *key.Event) input.Result {
	if !s.active {
		if !s.enabled || ev.Key != key.Syster {
			return input.OK
		}
		if ev.State.ToggledOn() {
			s.active = true
			s.act(Start, "")
		}
		return input.Consumed
	}

	if ev.State.IsInjected() {
		return input.OK
	}
	if ev.Key == key.Syster {
		return input.Consumed
	}
	if !ev.State.ToggledOn() {
		return input.OK
	}

	switch ev.Key {
	case key.Spacebar:
		symbol := string(s.symbol)
		s.erase(len(s.symbol))
		s.act(End, "")
		s.act(Symbol, symbol)
		s.Reset()
		s.rt.Resolved(Name, "symbol")
		return input.Abort
	case key.Backspace:
		if len(s.symbol) == 0 {
			return input.Abort
		}
		s.symbol = s.symbol[:len(s.symbol)-1]
		return input.OK
	}

	if c, ok := Char(ev.Key); ok {
		if len(s.symbol) >= MaxSymbolLength {
			return input.Abort
		}
		s.symbol = append(s.symbol, c)
	}
	return input.OK
}

// erase sends n Backspace taps. Every tap reuses the id of the event that
// ended the symbol.
func (s *Syster) erase(n int) {
	for range n {
		s.Tap(key.Backspace)
	}
}

func (s *Syster) act(action Action, symbol string) {
	s.logger.Debug("syster action",
		"plugin", Name,
		"action", action.String(),
		"symbol", symbol,
	)
	s.behavior.Act(s, action, symbol)
}

// Tap presses and releases k on the host.
func (s *Syster) Tap(k key.Key) {
	s.rt.InjectKey(key.IsPressed, k)
	s.rt.InjectKey(key.WasPressed, k)
}

// Reset abandons the current symbol.
func (s *Syster) Reset() {
	s.active = false
	s.symbol = s.symbol[:0]
}

// Active reports whether a symbol is being typed.
func (s *Syster) Active() bool {
	return s.active
}

// Symbol returns the characters collected so far.
func (s *Syster) Symbol() string {
	return string(s.symbol)
}

// Enabled reports whether the Syster key starts symbols.
func (s *Syster) Enabled() bool {
	return s.enabled
}

// SetEnabled turns symbol input on or off. Turning it off abandons the
// current symbol.
func (s *Syster) SetEnabled(enabled bool) {
	if !enabled {
		s.Reset()
	}
	s.enabled = enabled
}

// Behavior returns the current behavior.
func (s *Syster) Behavior() Behavior {
	return s.behavior
}

// SetBehavior replaces the behavior.
func (s *Syster) SetBehavior(b Behavior) {
	if b != nil {
		s.behavior = b
	}
}

// Char returns the symbol character an unmodified letter or digit key
// types.
func Char(k key.Key) (byte, bool) {
	if k.Flags() != 0 {
		return 0, false
	}
	switch {
	case k >= key.A && k <= key.Z:
		return 'a' + byte(k-key.A), true
	case k >= key.Num1 && k <= key.Num9:
		return '1' + byte(k-key.Num1), true
	case k == key.Num0:
		return '0', true
	default:
		return 0, false
	}
}
