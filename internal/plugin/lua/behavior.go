package lua

import (
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/plugin/multitap"
)

// DefaultFunction is the global a behavior script defines.
const DefaultFunction = "multitap"

// BehaviorOption configures a Behavior.
type BehaviorOption func(*Behavior)

// WithFunction sets the name of the global function to call.
func WithFunction(name string) BehaviorOption {
	return func(b *Behavior) {
		if name != "" {
			b.function = name
		}
	}
}

// WithFallback sets the behavior used when the script fails.
func WithFallback(f multitap.Behavior) BehaviorOption {
	return func(b *Behavior) {
		b.fallback = f
	}
}

// WithLogger sets the logger for script errors.
func WithLogger(l *slog.Logger) BehaviorOption {
	return func(b *Behavior) {
		if l != nil {
			b.logger = l
		}
	}
}

// Behavior is a multitap.Behavior backed by a Lua function.
type Behavior struct {
	state    *State
	function string
	fallback multitap.Behavior
	logger   *slog.Logger
	errors   int
}

// NewBehavior wraps a state that already has the behavior function loaded.
func NewBehavior(state *State, opts ...BehaviorOption) (*Behavior, error) {
	b := &Behavior{
		state:    state,
		function: DefaultFunction,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if !state.HasFunction(b.function) {
		return nil, fmt.Errorf("%w: %q", ErrNotFunction, b.function)
	}
	return b, nil
}

// LoadBehavior creates a state, runs the script at path and wraps it.
func LoadBehavior(path string, stateOpts []StateOption, opts ...BehaviorOption) (*Behavior, error) {
	state, err := NewState(stateOpts...)
	if err != nil {
		return nil, err
	}
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	b, err := NewBehavior(state, opts...)
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return b, nil
}

// Act implements multitap.Behavior.
func (b *Behavior) Act(c *multitap.Controller, index uint8, addr key.Addr, tapCount uint8, action multitap.Action) {
	keys, err := b.Keys(index, addr, tapCount, action)
	if err != nil {
		b.errors++
		b.logger.Warn("lua behavior failed",
			"function", b.function,
			"index", int(index),
			"action", action.String(),
			"error", err,
		)
		if b.fallback != nil {
			b.fallback.Act(c, index, addr, tapCount, action)
		}
		return
	}
	c.ActionKeys(tapCount, action, keys...)
}

// Keys calls the script and converts its return values into keys.
func (b *Behavior) Keys(index uint8, addr key.Addr, tapCount uint8, action multitap.Action) ([]key.Key, error) {
	ret, err := b.state.Call(b.function,
		lua.LNumber(index),
		lua.LNumber(addr),
		lua.LNumber(tapCount),
		lua.LString(action.String()),
	)
	if err != nil {
		return nil, err
	}
	return toKeys(ret)
}

// Errors returns how many calls failed.
func (b *Behavior) Errors() int {
	return b.errors
}

// Close releases the underlying state.
func (b *Behavior) Close() error {
	return b.state.Close()
}

// toKeys accepts key names, raw key codes, nils and array tables of those.
func toKeys(values []lua.LValue) ([]key.Key, error) {
	var keys []key.Key
	var add func(v lua.LValue) error
	add = func(v lua.LValue) error {
		switch val := v.(type) {
		case *lua.LNilType:
			return nil
		case lua.LString:
			k, err := key.Parse(string(val))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadReturn, err)
			}
			keys = append(keys, k)
		case lua.LNumber:
			if val < 0 || val > 0xFFFF || val != lua.LNumber(int64(val)) {
				return fmt.Errorf("%w: %v", ErrBadReturn, val)
			}
			keys = append(keys, key.Key(val))
		case *lua.LTable:
			for i := 1; i <= val.Len(); i++ {
				if t, ok := val.RawGetInt(i).(*lua.LTable); ok && t != nil {
					return fmt.Errorf("%w: nested table", ErrBadReturn)
				}
				if err := add(val.RawGetInt(i)); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s", ErrBadReturn, v.Type())
		}
		return nil
	}
	for _, v := range values {
		if err := add(v); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
