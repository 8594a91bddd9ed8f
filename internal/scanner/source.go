// Package scanner produces keyswitch transitions for the runtime.
//
// A Source is polled once per cycle with the cycle clock. Script replays a
// YAML scenario on that clock; Terminal turns terminal key presses into
// press and release transitions.
package scanner

import (
	"errors"

	"github.com/dshills/keystrike/internal/input"
)

// Scanner errors
var (
	ErrBadAddress = errors.New("bad address")
	ErrUnmapped   = errors.New("key is not on the keymap")
	ErrBadStep    = errors.New("bad step")
	ErrMismatch   = errors.New("reports do not match expectation")
)

// Source yields the transitions observed since the previous scan.
type Source interface {
	Scan(now uint32) []input.Transition
}

// SourceFunc adapts a function to Source.
type SourceFunc func(now uint32) []input.Transition

// Scan implements Source.
func (f SourceFunc) Scan(now uint32) []input.Transition {
	return f(now)
}
