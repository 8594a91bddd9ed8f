// Package hid assembles keyboard reports for the host.
package hid

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/keystrike/internal/input/key"
)

// Report is one keyboard report: a modifier byte and the pressed keycodes.
type Report struct {
	Modifiers key.HostModifiers
	Keys      []uint8
}

// Has reports whether the keycode of k is in the report.
func (r Report) Has(k key.Key) bool {
	return slices.Contains(r.Keys, k.Code())
}

// Empty reports whether nothing is pressed.
func (r Report) Empty() bool {
	return r.Modifiers == 0 && len(r.Keys) == 0
}

// Equal reports whether two reports carry the same modifiers and keycodes
// in the same order.
func (r Report) Equal(other Report) bool {
	return r.Modifiers == other.Modifiers && slices.Equal(r.Keys, other.Keys)
}

// Clone returns a deep copy.
func (r Report) Clone() Report {
	return Report{Modifiers: r.Modifiers, Keys: slices.Clone(r.Keys)}
}

// String renders the report like "S A B" with modifiers first.
func (r Report) String() string {
	if r.Empty() {
		return "-"
	}
	var parts []string
	mods := []struct {
		bit  key.HostModifiers
		name string
	}{
		{key.ModLeftCtrl, "LCtrl"},
		{key.ModLeftShift, "LShift"},
		{key.ModLeftAlt, "LAlt"},
		{key.ModLeftGUI, "LGUI"},
		{key.ModRightCtrl, "RCtrl"},
		{key.ModRightShift, "RShift"},
		{key.ModRightAlt, "RAlt"},
		{key.ModRightGUI, "RGUI"},
	}
	for _, m := range mods {
		if r.Modifiers.Has(m.bit) {
			parts = append(parts, m.name)
		}
	}
	for _, code := range r.Keys {
		parts = append(parts, key.Key(code).String())
	}
	return strings.Join(parts, " ")
}

// GoString is used by %#v in test failures.
func (r Report) GoString() string {
	return fmt.Sprintf("hid.Report{%s}", r.String())
}
