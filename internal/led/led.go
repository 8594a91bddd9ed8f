// Package led models per-key lighting.
package led

import (
	"fmt"

	"github.com/dshills/keystrike/internal/input/key"
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// Off is the unlit color.
var Off = Color{}

// String returns the color in #rrggbb form.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	var c Color
	if len(s) != 6 {
		return c, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Sink receives LED updates.
type Sink interface {
	// SetColor overrides the color of a single key.
	SetColor(addr key.Addr, c Color)
	// Refresh restores the base color of a key.
	Refresh(addr key.Addr)
	// Sync pushes pending changes out.
	Sync()
}

// Memory is a Sink that keeps colors in memory.
type Memory struct {
	base     map[key.Addr]Color
	override map[key.Addr]Color
	syncs    int
}

// NewMemory creates an in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		base:     make(map[key.Addr]Color),
		override: make(map[key.Addr]Color),
	}
}

// SetBase sets the color a key returns to on Refresh.
func (m *Memory) SetBase(addr key.Addr, c Color) {
	m.base[addr] = c
}

// SetColor implements Sink.
func (m *Memory) SetColor(addr key.Addr, c Color) {
	m.override[addr] = c
}

// Refresh implements Sink.
func (m *Memory) Refresh(addr key.Addr) {
	delete(m.override, addr)
}

// Sync implements Sink.
func (m *Memory) Sync() {
	m.syncs++
}

// Color returns the color currently shown for addr.
func (m *Memory) Color(addr key.Addr) Color {
	if c, ok := m.override[addr]; ok {
		return c
	}
	return m.base[addr]
}

// Syncs returns how many times Sync was called.
func (m *Memory) Syncs() int {
	return m.syncs
}

type nopSink struct{}

func (nopSink) SetColor(key.Addr, Color) {}
func (nopSink) Refresh(key.Addr) {}
func (nopSink) Sync() {}

// Discard is a Sink that drops every update.
var Discard Sink = nopSink{}
