package key

import "strings"

// State is the keyswitch state bitset carried by an event.
type State uint8

const (
	// WasPressed is set when the switch was down during the previous scan.
	WasPressed State = 1 << 0
	// IsPressed is set when the switch is down during this scan.
	IsPressed State = 1 << 1
	// Injected marks events synthesized by software.
	Injected State = 1 << 7
)

// ToggledOn reports a press transition.
func (s State) ToggledOn() bool {
	return s&IsPressed != 0 && s&WasPressed == 0
}

// ToggledOff reports a release transition.
func (s State) ToggledOff() bool {
	return s&WasPressed != 0 && s&IsPressed == 0
}

// Held reports whether the switch is down in this scan.
func (s State) Held() bool {
	return s&IsPressed != 0
}

// IsInjected reports whether the event was synthesized by software.
func (s State) IsInjected() bool {
	return s&Injected != 0
}

// String returns a compact representation like "on|injected".
func (s State) String() string {
	var parts []string
	switch {
	case s.ToggledOn():
		parts = append(parts, "on")
	case s.ToggledOff():
		parts = append(parts, "off")
	case s.Held():
		parts = append(parts, "held")
	default:
		parts = append(parts, "idle")
	}
	if s.IsInjected() {
		parts = append(parts, "injected")
	}
	return strings.Join(parts, "|")
}
