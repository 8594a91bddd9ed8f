package key

// HostModifiers is the modifier byte of a keyboard report.
type HostModifiers uint8

const (
	// ModLeftCtrl is the left control bit.
	ModLeftCtrl HostModifiers = 1 << iota
	// ModLeftShift is the left shift bit.
	ModLeftShift
	// ModLeftAlt is the left alt bit.
	ModLeftAlt
	// ModLeftGUI is the left GUI bit.
	ModLeftGUI
	// ModRightCtrl is the right control bit.
	ModRightCtrl
	// ModRightShift is the right shift bit.
	ModRightShift
	// ModRightAlt is the right alt bit.
	ModRightAlt
	// ModRightGUI is the right GUI bit.
	ModRightGUI
)

// Has returns true if m contains the specified modifier.
func (m HostModifiers) Has(mod HostModifiers) bool {
	return m&mod != 0
}

// With returns a new value with the specified modifier added.
func (m HostModifiers) With(mod HostModifiers) HostModifiers {
	return m | mod
}

// Modifiers returns the host modifier bits a key contributes to a report:
// the bit of a modifier keycode plus the bits of its modifier flags.
func (k Key) Modifiers() HostModifiers {
	if !k.IsKeyboardKey() {
		return 0
	}

	var m HostModifiers
	if k.IsModifier() {
		m = m.With(HostModifiers(1) << (k.Code() - LeftControl.Code()))
	}

	f := k.Flags()
	if f&CtrlHeld != 0 {
		m = m.With(ModLeftCtrl)
	}
	if f&LAltHeld != 0 {
		m = m.With(ModLeftAlt)
	}
	if f&RAltHeld != 0 {
		m = m.With(ModRightAlt)
	}
	if f&ShiftHeld != 0 {
		m = m.With(ModLeftShift)
	}
	if f&GUIHeld != 0 {
		m = m.With(ModLeftGUI)
	}
	return m
}
