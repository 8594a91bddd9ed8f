package key

import (
	"fmt"
	"strings"
)

// Key is a logical key value.
// The high byte holds flags and the low byte holds the keycode, which for
// keyboard keys is the HID usage ID.
type Key uint16

// Flags is the high byte of a Key.
type Flags uint8

const (
	// CtrlHeld applies Left Control to the keycode.
	CtrlHeld Flags = 1 << iota
	// LAltHeld applies Left Alt to the keycode.
	LAltHeld
	// RAltHeld applies Right Alt (AltGr) to the keycode.
	RAltHeld
	// ShiftHeld applies Left Shift to the keycode.
	ShiftHeld
	// GUIHeld applies Left GUI to the keycode.
	GUIHeld

	_

	// Reserved marks keys owned by plugins. Always combined with Synthetic.
	Reserved
	// Synthetic marks keys that never reach the host report as keycodes.
	Synthetic
)

// ModifierFlags is the set of flags that map to host modifiers.
const ModifierFlags = CtrlHeld | LAltHeld | RAltHeld | ShiftHeld | GUIHeld

const (
	// NoKey is the empty key value.
	NoKey Key = 0
	// Transparent falls through to the next active layer in a keymap.
	Transparent Key = 0xFFFF
)

// New builds a key from flags and a keycode.
func New(flags Flags, code uint8) Key {
	return Key(uint16(flags)<<8 | uint16(code))
}

// Flags returns the flag byte.
func (k Key) Flags() Flags {
	return Flags(k >> 8)
}

// Code returns the keycode byte.
func (k Key) Code() uint8 {
	return uint8(k)
}

// WithFlags returns k with the given flags added.
func (k Key) WithFlags(f Flags) Key {
	return New(k.Flags()|f, k.Code())
}

// ToggleFlags returns k with the given flags flipped.
func (k Key) ToggleFlags(f Flags) Key {
	return New(k.Flags()^f, k.Code())
}

// IsKeyboardKey reports whether k is a plain keyboard key that belongs in a
// host report.
func (k Key) IsKeyboardKey() bool {
	return k != NoKey && k != Transparent && k.Flags()&(Synthetic|Reserved) == 0
}

// IsReserved reports whether k lives in the plugin-reserved range.
func (k Key) IsReserved() bool {
	return k != Transparent && k.Flags()&(Synthetic|Reserved) == Synthetic|Reserved
}

// IsModifier reports whether k is one of the eight modifier keycodes.
func (k Key) IsModifier() bool {
	return k.IsKeyboardKey() && k.Code() >= LeftControl.Code() && k.Code() <= RightGUI.Code()
}

// String returns a readable name such as "A", "S-A" or "MultiTap(2)".
func (k Key) String() string {
	switch {
	case k == NoKey:
		return "NoKey"
	case k == Transparent:
		return "Transparent"
	case k.IsReserved():
		return reservedName(k)
	}

	var parts []string
	f := k.Flags()
	if f&CtrlHeld != 0 {
		parts = append(parts, "C")
	}
	if f&LAltHeld != 0 {
		parts = append(parts, "A")
	}
	if f&RAltHeld != 0 {
		parts = append(parts, "AltGr")
	}
	if f&ShiftHeld != 0 {
		parts = append(parts, "S")
	}
	if f&GUIHeld != 0 {
		parts = append(parts, "G")
	}

	name, ok := codeNames[k.Code()]
	if !ok {
		name = fmt.Sprintf("Key(0x%02X)", k.Code())
	}
	parts = append(parts, name)
	return strings.Join(parts, "-")
}

// Plugin-reserved keys. The keycode byte selects the function; multi-tap keys
// occupy a separate range so the index fits in the low seven bits.
const (
	reservedBase = Key(uint16(Synthetic|Reserved) << 8)

	// RapidFire activates the periodic re-trigger generator while held.
	RapidFire = reservedBase | 0x01
	// HoldTapEnable turns the hold-tap resolver on.
	HoldTapEnable = reservedBase | 0x02
	// HoldTapDisable turns the hold-tap resolver off.
	HoldTapDisable = reservedBase | 0x03
	// AutoShiftToggle flips the auto-shift resolver on or off.
	AutoShiftToggle = reservedBase | 0x04
	// Syster starts a typed symbol.
	Syster = reservedBase | 0x05

	macroFirst = reservedBase | 0x40
	macroLast  = reservedBase | 0x7F

	multiTapFirst = reservedBase | 0x80
	multiTapLast  = reservedBase | 0xFF
)

// MaxMultiTap is the number of multi-tap keys that can be addressed.
const MaxMultiTap = int(multiTapLast-multiTapFirst) + 1

// MultiTap returns the multi-tap key with the given index.
func MultiTap(index uint8) Key {
	return multiTapFirst + Key(index&0x7F)
}

// MultiTapIndex returns the index of a multi-tap key.
func (k Key) MultiTapIndex() (uint8, bool) {
	if k < multiTapFirst || k > multiTapLast {
		return 0, false
	}
	return uint8(k - multiTapFirst), true
}

// MaxMacro is the number of macro keys that can be addressed.
const MaxMacro = int(macroLast-macroFirst) + 1

// Macro returns the macro key with the given id.
func Macro(id uint8) Key {
	return macroFirst + Key(id&0x3F)
}

// MacroID returns the id of a macro key.
func (k Key) MacroID() (uint8, bool) {
	if k < macroFirst || k > macroLast {
		return 0, false
	}
	return uint8(k - macroFirst), true
}

func reservedName(k Key) string {
	if idx, ok := k.MultiTapIndex(); ok {
		return fmt.Sprintf("MultiTap(%d)", idx)
	}
	if id, ok := k.MacroID(); ok {
		return fmt.Sprintf("Macro(%d)", id)
	}
	switch k {
	case RapidFire:
		return "RapidFire"
	case HoldTapEnable:
		return "HoldTapEnable"
	case HoldTapDisable:
		return "HoldTapDisable"
	case AutoShiftToggle:
		return "AutoShiftToggle"
	case Syster:
		return "Syster"
	default:
		return fmt.Sprintf("Reserved(0x%02X)", k.Code())
	}
}
