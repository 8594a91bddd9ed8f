package key

import "strings"

// Keyboard keys, keyed by HID usage ID on the keyboard/keypad page.
const (
	A Key = 0x04 + iota
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z

	Num1
	Num2
	Num3
	Num4
	Num5
	Num6
	Num7
	Num8
	Num9
	Num0

	Enter
	Escape
	Backspace
	Tab
	Spacebar
	Minus
	Equals
	LeftBracket
	RightBracket
	Backslash
	NonUSPound
	Semicolon
	Quote
	Backtick
	Comma
	Period
	Slash
	CapsLock

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	PrintScreen
	ScrollLock
	Pause
	Insert
	Home
	PageUp
	Delete
	End
	PageDown
	RightArrow
	LeftArrow
	DownArrow
	UpArrow
)

// NonUSBackslash is the ISO key between Left Shift and Z.
const NonUSBackslash Key = 0x64

// Modifier keys.
const (
	LeftControl Key = 0xE0 + iota
	LeftShift
	LeftAlt
	LeftGUI
	RightControl
	RightShift
	RightAlt
	RightGUI
)

var codeNames = map[uint8]string{}

// nameToKey maps lowercase names to keys. Filled from codeNames plus aliases.
var nameToKey = map[string]Key{}

func init() {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for i := 0; i < len(letters); i++ {
		codeNames[A.Code()+uint8(i)] = letters[i : i+1]
	}
	digits := "1234567890"
	for i := 0; i < len(digits); i++ {
		codeNames[Num1.Code()+uint8(i)] = digits[i : i+1]
	}
	fkeys := []string{"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12"}
	for i, name := range fkeys {
		codeNames[F1.Code()+uint8(i)] = name
	}

	named := map[Key]string{
		Enter:          "Enter",
		Escape:         "Escape",
		Backspace:      "Backspace",
		Tab:            "Tab",
		Spacebar:       "Space",
		Minus:          "Minus",
		Equals:         "Equals",
		LeftBracket:    "LeftBracket",
		RightBracket:   "RightBracket",
		Backslash:      "Backslash",
		NonUSPound:     "NonUSPound",
		Semicolon:      "Semicolon",
		Quote:          "Quote",
		Backtick:       "Backtick",
		Comma:          "Comma",
		Period:         "Period",
		Slash:          "Slash",
		CapsLock:       "CapsLock",
		PrintScreen:    "PrintScreen",
		ScrollLock:     "ScrollLock",
		Pause:          "Pause",
		Insert:         "Insert",
		Home:           "Home",
		PageUp:         "PageUp",
		Delete:         "Delete",
		End:            "End",
		PageDown:       "PageDown",
		RightArrow:     "Right",
		LeftArrow:      "Left",
		DownArrow:      "Down",
		UpArrow:        "Up",
		NonUSBackslash: "NonUSBackslash",
		LeftControl:    "LeftControl",
		LeftShift:      "LeftShift",
		LeftAlt:        "LeftAlt",
		LeftGUI:        "LeftGUI",
		RightControl:   "RightControl",
		RightShift:     "RightShift",
		RightAlt:       "RightAlt",
		RightGUI:       "RightGUI",
	}
	for k, name := range named {
		codeNames[k.Code()] = name
	}

	for code, name := range codeNames {
		nameToKey[strings.ToLower(name)] = Key(code)
	}

	aliases := map[string]Key{
		"esc":       Escape,
		"return":    Enter,
		"cr":        Enter,
		"bs":        Backspace,
		"spacebar":  Spacebar,
		"del":       Delete,
		"ins":       Insert,
		"pgup":      PageUp,
		"pgdn":      PageDown,
		"lctrl":     LeftControl,
		"lshift":    LeftShift,
		"lalt":      LeftAlt,
		"lgui":      LeftGUI,
		"rctrl":     RightControl,
		"rshift":    RightShift,
		"ralt":      RightAlt,
		"rgui":      RightGUI,
		"-":         Minus,
		"=":         Equals,
		"[":         LeftBracket,
		"]":         RightBracket,
		"\\":        Backslash,
		";":         Semicolon,
		"'":         Quote,
		"`":         Backtick,
		",":         Comma,
		".":         Period,
		"/":         Slash,
		"nokey":     NoKey,
		"none":      NoKey,

		"trans":           Transparent,
		"___":             Transparent,
		"transparent":     Transparent,
		"rapidfire":       RapidFire,
		"holdtapenable":   HoldTapEnable,
		"holdtapdisable":  HoldTapDisable,
		"autoshifttoggle": AutoShiftToggle,
		"syster":          Syster,
	}
	for name, k := range aliases {
		nameToKey[name] = k
	}
}
