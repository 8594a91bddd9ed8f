package key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrUnknownKey  = errors.New("unknown key")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into a Key.
//
// Supported formats:
//   - Key names: "A", "enter", "LeftShift", "F4", "-", "Transparent"
//   - Hyphen modifiers: "S-A", "C-A-Delete", "AltGr-E"
//   - Plus modifiers: "Shift+A", "Ctrl+Alt+Delete"
//   - Bracketed: "<S-a>"
//   - Reserved keys: "RapidFire", "HoldTapEnable", "MultiTap(3)", "Macro(1)"
func Parse(spec string) (Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return NoKey, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		spec = spec[1 : len(spec)-1]
	}

	if k, ok := lookupName(spec); ok {
		return k, nil
	}

	if strings.HasPrefix(strings.ToLower(spec), "multitap(") && strings.HasSuffix(spec, ")") {
		return parseMultiTap(spec[len("multitap(") : len(spec)-1])
	}
	if strings.HasPrefix(strings.ToLower(spec), "macro(") && strings.HasSuffix(spec, ")") {
		return parseMacro(spec[len("macro(") : len(spec)-1])
	}

	sep := "-"
	if strings.Contains(spec, "+") {
		sep = "+"
	}
	return parseModified(spec, sep)
}

// MustParse is like Parse but panics on error. Intended for tables and tests.
func MustParse(spec string) Key {
	k, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return k
}

func lookupName(name string) (Key, bool) {
	k, ok := nameToKey[strings.ToLower(name)]
	return k, ok
}

func parseMultiTap(inner string) (Key, error) {
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil || n < 0 || n >= MaxMultiTap {
		return NoKey, fmt.Errorf("%w: multi-tap index %q", ErrInvalidSpec, inner)
	}
	return MultiTap(uint8(n)), nil
}

func parseMacro(inner string) (Key, error) {
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil || n < 0 || n >= MaxMacro {
		return NoKey, fmt.Errorf("%w: macro id %q", ErrInvalidSpec, inner)
	}
	return Macro(uint8(n)), nil
}

// parseModified handles "S-A" and "Shift+A". The key part is everything
// after the last separator, except that a trailing separator names the
// separator key itself ("S--" is Shift+Minus).
func parseModified(spec, sep string) (Key, error) {
	var keyPart, modPart string
	switch {
	case strings.HasSuffix(spec, sep+sep):
		keyPart = sep
		modPart = spec[:len(spec)-2]
	default:
		i := strings.LastIndex(spec, sep)
		if i <= 0 || i == len(spec)-1 {
			return NoKey, fmt.Errorf("%w: %q", ErrUnknownKey, spec)
		}
		keyPart = spec[i+1:]
		modPart = spec[:i]
	}

	base, ok := lookupName(keyPart)
	if !ok {
		return NoKey, fmt.Errorf("%w: %q", ErrUnknownKey, keyPart)
	}
	if !base.IsKeyboardKey() {
		return NoKey, fmt.Errorf("%w: modifiers on %s", ErrInvalidSpec, base)
	}

	var flags Flags
	for _, m := range strings.Split(modPart, sep) {
		f, err := parseFlag(m)
		if err != nil {
			return NoKey, err
		}
		flags |= f
	}
	return base.WithFlags(flags), nil
}

func parseFlag(name string) (Flags, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "c", "ctrl", "control":
		return CtrlHeld, nil
	case "a", "alt", "lalt":
		return LAltHeld, nil
	case "altgr", "ralt":
		return RAltHeld, nil
	case "s", "shift":
		return ShiftHeld, nil
	case "g", "gui", "super", "cmd", "win":
		return GUIHeld, nil
	default:
		return 0, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, name)
	}
}
