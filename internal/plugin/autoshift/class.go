package autoshift

import (
	"fmt"
	"strings"

	"github.com/dshills/keystrike/internal/input/key"
)

// Class is a bitmask of key categories eligible for auto-shift.
type Class uint8

const (
	// Letters covers A through Z.
	Letters Class = 1 << iota
	// Numbers covers the top-row digits.
	Numbers
	// Symbols covers the punctuation keys.
	Symbols

	// AllClasses enables every category.
	AllClasses = Letters | Numbers | Symbols
)

var classNames = []struct {
	class Class
	name  string
}{
	{Letters, "letters"},
	{Numbers, "numbers"},
	{Symbols, "symbols"},
}

// String returns a comma-separated list like "letters,symbols", or "none".
func (c Class) String() string {
	var parts []string
	for _, cn := range classNames {
		if c&cn.class != 0 {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseClass parses the form produced by String. "all" enables every class.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none":
		return 0, nil
	case "all":
		return AllClasses, nil
	}

	var c Class
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, cn := range classNames {
			if cn.name == part {
				c |= cn.class
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown auto-shift class %q", part)
		}
	}
	return c, nil
}

// ClassOf returns the category of a flag-less key, or 0.
func ClassOf(k key.Key) Class {
	if !k.IsKeyboardKey() || k.Flags() != 0 {
		return 0
	}
	switch {
	case k >= key.A && k <= key.Z:
		return Letters
	case k >= key.Num1 && k <= key.Num0:
		return Numbers
	case k >= key.Minus && k <= key.Slash, k == key.NonUSBackslash:
		return Symbols
	default:
		return 0
	}
}

// EligibilityFunc decides whether a pressed key is held back for
// auto-shift, given the enabled classes.
type EligibilityFunc func(k key.Key, enabled Class) bool

// DefaultEligibility accepts flag-less keys in an enabled class.
func DefaultEligibility(k key.Key, enabled Class) bool {
	return ClassOf(k)&enabled != 0
}
