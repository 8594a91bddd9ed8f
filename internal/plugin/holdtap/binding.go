package holdtap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/keystrike/internal/input/key"
)

// Binding maps an input key to the key delivered when it is held.
type Binding struct {
	// Input is the key as typed.
	Input key.Key
	// Output is delivered instead when Input is held past the timeout.
	Output key.Key
	// Timeout overrides the global timeout in milliseconds. Zero uses the
	// global value.
	Timeout uint16
}

// DefaultBindings turns CapsLock and Enter into Control when held.
func DefaultBindings() []Binding {
	return []Binding{
		{Input: key.CapsLock, Output: key.LeftControl},
		{Input: key.Enter, Output: key.RightControl},
	}
}

// String renders the binding as "Input:Output" or "Input:Output:Timeout".
func (b Binding) String() string {
	if b.Timeout == 0 {
		return b.Input.String() + ":" + b.Output.String()
	}
	return fmt.Sprintf("%s:%s:%d", b.Input, b.Output, b.Timeout)
}

// ParseBinding parses the form produced by String.
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Binding{}, fmt.Errorf("hold-tap binding %q: want input:output[:timeout]", s)
	}

	in, err := key.Parse(parts[0])
	if err != nil {
		return Binding{}, fmt.Errorf("hold-tap binding %q input: %w", s, err)
	}
	out, err := key.Parse(parts[1])
	if err != nil {
		return Binding{}, fmt.Errorf("hold-tap binding %q output: %w", s, err)
	}

	b := Binding{Input: in, Output: out}
	if len(parts) == 3 {
		ms, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 16)
		if err != nil {
			return Binding{}, fmt.Errorf("hold-tap binding %q timeout: %w", s, err)
		}
		b.Timeout = uint16(ms)
	}
	return b, nil
}

// ParseBindings parses a whitespace or comma separated list of bindings.
func ParseBindings(s string) ([]Binding, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	bindings := make([]Binding, 0, len(fields))
	for _, f := range fields {
		b, err := ParseBinding(f)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// FormatBindings is the inverse of ParseBindings.
func FormatBindings(bindings []Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}
