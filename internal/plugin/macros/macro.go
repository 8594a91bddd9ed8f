package macros

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/keystrike/internal/input/key"
)

// ErrInvalidStep is returned for steps that cannot be parsed.
var ErrInvalidStep = errors.New("invalid macro step")

// StepKind selects what a Step does.
type StepKind uint8

const (
	// Press presses a key and keeps it in every report until released.
	Press StepKind = iota
	// Release releases a key pressed by an earlier step.
	Release
	// Tap presses and releases a key.
	Tap
	// Type taps the keys that produce a string on a US layout.
	Type
)

// String returns a string representation of the step kind.
func (k StepKind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	case Tap:
		return "tap"
	case Type:
		return "type"
	default:
		return "unknown"
	}
}

// Step is one instruction of a macro.
type Step struct {
	Kind StepKind
	Key  key.Key
	Text string
}

// String formats the step the way ParseStep reads it.
func (s Step) String() string {
	if s.Kind == Type {
		return "type " + s.Text
	}
	return s.Kind.String() + " " + s.Key.String()
}

// Macro is a sequence of steps played in order.
type Macro []Step

// String joins the steps with "; ".
func (m Macro) String() string {
	parts := make([]string, len(m))
	for i, s := range m {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// ParseStep parses "press K", "release K", "tap K" or "type TEXT". Keys use
// the key name syntax; TEXT is everything after the first space.
func ParseStep(s string) (Step, error) {
	verb, arg, _ := strings.Cut(strings.TrimLeft(s, " \t"), " ")
	switch strings.ToLower(verb) {
	case "type":
		if arg == "" {
			return Step{}, fmt.Errorf("%w: type needs text", ErrInvalidStep)
		}
		for _, r := range arg {
			if _, ok := CharKey(r); !ok {
				return Step{}, fmt.Errorf("%w: cannot type %q", ErrInvalidStep, r)
			}
		}
		return Step{Kind: Type, Text: arg}, nil
	case "press":
		return keyStep(Press, arg)
	case "release":
		return keyStep(Release, arg)
	case "tap":
		return keyStep(Tap, arg)
	default:
		return Step{}, fmt.Errorf("%w: unknown verb %q", ErrInvalidStep, verb)
	}
}

func keyStep(kind StepKind, arg string) (Step, error) {
	k, err := key.Parse(arg)
	if err != nil {
		return Step{}, fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	return Step{Kind: kind, Key: k}, nil
}

// ParseMacro parses one step per entry.
func ParseMacro(steps []string) (Macro, error) {
	m := make(Macro, 0, len(steps))
	for i, s := range steps {
		step, err := ParseStep(s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		m = append(m, step)
	}
	return m, nil
}

var shifted = map[rune]key.Key{
	'!': key.Num1, '@': key.Num2, '#': key.Num3, '$': key.Num4, '%': key.Num5,
	'^': key.Num6, '&': key.Num7, '*': key.Num8, '(': key.Num9, ')': key.Num0,
	'_': key.Minus, '+': key.Equals, '{': key.LeftBracket, '}': key.RightBracket,
	'|': key.Backslash, ':': key.Semicolon, '"': key.Quote, '~': key.Backtick,
	'<': key.Comma, '>': key.Period, '?': key.Slash,
}

var plain = map[rune]key.Key{
	' ': key.Spacebar, '\n': key.Enter, '\t': key.Tab,
	'-': key.Minus, '=': key.Equals, '[': key.LeftBracket, ']': key.RightBracket,
	'\\': key.Backslash, ';': key.Semicolon, '\'': key.Quote, '`': key.Backtick,
	',': key.Comma, '.': key.Period, '/': key.Slash,
}

// CharKey returns the key that types r on a US layout, with ShiftHeld
// set where the character needs it.
func CharKey(r rune) (key.Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return key.A + key.Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return (key.A + key.Key(r-'A')).WithFlags(key.ShiftHeld), true
	case r >= '1' && r <= '9':
		return key.Num1 + key.Key(r-'1'), true
	case r == '0':
		return key.Num0, true
	}
	if k, ok := plain[r]; ok {
		return k, true
	}
	if k, ok := shifted[r]; ok {
		return k.WithFlags(key.ShiftHeld), true
	}
	return key.NoKey, false
}
