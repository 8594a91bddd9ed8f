// Package settings exposes plugin parameters by dotted name.
//
// A Manager reads and writes settings such as "autoshift.timeout" or
// "holdtap.map", stages writes in a storage.Store until they are
// committed, and tells notify observers about every change. Commands puts
// a line-oriented text protocol in front of a Manager.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by the settings manager.
var (
	ErrUnknownSetting   = errors.New("unknown setting")
	ErrDuplicateSetting = errors.New("setting already registered")
	ErrInvalidValue     = errors.New("invalid value")
)

// Type is the value type of a setting.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeInt
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	default:
		return "unknown"
	}
}

// Setting is one named parameter. Values travel as strings; Get returns
// the canonical form and Set parses and applies.
type Setting struct {
	// Name is the dotted name (e.g., "autoshift.timeout").
	Name string

	// Description is human-readable documentation.
	Description string

	Type Type

	Get func() string
	Set func(value string) error
}

// Section returns the part of the name before the first dot.
func (s Setting) Section() string {
	section, _, _ := strings.Cut(s.Name, ".")
	return section
}

// Bool builds a boolean setting. "on" and "off" are accepted besides the
// strconv.ParseBool forms.
func Bool(name, description string, get func() bool, set func(bool)) Setting {
	return Setting{
		Name:        name,
		Description: description,
		Type:        TypeBool,
		Get:         func() string { return strconv.FormatBool(get()) },
		Set: func(value string) error {
			b, err := parseBool(value)
			if err != nil {
				return err
			}
			set(b)
			return nil
		},
	}
}

// Uint16 builds an integer setting limited to [lowest, 65535].
func Uint16(name, description string, lowest uint16, get func() uint16, set func(uint16)) Setting {
	return Setting{
		Name:        name,
		Description: description,
		Type:        TypeInt,
		Get:         func() string { return strconv.FormatUint(uint64(get()), 10) },
		Set: func(value string) error {
			n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number in 0-65535", ErrInvalidValue, value)
			}
			if uint16(n) < lowest {
				return fmt.Errorf("%w: %d is below %d", ErrInvalidValue, n, lowest)
			}
			set(uint16(n))
			return nil
		},
	}
}

// String builds a string setting with its own parser.
func String(name, description string, get func() string, set func(string) error) Setting {
	return Setting{
		Name:        name,
		Description: description,
		Type:        TypeString,
		Get:         get,
		Set: func(value string) error {
			if err := set(strings.TrimSpace(value)); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return nil
		},
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, value)
	}
	return b, nil
}
