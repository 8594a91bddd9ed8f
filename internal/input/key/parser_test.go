package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Key
	}{
		{"A", A},
		{"a", A},
		{"1", Num1},
		{"Enter", Enter},
		{"return", Enter},
		{"esc", Escape},
		{"Space", Spacebar},
		{"LeftShift", LeftShift},
		{"lctrl", LeftControl},
		{"F4", F4},
		{"-", Minus},
		{"/", Slash},
		{"NonUSBackslash", NonUSBackslash},
		{"S-A", A.WithFlags(ShiftHeld)},
		{"S--", Minus.WithFlags(ShiftHeld)},
		{"C-A-Delete", Delete.WithFlags(CtrlHeld | LAltHeld)},
		{"AltGr-E", E.WithFlags(RAltHeld)},
		{"Shift+A", A.WithFlags(ShiftHeld)},
		{"Ctrl+Shift+P", P.WithFlags(CtrlHeld | ShiftHeld)},
		{"<S-a>", A.WithFlags(ShiftHeld)},
		{"RapidFire", RapidFire},
		{"HoldTapEnable", HoldTapEnable},
		{"AutoShiftToggle", AutoShiftToggle},
		{"MultiTap(3)", MultiTap(3)},
		{"multitap( 127 )", MultiTap(127)},
		{"Macro(2)", Macro(2)},
		{"syster", Syster},
		{"Transparent", Transparent},
		{"___", Transparent},
		{"none", NoKey},
		{"  B  ", B},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"NotAKey", ErrUnknownKey},
		{"S-NotAKey", ErrUnknownKey},
		{"Q-A", ErrInvalidSpec},
		{"S-RapidFire", ErrInvalidSpec},
		{"MultiTap(128)", ErrInvalidSpec},
		{"MultiTap(x)", ErrInvalidSpec},
		{"Macro(64)", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := Parse(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	keys := []Key{A, A.WithFlags(ShiftHeld), Delete.WithFlags(CtrlHeld | LAltHeld), RapidFire, MultiTap(9), Macro(3), Syster, F12}
	for _, k := range keys {
		got, err := Parse(k.String())
		if err != nil {
			t.Errorf("Parse(%q) error = %v", k.String(), err)
			continue
		}
		if got != k {
			t.Errorf("Parse(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on unknown key")
		}
	}()
	MustParse("definitely-not-a-key")
}
