package hid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dshills/keystrike/internal/input/key"
)

func TestKeyboardPress(t *testing.T) {
	tests := []struct {
		name     string
		pressed  []key.Key
		wantMods key.HostModifiers
		wantKeys []uint8
	}{
		{"single", []key.Key{key.A}, 0, []uint8{key.A.Code()}},
		{"dedup", []key.Key{key.A, key.A}, 0, []uint8{key.A.Code()}},
		{"modifier keycode", []key.Key{key.LeftShift, key.B}, key.ModLeftShift, []uint8{key.B.Code()}},
		{"modifier flag", []key.Key{key.A.WithFlags(key.ShiftHeld)}, key.ModLeftShift, []uint8{key.A.Code()}},
		{"reserved ignored", []key.Key{key.RapidFire, key.MultiTap(1)}, 0, nil},
		{"order kept", []key.Key{key.C, key.A, key.B}, 0, []uint8{key.C.Code(), key.A.Code(), key.B.Code()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyboard(&Recorder{})
			for _, k := range tt.pressed {
				kb.Press(k)
			}
			got := kb.Current()
			want := Report{Modifiers: tt.wantMods, Keys: tt.wantKeys}
			if !got.Equal(want) {
				t.Errorf("Current() = %#v, want %#v", got, want)
			}
		})
	}
}

func TestKeyboardSendSkipsUnchanged(t *testing.T) {
	rec := &Recorder{}
	kb := NewKeyboard(rec)

	kb.Press(key.A)
	kb.Send()
	kb.ReleaseAll()
	kb.Press(key.A)
	kb.Send()
	kb.ReleaseAll()
	kb.Send()

	want := []string{"A", "-"}
	got := rec.Strings()
	if len(got) != len(want) {
		t.Fatalf("reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %q, want %q", i, got[i], want[i])
		}
	}
	if kb.Sent() != 2 {
		t.Errorf("Sent() = %d, want 2", kb.Sent())
	}
}

func TestKeyboardEmptyFirstReportNotSent(t *testing.T) {
	rec := &Recorder{}
	kb := NewKeyboard(rec)
	kb.ReleaseAll()
	kb.Send()
	if len(rec.Reports) != 0 {
		t.Errorf("got %d reports, want 0", len(rec.Reports))
	}
}

type failingSink struct{}

func (failingSink) SendReport(Report) error { return errors.New("unplugged") }

func TestKeyboardSinkError(t *testing.T) {
	kb := NewKeyboard(failingSink{})
	kb.Press(key.A)
	kb.Send()
	if kb.Sent() != 0 {
		t.Errorf("Sent() = %d, want 0", kb.Sent())
	}
	if !kb.Last().Empty() {
		t.Errorf("Last() = %v, want empty", kb.Last())
	}
}

func TestReportString(t *testing.T) {
	r := Report{Modifiers: key.ModLeftShift | key.ModRightAlt, Keys: []uint8{key.A.Code(), key.Num1.Code()}}
	if got, want := r.String(), "LShift RAlt A 1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !r.Has(key.A) || r.Has(key.B) {
		t.Error("Has() mismatch")
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := WriterSink{W: &buf, Prefix: "> "}
	if err := s.SendReport(Report{Keys: []uint8{key.Z.Code()}}); err != nil {
		t.Fatalf("SendReport() error = %v", err)
	}
	if got, want := buf.String(), "> Z\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMultiSink(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := MultiSink{a, failingSink{}, b}
	err := m.SendReport(Report{Keys: []uint8{key.Q.Code()}})
	if err == nil {
		t.Error("expected error from failing sink")
	}
	if len(a.Reports) != 1 || len(b.Reports) != 1 {
		t.Errorf("fan-out = (%d, %d), want (1, 1)", len(a.Reports), len(b.Reports))
	}
}

func TestSinkFunc(t *testing.T) {
	var got []string
	kb := NewKeyboard(SinkFunc(func(r Report) error {
		got = append(got, r.String())
		return nil
	}))
	kb.Press(key.A)
	kb.Send()
	kb.ReleaseAll()
	kb.Send()
	if len(got) != 2 || got[0] != "A" || got[1] != "-" {
		t.Errorf("reports = %v, want [A -]", got)
	}
}
