package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/keystrike/internal/input/key"
)

func newTestKeymap(t *testing.T) *Keymap {
	t.Helper()
	km := New("test", key.Matrix{Rows: 1, Cols: 3})
	if _, err := km.AddLayer("base", []key.Key{key.A, key.B, key.C}); err != nil {
		t.Fatalf("AddLayer(base) error = %v", err)
	}
	if _, err := km.AddLayer("upper", []key.Key{key.Transparent, key.Num2}); err != nil {
		t.Fatalf("AddLayer(upper) error = %v", err)
	}
	return km
}

func TestLookupLayers(t *testing.T) {
	km := newTestKeymap(t)

	if got := km.Lookup(1); got != key.B {
		t.Errorf("Lookup(1) base = %v, want B", got)
	}

	if err := km.Activate(1); err != nil {
		t.Fatalf("Activate(1) error = %v", err)
	}
	tests := []struct {
		addr key.Addr
		want key.Key
	}{
		{0, key.A},
		{1, key.Num2},
		{2, key.C},
		{3, key.NoKey},
		{key.AddrNone, key.NoKey},
	}
	for _, tt := range tests {
		if got := km.Lookup(tt.addr); got != tt.want {
			t.Errorf("Lookup(%v) = %v, want %v", tt.addr, got, tt.want)
		}
	}

	if err := km.Deactivate(1); err != nil {
		t.Fatalf("Deactivate(1) error = %v", err)
	}
	if got := km.Lookup(1); got != key.B {
		t.Errorf("Lookup(1) after Deactivate = %v, want B", got)
	}
}

func TestActivateErrors(t *testing.T) {
	km := newTestKeymap(t)

	if err := km.Activate(5); !errors.Is(err, ErrNoSuchLayer) {
		t.Errorf("Activate(5) error = %v, want ErrNoSuchLayer", err)
	}
	if err := km.Deactivate(0); !errors.Is(err, ErrBaseLayerLock) {
		t.Errorf("Deactivate(0) error = %v, want ErrBaseLayerLock", err)
	}
}

func TestToggleAndActiveLayers(t *testing.T) {
	km := newTestKeymap(t)

	if err := km.Toggle(1); err != nil {
		t.Fatal(err)
	}
	if !km.IsActive(1) {
		t.Error("layer 1 should be active after Toggle")
	}
	if err := km.Activate(0); err != nil {
		t.Fatal(err)
	}
	got := km.ActiveLayers()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("ActiveLayers() = %v, want [0 1]", got)
	}
	if err := km.Toggle(1); err != nil {
		t.Fatal(err)
	}
	if km.IsActive(1) {
		t.Error("layer 1 should be inactive after second Toggle")
	}
}

func TestReverse(t *testing.T) {
	km := newTestKeymap(t)

	addr, ok := km.Reverse(key.C)
	if !ok || addr != 2 {
		t.Errorf("Reverse(C) = (%v, %v), want (#2, true)", addr, ok)
	}
	if _, ok := km.Reverse(key.Z); ok {
		t.Error("Reverse(Z) should fail")
	}
}

func TestAddLayerTooLarge(t *testing.T) {
	km := New("small", key.Matrix{Rows: 1, Cols: 1})
	_, err := km.AddLayer("base", []key.Key{key.A, key.B})
	if !errors.Is(err, ErrLayerSize) {
		t.Errorf("AddLayer() error = %v, want ErrLayerSize", err)
	}
}

func TestSet(t *testing.T) {
	km := newTestKeymap(t)
	if err := km.Set(0, 2, key.RapidFire); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := km.Lookup(2); got != key.RapidFire {
		t.Errorf("Lookup(2) = %v, want RapidFire", got)
	}
	if err := km.Set(0, 9, key.A); err == nil {
		t.Error("Set outside matrix should fail")
	}
}

const testYAML = `
name: tiny
rows: 2
cols: 3
layers:
  - name: base
    rows:
      - "A S-B MultiTap(2)"
      - "CapsLock Enter RapidFire"
  - name: fn
    rows:
      - "___ F2"
`

func TestLoadReader(t *testing.T) {
	km, err := NewLoader().LoadReader(strings.NewReader(testYAML))
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	if km.Name != "tiny" {
		t.Errorf("Name = %q, want %q", km.Name, "tiny")
	}
	if km.LayerCount() != 2 {
		t.Fatalf("LayerCount() = %d, want 2", km.LayerCount())
	}

	tests := []struct {
		addr key.Addr
		want key.Key
	}{
		{0, key.A},
		{1, key.B.WithFlags(key.ShiftHeld)},
		{2, key.MultiTap(2)},
		{3, key.CapsLock},
		{5, key.RapidFire},
	}
	for _, tt := range tests {
		if got := km.Lookup(tt.addr); got != tt.want {
			t.Errorf("Lookup(%v) = %v, want %v", tt.addr, got, tt.want)
		}
	}

	fn, ok := km.LayerIndex("fn")
	if !ok {
		t.Fatal("layer fn not found")
	}
	if err := km.Activate(fn); err != nil {
		t.Fatal(err)
	}
	if got := km.Lookup(1); got != key.F2 {
		t.Errorf("Lookup(1) on fn = %v, want F2", got)
	}
	if got := km.Lookup(4); got != key.Enter {
		t.Errorf("Lookup(4) on fn = %v, want Enter (transparent)", got)
	}
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no matrix", "name: x\nlayers:\n  - name: base\n    rows: [\"A\"]\n"},
		{"no layers", "name: x\nrows: 1\ncols: 1\n"},
		{"bad key", "name: x\nrows: 1\ncols: 1\nlayers:\n  - name: base\n    rows: [\"Nope\"]\n"},
		{"too many cols", "name: x\nrows: 1\ncols: 1\nlayers:\n  - name: base\n    rows: [\"A B\"]\n"},
		{"too many rows", "name: x\nrows: 1\ncols: 1\nlayers:\n  - name: base\n    rows: [\"A\", \"B\"]\n"},
		{"bad yaml", "name: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader().LoadReader(strings.NewReader(tt.yaml)); err == nil {
				t.Error("LoadReader() should fail")
			}
		})
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("rows: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	l.AddSearchPath(dir)
	kms, err := l.LoadAll()
	if err == nil {
		t.Error("LoadAll() should report the broken file")
	}
	if len(kms) != 1 || kms[0].Name != "tiny" {
		t.Errorf("LoadAll() loaded %d keymaps, want tiny only", len(kms))
	}
}

func TestDefault(t *testing.T) {
	km := Default()
	if km.LayerCount() != 2 {
		t.Errorf("LayerCount() = %d, want 2", km.LayerCount())
	}
	for _, k := range []key.Key{key.CapsLock, key.Enter, key.MultiTap(0), key.RapidFire, key.AutoShiftToggle, key.HoldTapEnable} {
		if _, ok := km.Reverse(k); !ok {
			t.Errorf("default keymap has no %v", k)
		}
	}

	fn, _ := km.Layer(1)
	for _, k := range []key.Key{key.Syster, key.Macro(0), key.Macro(1)} {
		if !slices.Contains(fn.Keys, k) {
			t.Errorf("function layer has no %v", k)
		}
	}
}
