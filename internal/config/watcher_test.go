package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("[log]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.Path != w.Path() {
			t.Errorf("event path = %s, want %s", ev.Path, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event after write")
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher("/nonexistent/dir/keystrike.toml"); err == nil {
		t.Error("NewWatcher() on a missing directory should fail")
	}
}
