package lua

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	num, ok := state.GetGlobal("x").(glua.LNumber)
	if !ok || float64(num) != 2 {
		t.Errorf("x = %v, want 2", state.GetGlobal("x"))
	}

	if err := state.DoString(`invalid lua code !!!`); err == nil {
		t.Error("DoString() with syntax error should fail")
	}
}

func TestStateCall(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	err = state.DoString(`
		function add(a, b)
			return a + b
		end
		function multi()
			return 1, "hello", true
		end
		function none() end
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := state.Call("add", glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 1 || results[0] != glua.LNumber(5) {
		t.Errorf("add(2, 3) = %v, want [5]", results)
	}

	results, err = state.Call("multi")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Call() returned %d results, want 3", len(results))
	}

	results, err = state.Call("none")
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("none() = %v, %v; want empty, nil", results, err)
	}

	if _, err := state.Call("undefined_function"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(undefined) error = %v, want ErrNotFunction", err)
	}
	state.SetGlobal("notfn", glua.LNumber(3))
	if _, err := state.Call("notfn"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(notfn) error = %v, want ErrNotFunction", err)
	}
	if state.HasFunction("notfn") || !state.HasFunction("add") {
		t.Error("HasFunction() mismatch")
	}
}

func TestStateCallRuntimeError(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`function boom() error("nope") end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	top := state.L.GetTop()
	if _, err := state.Call("boom"); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("Call(boom) error = %v, want nope", err)
	}
	if got := state.L.GetTop(); got != top {
		t.Errorf("stack top = %d after failed call, want %d", got, top)
	}
}

func TestStateRegisterModule(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	state.RegisterModule("testmod", map[string]glua.LGFunction{
		"hello": func(L *glua.LState) int {
			L.Push(glua.LString("world"))
			return 1
		},
	})
	if err := state.DoString(`result = testmod.hello()`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v := state.GetGlobal("result"); v != glua.LString("world") {
		t.Errorf("testmod.hello() = %v, want world", v)
	}
}

func TestStateTimeout(t *testing.T) {
	state, err := NewState(WithExecutionTimeout(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`function spin() while true do end end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if _, err := state.Call("spin"); !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("Call(spin) error = %v, want ErrExecutionTimeout", err)
	}

	// The state stays usable after a timeout.
	if err := state.DoString(`y = 3`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateClose(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	state.Close()
	if !state.IsClosed() {
		t.Error("Close() did not close state")
	}
	state.Close()

	if err := state.DoString(`x = 1`); err != ErrStateClosed {
		t.Errorf("DoString() on closed state error = %v, want ErrStateClosed", err)
	}
	if _, err := state.Call("test"); err != ErrStateClosed {
		t.Errorf("Call() on closed state error = %v, want ErrStateClosed", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() on closed state = %v, want nil", v)
	}
}

func TestStateSandbox(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	state, err := NewState(WithStateLogger(logger))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	for _, name := range append([]string{"io", "os", "debug", "package"}, removedGlobals...) {
		if v := state.GetGlobal(name); v != glua.LNil {
			t.Errorf("%s should not be reachable, got %T", name, v)
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs"} {
		if v := state.GetGlobal(name); v == glua.LNil {
			t.Errorf("%s should be available", name)
		}
	}

	if err := state.DoString(`print("hello", 42)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, `msg="hello 42"`) || !strings.Contains(out, "source=lua") {
		t.Errorf("print output = %q", out)
	}
}
