package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/keymap"
	"github.com/dshills/keystrike/internal/plugin/multitap"
)

const script = `
function multitap(index, addr, taps, action)
  if index == 0 then
    return "A", "B", "C"
  elseif index == 1 then
    return { "Escape", "S-Tab" }
  elseif index == 2 then
    error("broken")
  end
end
`

type harness struct {
	rt    *input.Runtime
	clock *input.ManualClock
	rec   *hid.Recorder
	b     *Behavior
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	km := keymap.New("test", key.Matrix{Rows: 1, Cols: 4})
	_, err := km.AddLayer("base", []key.Key{key.MultiTap(0), key.MultiTap(1), key.MultiTap(2), key.X})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "multitap.lua")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))
	b, err := LoadBehavior(path, nil, WithFallback(multitap.TableBehavior{2: {key.Z}}))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	h := &harness{rec: &hid.Recorder{}, clock: input.NewManualClock(0), b: b}
	h.rt = input.NewRuntime(km, hid.NewKeyboard(h.rec), input.WithClock(h.clock))
	_, err = h.rt.Register(multitap.New(h.rt, multitap.WithBehavior(b)))
	require.NoError(t, err)
	return h
}

func (h *harness) at(ms uint32, transitions ...input.Transition) {
	h.clock.Set(ms)
	h.rt.Cycle(transitions)
}

func (h *harness) tap(ms uint32, addr key.Addr) {
	h.at(ms, input.Press(addr))
	h.at(ms+10, input.Release(addr))
}

func TestScriptedDoubleTap(t *testing.T) {
	h := newHarness(t)

	h.tap(0, 0)
	h.tap(30, 0)
	assert.Empty(t, h.rec.Reports)

	h.at(230)
	assert.Equal(t, []string{"B", "-"}, h.rec.Strings())
	assert.Zero(t, h.b.Errors())
}

func TestScriptedTableReachesLastKey(t *testing.T) {
	h := newHarness(t)

	h.tap(0, 1)
	h.at(30, input.Press(1))
	assert.Equal(t, []string{"LShift Tab"}, h.rec.Strings())
	h.at(40, input.Release(1))
	assert.Equal(t, []string{"LShift Tab", "-"}, h.rec.Strings())
}

func TestScriptErrorUsesFallback(t *testing.T) {
	h := newHarness(t)

	h.tap(0, 2)
	assert.Equal(t, []string{"Z", "-"}, h.rec.Strings())
	assert.Equal(t, 1, h.b.Errors())
}

func TestKeysConversion(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)
	defer state.Close()

	require.NoError(t, state.DoString(`
		function multitap(index, addr, taps, action)
		  if action == "tap" then return nil end
		  if index == 1 then return 3.5 end
		  if index == 2 then return "Nope" end
		  if index == 3 then return { { "A" } } end
		  if index == 4 then return 4, "C-c" end
		  return taps, addr
		end
	`))
	b, err := NewBehavior(state)
	require.NoError(t, err)

	keys, err := b.Keys(0, 0, 1, multitap.Tap)
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = b.Keys(4, 0, 1, multitap.Timeout)
	require.NoError(t, err)
	assert.Equal(t, []key.Key{key.A, key.C.WithFlags(key.CtrlHeld)}, keys)

	keys, err = b.Keys(0, 5, 7, multitap.Interrupt)
	require.NoError(t, err)
	assert.Equal(t, []key.Key{key.Key(7), key.Key(5)}, keys)

	for _, index := range []uint8{1, 2, 3} {
		_, err := b.Keys(index, 0, 1, multitap.Timeout)
		assert.True(t, errors.Is(err, ErrBadReturn), "index %d: %v", index, err)
	}
}

func TestMissingFunction(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)
	defer state.Close()

	_, err = NewBehavior(state, WithFunction("pick"))
	assert.ErrorIs(t, err, ErrNotFunction)

	_, err = LoadBehavior(filepath.Join(t.TempDir(), "missing.lua"), nil)
	assert.Error(t, err)
}

func TestHostModule(t *testing.T) {
	km := keymap.New("test", key.Matrix{Rows: 1, Cols: 3})
	_, err := km.AddLayer("base", []key.Key{key.MultiTap(0), key.LeftShift, key.X})
	require.NoError(t, err)
	rt := input.NewRuntime(km, hid.NewKeyboard(&hid.Recorder{}), input.WithClock(input.NewManualClock(0)))

	state, err := NewState(WithHost(rt))
	require.NoError(t, err)
	defer state.Close()

	require.NoError(t, state.DoString(`
		function multitap(index, addr, taps, action)
		  if keystrike.pressed("LeftShift") then
		    return keystrike.lookup(2)
		  end
		  return "A"
		end
		function inspect()
		  local canon, msg = keystrike.key("nope")
		  return keystrike.key("esc"), canon, keystrike.lookup(0), keystrike.live(1), keystrike.held()
		end
	`))
	b, err := NewBehavior(state)
	require.NoError(t, err)

	keys, err := b.Keys(0, 0, 1, multitap.Timeout)
	require.NoError(t, err)
	assert.Equal(t, []key.Key{key.A}, keys)

	rt.Cycle([]input.Transition{input.Press(1)})
	keys, err = b.Keys(0, 0, 1, multitap.Timeout)
	require.NoError(t, err)
	assert.Equal(t, []key.Key{key.X}, keys, "shift held switches to the key at address 2")

	ret, err := state.Call("inspect")
	require.NoError(t, err)
	require.Len(t, ret, 5)
	assert.Equal(t, "Escape", ret[0].String())
	assert.Equal(t, lua.LNil, ret[1])
	assert.Equal(t, key.MultiTap(0).String(), ret[2].String())
	assert.Equal(t, "LeftShift", ret[3].String())
	assert.Equal(t, "1", ret[4].String())
}
