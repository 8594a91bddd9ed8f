package multitap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/keymap"
)

const (
	addrMT0 key.Addr = iota
	addrMT1
	addrX
	addrY
)

type call struct {
	index    uint8
	addr     key.Addr
	tapCount uint8
	action   Action
}

type passRecorder struct {
	events []key.Event
}

func (p *passRecorder) OnPhysicalKeyEvent(ev *key.Event) input.Result {
	p.events = append(p.events, *ev)
	return input.OK
}

type harness struct {
	rt    *input.Runtime
	clock *input.ManualClock
	rec   *hid.Recorder
	mt    *Controller
	calls []call
	seen  *passRecorder
}

var testTable = TableBehavior{
	0: {key.A, key.B, key.C, key.D},
	1: {key.Escape, key.Tab},
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	km := keymap.New("test", key.Matrix{Rows: 1, Cols: 4})
	_, err := km.AddLayer("base", []key.Key{key.MultiTap(0), key.MultiTap(1), key.X, key.Y})
	require.NoError(t, err)
	return newHarnessWithKeymap(t, km, opts...)
}

func newHarnessWithKeymap(t *testing.T, km *keymap.Keymap, opts ...Option) *harness {
	t.Helper()
	h := &harness{rec: &hid.Recorder{}, clock: input.NewManualClock(0), seen: &passRecorder{}}
	h.rt = input.NewRuntime(km, hid.NewKeyboard(h.rec), input.WithClock(h.clock))

	recording := BehaviorFunc(func(c *Controller, index uint8, addr key.Addr, tapCount uint8, action Action) {
		h.calls = append(h.calls, call{index, addr, tapCount, action})
		testTable.Act(c, index, addr, tapCount, action)
	})
	opts = append([]Option{WithBehavior(recording)}, opts...)
	h.mt = New(h.rt, opts...)

	_, err := h.rt.Register(h.mt)
	require.NoError(t, err)
	_, err = h.rt.RegisterWithPriority(h.seen, input.PriorityLow)
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

func (h *harness) interruptCalls() []call {
	var out []call
	for _, c := range h.calls {
		if c.action == Interrupt {
			out = append(out, c)
		}
	}
	return out
}

func TestThreeTapsThenInterrupt(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT0)
	h.tap(30, addrMT0)
	h.tap(60, addrMT0)
	assert.Empty(t, h.rec.Reports, "sequence still open")
	assert.Equal(t, uint8(3), h.mt.TapCount())

	h.at(90, input.Press(addrX))

	interrupts := h.interruptCalls()
	require.Len(t, interrupts, 1)
	assert.Equal(t, call{index: 0, addr: addrMT0, tapCount: 3, action: Interrupt}, interrupts[0])

	assert.Equal(t, []string{"C", "-", "X"}, h.rec.Strings())
	for i := 1; i < len(h.seen.events); i++ {
		assert.True(t, h.seen.events[i].ID.After(h.seen.events[i-1].ID),
			"event %d out of order: %v after %v", i, h.seen.events[i], h.seen.events[i-1])
	}
	assert.Equal(t, 0, h.mt.Queue().Len())
	assert.Equal(t, uint8(0), h.mt.TapCount())
}

func TestSingleTapTimeout(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT0)
	h.at(199)
	assert.Empty(t, h.rec.Reports)

	h.at(200)
	require.NotEmpty(t, h.calls)
	last := h.calls[len(h.calls)-1]
	assert.Equal(t, call{index: 0, addr: addrMT0, tapCount: 1, action: Timeout}, last)
	assert.Equal(t, []string{"A", "-"}, h.rec.Strings())
}

func TestTimeoutWhileHeld(t *testing.T) {
	h := newHarness(t)

	h.at(0, input.Press(addrMT0))
	h.at(200)
	assert.Equal(t, []string{"A"}, h.rec.Strings(), "held key is pressed at timeout")

	h.at(500, input.Release(addrMT0))
	assert.Equal(t, []string{"A", "-"}, h.rec.Strings())
}

func TestTapReachingLastKeyDeliversImmediately(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT1)
	assert.Empty(t, h.rec.Reports)

	h.at(30, input.Press(addrMT1))
	assert.Equal(t, []string{"Tab"}, h.rec.Strings())
	assert.Equal(t, 0, h.mt.Queue().Len())
	assert.Equal(t, uint8(0), h.mt.TapCount())

	h.at(40, input.Release(addrMT1))
	assert.Equal(t, []string{"Tab", "-"}, h.rec.Strings())

	h.at(600)
	assert.Equal(t, []string{"Tab", "-"}, h.rec.Strings(), "nothing left to time out")
}

func TestMoreTapsThanKeysUsesLastKey(t *testing.T) {
	h := newHarness(t)
	h.mt.SetBehavior(BehaviorFunc(func(c *Controller, _ uint8, _ key.Addr, tapCount uint8, action Action) {
		if action == Tap {
			return
		}
		c.ActionKeys(tapCount, action, key.A, key.B)
	}))

	h.tap(0, addrMT0)
	h.tap(30, addrMT0)
	h.tap(60, addrMT0)
	h.at(300)

	assert.Equal(t, []string{"B", "-"}, h.rec.Strings())
}

func TestInterruptByOtherMultiTapKey(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT0)
	h.at(30, input.Press(addrMT1))

	assert.Equal(t, []string{"A", "-"}, h.rec.Strings())
	assert.Equal(t, uint8(1), h.mt.TapCount(), "new sequence started")
	head, ok := h.mt.Queue().Head()
	require.True(t, ok)
	assert.Equal(t, addrMT1, head.Event.Addr)
}

func TestReleasesAreBufferedInOrder(t *testing.T) {
	h := newHarness(t)

	h.at(0, input.Press(addrX))
	h.at(10, input.Press(addrMT0))
	h.at(20, input.Release(addrX))
	assert.Equal(t, []string{"X"}, h.rec.Strings(), "release held behind the open sequence")

	h.at(210)
	assert.Equal(t, []string{"X", "X A", "A"}, h.rec.Strings())
}

func TestNonMultiTapKeysPassWhenIdle(t *testing.T) {
	h := newHarness(t)

	h.at(0, input.Press(addrX), input.Press(addrY))
	h.at(10, input.Release(addrX), input.Release(addrY))

	assert.Equal(t, []string{"X", "X Y", "Y", "-"}, h.rec.Strings())
	assert.Empty(t, h.calls)
}

func TestDisableFlushesQueueUnmodified(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT0)
	h.at(30, input.Press(addrMT0))
	h.mt.Disable()

	assert.Equal(t, 0, h.mt.Queue().Len())
	assert.False(t, h.mt.Enabled())
	require.NotEmpty(t, h.seen.events)
	last := h.seen.events[len(h.seen.events)-1]
	assert.Equal(t, key.MultiTap(0), last.Key, "forwarded as itself")

	h.at(400)
	assert.Empty(t, h.interruptCalls())
}

func TestQueueOverflowLetsEventPass(t *testing.T) {
	const others = QueueCapacity
	keys := []key.Key{key.MultiTap(1)}
	for i := 0; i < others; i++ {
		keys = append(keys, key.A+key.Key(i))
	}
	km := keymap.New("wide", key.Matrix{Rows: 1, Cols: uint8(len(keys))})
	_, err := km.AddLayer("base", keys)
	require.NoError(t, err)
	h := newHarnessWithKeymap(t, km)

	var presses []input.Transition
	for i := 1; i <= others; i++ {
		presses = append(presses, input.Press(key.Addr(i)))
	}
	h.at(0, presses...)
	h.at(1, input.Press(0))

	for i := 1; i <= others; i++ {
		h.at(uint32(1+i), input.Release(key.Addr(i)))
	}

	assert.Equal(t, 0, h.mt.Queue().Len())
	assert.Equal(t, 1, h.rt.LiveKeys().Len(), "only the multi-tap key is still down")
	assert.Equal(t, key.Escape, h.rt.LiveKeys().At(0))
	assert.Equal(t, "Escape", h.rec.Last().String())
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.Empty())

	for i := 0; i < QueueCapacity; i++ {
		require.True(t, q.Append(key.Event{ID: key.ID(i)}, uint32(i)))
	}
	assert.True(t, q.Full())
	assert.False(t, q.Append(key.Event{ID: 99}, 99), "full queue rejects")
	assert.Equal(t, QueueCapacity, q.Len())

	q.Shift()
	head, ok := q.Head()
	require.True(t, ok)
	assert.Equal(t, key.ID(1), head.Event.ID)
	assert.Equal(t, uint32(1), head.Timestamp)

	e, ok := q.At(2)
	require.True(t, ok)
	assert.Equal(t, key.ID(3), e.Event.ID)
	_, ok = q.At(QueueCapacity)
	assert.False(t, ok)

	q.Clear()
	assert.True(t, q.Empty())
	q.Shift()
	_, ok = q.Head()
	assert.False(t, ok)
}

func TestTableBehaviorIndexes(t *testing.T) {
	assert.Equal(t, []uint8{0, 1}, testTable.Indexes())
	assert.Equal(t, "interrupt", Interrupt.String())
}

func TestReofferedEventIsIgnored(t *testing.T) {
	h := newHarness(t)

	h.tap(0, addrMT0)
	h.tap(30, addrMT0)
	require.Equal(t, 2, h.mt.Queue().Len())
	head, ok := h.mt.Queue().Head()
	require.True(t, ok)
	last := h.mt.tracker.Last()
	calls := len(h.calls)

	ev := head.Event
	for i := 0; i < 3; i++ {
		assert.Equal(t, input.OK, h.mt.OnPhysicalKeyEvent(&ev))
	}
	assert.Equal(t, head.Event, ev, "ignored event must not be rewritten")
	assert.Equal(t, 2, h.mt.Queue().Len())
	assert.Equal(t, uint8(2), h.mt.TapCount())
	assert.Equal(t, last, h.mt.tracker.Last())
	assert.Len(t, h.calls, calls, "behavior must not run again")

	h.at(500)
	require.Equal(t, []string{"B", "-"}, h.rec.Strings())
	seen := len(h.seen.events)

	for _, passed := range h.seen.events {
		again := passed
		assert.Equal(t, input.OK, h.mt.OnPhysicalKeyEvent(&again))
	}
	assert.True(t, h.mt.Queue().Empty())
	assert.Len(t, h.seen.events, seen)
	assert.Equal(t, []string{"B", "-"}, h.rec.Strings(), "no duplicate forward")
}
