package scanner

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
)

func startTerminal(t *testing.T, opts ...TerminalOption) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	term := NewTerminalWithScreen(screen, testKeymap(t), opts...)
	require.NoError(t, term.Start())
	t.Cleanup(term.Stop)
	return term, screen
}

// scanUntil scans at now until something arrives from the poll goroutine.
func scanUntil(t *testing.T, term *Terminal, now uint32) []input.Transition {
	t.Helper()
	var got []input.Transition
	require.Eventually(t, func() bool {
		got = append(got, term.Scan(now)...)
		return len(got) > 0
	}, time.Second, time.Millisecond)
	return got
}

func TestTerminalPressAndSyntheticRelease(t *testing.T) {
	term, screen := startTerminal(t, WithHold(100))

	screen.InjectKey(tcell.KeyRune, 'B', tcell.ModShift)
	got := scanUntil(t, term, 0)
	assert.Equal(t, []input.Transition{input.Press(1)}, got)
	assert.Equal(t, 1, term.Held())

	assert.Empty(t, term.Scan(99))
	assert.Equal(t, []input.Transition{input.Release(1)}, term.Scan(100))
	assert.Equal(t, 0, term.Held())
}

func TestTerminalRepeatExtendsHold(t *testing.T) {
	term, screen := startTerminal(t, WithHold(100))

	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	require.Equal(t, []input.Transition{input.Press(5)}, scanUntil(t, term, 0))

	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	deadline := time.Now().Add(time.Second)
	for term.held[5] != 50 {
		require.True(t, time.Now().Before(deadline), "repeat never arrived")
		assert.Empty(t, term.Scan(50), "repeat does not press again")
		time.Sleep(time.Millisecond)
	}

	assert.Empty(t, term.Scan(120))
	assert.Equal(t, []input.Transition{input.Release(5)}, term.Scan(150))
}

func TestTerminalQuit(t *testing.T) {
	term, screen := startTerminal(t)

	screen.InjectKey(tcell.KeyRune, 'c', tcell.ModCtrl)
	select {
	case <-term.Done():
	case <-time.After(time.Second):
		t.Fatal("terminal did not quit on Ctrl-C")
	}
}

func TestTerminalShowsReports(t *testing.T) {
	term, _ := startTerminal(t)

	for i := 0; i < maxHistory+5; i++ {
		require.NoError(t, term.SendReport(hid.Report{}))
	}
	require.NoError(t, term.SendReport(hid.Report{Keys: []uint8{key.A.Code()}}))

	reports := term.Reports()
	assert.Len(t, reports, maxHistory)
	assert.Equal(t, "A", reports[len(reports)-1])
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		k    tcell.Key
		r    rune
		want key.Key
		ok   bool
	}{
		{tcell.KeyRune, 'a', key.A, true},
		{tcell.KeyRune, 'Q', key.Q, true},
		{tcell.KeyRune, '7', key.Num7, true},
		{tcell.KeyRune, '?', key.Slash, true},
		{tcell.KeyRune, ' ', key.Spacebar, true},
		{tcell.KeyRune, '-', key.Minus, true},
		{tcell.KeyRune, 'é', key.NoKey, false},
		{tcell.KeyF5, 0, key.F5, true},
		{tcell.KeyLeft, 0, key.LeftArrow, true},
		{tcell.KeyRune, 'b', key.B, true},
		{tcell.KeyHome, 0, key.Home, true},
	}
	for _, tt := range tests {
		got, ok := convertKey(tcell.NewEventKey(tt.k, tt.r, tcell.ModNone))
		assert.Equal(t, tt.ok, ok, "%v %q", tt.k, tt.r)
		assert.Equal(t, tt.want, got, "%v %q", tt.k, tt.r)
	}
}
