package scanner

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/keymap"
)

// DefaultHold is how long a terminal key stays pressed, in milliseconds.
// Terminals report presses only, so the release is synthetic.
const DefaultHold uint32 = 250

const maxHistory = 20

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithHold sets the synthetic hold duration in milliseconds.
func WithHold(ms uint32) TerminalOption {
	return func(t *Terminal) {
		t.hold = ms
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(l *slog.Logger) TerminalOption {
	return func(t *Terminal) {
		if l != nil {
			t.logger = l
		}
	}
}

// Terminal is a Source fed by terminal key presses. It also implements
// hid.Sink so reports can be shown on the same screen.
type Terminal struct {
	screen tcell.Screen
	km     *keymap.Keymap
	logger *slog.Logger
	hold   uint32

	keys     chan key.Key
	quit     chan struct{}
	quitOnce sync.Once

	mu      sync.Mutex
	history []string

	// held maps a pressed address to the time of its latest press.
	held  map[key.Addr]uint32
	order []key.Addr
}

// NewTerminal creates a terminal source on the process terminal.
func NewTerminal(km *keymap.Keymap, opts ...TerminalOption) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	return NewTerminalWithScreen(screen, km, opts...), nil
}

// NewTerminalWithScreen creates a terminal source on an existing screen.
func NewTerminalWithScreen(screen tcell.Screen, km *keymap.Keymap, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen: screen,
		km:     km,
		logger: slog.New(slog.DiscardHandler),
		hold:   DefaultHold,
		keys:   make(chan key.Key, 64),
		quit:   make(chan struct{}),
		held:   make(map[key.Addr]uint32),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start initializes the screen and begins reading key presses.
func (t *Terminal) Start() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	t.draw()
	go t.poll()
	return nil
}

// Stop restores the terminal.
func (t *Terminal) Stop() {
	t.stop()
	t.screen.Fini()
}

// Done is closed when the user asks to quit with Ctrl-C or the screen
// goes away.
func (t *Terminal) Done() <-chan struct{} {
	return t.quit
}

func (t *Terminal) stop() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *Terminal) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			t.stop()
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if isInterrupt(e) {
				t.stop()
				return
			}
			k, ok := convertKey(e)
			if !ok {
				t.logger.Debug("unmapped terminal key", "name", e.Name())
				continue
			}
			select {
			case t.keys <- k:
			case <-t.quit:
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
			t.draw()
		}
	}
}

// Scan implements Source. Keys held for the hold duration are released
// first, then every key read since the last scan is pressed. A key read
// again while still held restarts its hold.
func (t *Terminal) Scan(now uint32) []input.Transition {
	var out []input.Transition

	kept := t.order[:0]
	for _, addr := range t.order {
		if input.HasTimeExpired(now, t.held[addr], t.hold) {
			delete(t.held, addr)
			out = append(out, input.Release(addr))
			continue
		}
		kept = append(kept, addr)
	}
	t.order = kept

	for {
		select {
		case k := <-t.keys:
			addr, ok := t.km.Reverse(k)
			if !ok {
				t.logger.Debug("key not on keymap", "key", k.String())
				continue
			}
			if _, down := t.held[addr]; !down {
				t.order = append(t.order, addr)
				out = append(out, input.Press(addr))
			}
			t.held[addr] = now
		default:
			return out
		}
	}
}

// Reports returns the reports currently shown, oldest first.
func (t *Terminal) Reports() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// Held returns the number of keys currently held.
func (t *Terminal) Held() int {
	return len(t.order)
}

// SendReport implements hid.Sink by drawing the most recent reports.
func (t *Terminal) SendReport(rep hid.Report) error {
	t.mu.Lock()
	t.history = append(t.history, rep.String())
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.mu.Unlock()
	t.draw()
	return nil
}

func (t *Terminal) draw() {
	select {
	case <-t.quit:
		return
	default:
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	title := fmt.Sprintf("keystrike: %s (Ctrl-C quits)", t.km.Name)
	drawText(t.screen, 0, 0, title, tcell.StyleDefault.Bold(true))
	for i, line := range t.history {
		drawText(t.screen, 0, i+2, line, tcell.StyleDefault)
	}
	t.screen.Show()
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func isInterrupt(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlC {
		return true
	}
	return e.Key() == tcell.KeyRune && e.Modifiers()&tcell.ModCtrl != 0 && unicode.ToLower(e.Rune()) == 'c'
}

// convertKey maps a terminal key to the keyboard key that would have
// produced it. Shifted characters map to their unshifted key.
func convertKey(e *tcell.EventKey) (key.Key, bool) {
	switch e.Key() {
	case tcell.KeyRune:
		if e.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return key.NoKey, false
		}
		return runeKey(e.Rune())
	case tcell.KeyEnter:
		return key.Enter, true
	case tcell.KeyTab:
		return key.Tab, true
	case tcell.KeyEscape:
		return key.Escape, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.Backspace, true
	case tcell.KeyDelete:
		return key.Delete, true
	case tcell.KeyInsert:
		return key.Insert, true
	case tcell.KeyHome:
		return key.Home, true
	case tcell.KeyEnd:
		return key.End, true
	case tcell.KeyPgUp:
		return key.PageUp, true
	case tcell.KeyPgDn:
		return key.PageDown, true
	case tcell.KeyUp:
		return key.UpArrow, true
	case tcell.KeyDown:
		return key.DownArrow, true
	case tcell.KeyLeft:
		return key.LeftArrow, true
	case tcell.KeyRight:
		return key.RightArrow, true
	}
	if e.Key() >= tcell.KeyF1 && e.Key() <= tcell.KeyF12 {
		return key.F1 + key.Key(e.Key()-tcell.KeyF1), true
	}
	return key.NoKey, false
}

var shifted = map[rune]key.Key{
	'!': key.Num1, '@': key.Num2, '#': key.Num3, '$': key.Num4, '%': key.Num5,
	'^': key.Num6, '&': key.Num7, '*': key.Num8, '(': key.Num9, ')': key.Num0,
	'_': key.Minus, '+': key.Equals, '{': key.LeftBracket, '}': key.RightBracket,
	'|': key.Backslash, ':': key.Semicolon, '"': key.Quote, '~': key.Backtick,
	'<': key.Comma, '>': key.Period, '?': key.Slash,
}

func runeKey(r rune) (key.Key, bool) {
	if r == ' ' {
		return key.Spacebar, true
	}
	if k, ok := shifted[r]; ok {
		return k, true
	}
	if r > unicode.MaxASCII {
		return key.NoKey, false
	}
	k, err := key.Parse(string(unicode.ToLower(r)))
	if err != nil || !k.IsKeyboardKey() {
		return key.NoKey, false
	}
	return k, true
}
