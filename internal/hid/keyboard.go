package hid

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input/key"
)

// Sink receives every report that differs from the previous one.
type Sink interface {
	SendReport(r Report) error
}

// Keyboard builds reports from pressed keys and hands changed reports to a
// Sink. It implements input.Keyboard.
type Keyboard struct {
	sink    Sink
	logger  *slog.Logger
	current Report
	last    Report
	sent    int
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithLogger sets the logger used for sink errors.
func WithLogger(l *slog.Logger) Option {
	return func(k *Keyboard) {
		if l != nil {
			k.logger = l
		}
	}
}

// NewKeyboard creates a keyboard writing to sink.
func NewKeyboard(sink Sink, opts ...Option) *Keyboard {
	k := &Keyboard{
		sink:   sink,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Press adds k to the report being built. Modifier keycodes and modifier
// flags go into the modifier byte; other keycodes are added once.
func (k *Keyboard) Press(pressed key.Key) {
	if !pressed.IsKeyboardKey() {
		return
	}
	k.current.Modifiers |= pressed.Modifiers()
	if pressed.IsModifier() {
		return
	}
	code := pressed.Code()
	for _, c := range k.current.Keys {
		if c == code {
			return
		}
	}
	k.current.Keys = append(k.current.Keys, code)
}

// ReleaseAll empties the report being built.
func (k *Keyboard) ReleaseAll() {
	k.current = Report{}
}

// Send hands the report being built to the sink if it changed since the
// last one sent.
func (k *Keyboard) Send() {
	if k.current.Equal(k.last) {
		return
	}
	r := k.current.Clone()
	if err := k.sink.SendReport(r); err != nil {
		k.logger.Error("send report", "report", r.String(), "error", err)
		return
	}
	k.last = r
	k.sent++
}

// Current returns a copy of the report being built.
func (k *Keyboard) Current() Report {
	return k.current.Clone()
}

// Last returns a copy of the last report sent.
func (k *Keyboard) Last() Report {
	return k.last.Clone()
}

// Sent returns the number of reports handed to the sink.
func (k *Keyboard) Sent() int {
	return k.sent
}
