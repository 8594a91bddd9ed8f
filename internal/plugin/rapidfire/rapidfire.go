// Package rapidfire repeats the keys held together with the rapid-fire key.
//
// While active, every interval the host report is cleared and then rebuilt
// from live keys, so the host sees the held keys pressed again and again.
// Keys under the held switches can optionally flash.
package rapidfire

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/led"
)

// Defaults, in milliseconds.
const (
	DefaultInterval      uint16 = 10
	DefaultFlashInterval uint16 = 69
)

// DefaultActiveColor is the flash color.
var DefaultActiveColor = led.Color{R: 160}

// Name is the plugin name used in logs and metrics.
const Name = "rapidfire"

// Option configures a RapidFire.
type Option func(*RapidFire)

// WithInterval sets the repeat interval in milliseconds.
func WithInterval(ms uint16) Option {
	return func(r *RapidFire) {
		r.interval = ms
	}
}

// WithFlashInterval sets the LED flash interval in milliseconds.
func WithFlashInterval(ms uint16) Option {
	return func(r *RapidFire) {
		r.flashInterval = ms
	}
}

// WithSticky makes the rapid-fire key toggle instead of acting while held.
func WithSticky(sticky bool) Option {
	return func(r *RapidFire) {
		r.sticky = sticky
	}
}

// WithFlash turns LED flashing on or off.
func WithFlash(flash bool) Option {
	return func(r *RapidFire) {
		r.flash = flash
	}
}

// WithActiveColor sets the flash color.
func WithActiveColor(c led.Color) Option {
	return func(r *RapidFire) {
		r.activeColor = c
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *RapidFire) {
		if l != nil {
			r.logger = l
		}
	}
}

// RapidFire is the periodic re-trigger generator.
type RapidFire struct {
	rt     *input.Runtime
	logger *slog.Logger

	interval      uint16
	flashInterval uint16
	sticky        bool
	flash         bool
	activeColor   led.Color

	active     bool
	start      uint32
	flashStart uint32
	ledsOn     bool
	lit        map[key.Addr]struct{}
	repeats    uint64
}

// New creates a rapid-fire generator.
func New(rt *input.Runtime, opts ...Option) *RapidFire {
	r := &RapidFire{
		rt:            rt,
		logger:        rt.Logger(),
		interval:      DefaultInterval,
		flashInterval: DefaultFlashInterval,
		flash:         true,
		activeColor:   DefaultActiveColor,
		lit:           make(map[key.Addr]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements input.Named.
func (r *RapidFire) Name() string {
	return Name
}

// OnKeyEvent implements input.KeyHandler.
func (r *RapidFire) OnKeyEvent(ev *key.Event) input.Result {
	if ev.Key != key.RapidFire {
		return input.OK
	}
	switch {
	case ev.State.ToggledOn():
		if r.sticky {
			r.setActive(!r.active)
		} else {
			r.setActive(true)
		}
	case ev.State.ToggledOff() && !r.sticky:
		r.setActive(false)
	}
	return input.Consumed
}

func (r *RapidFire) setActive(active bool) {
	if active && !r.active {
		now := r.rt.MillisAtCycleStart()
		r.start = now
		r.flashStart = now
		r.ledsOn = false
	}
	if active != r.active {
		r.logger.Debug("rapid fire", "plugin", Name, "active", active)
	}
	r.active = active
}

// AfterEachCycle implements input.CycleHandler.
func (r *RapidFire) AfterEachCycle() input.Result {
	if !r.active || !r.rt.HasTimeExpired(r.start, uint32(r.interval)) {
		return input.OK
	}

	kb := r.rt.Keyboard()
	kb.ReleaseAll()
	kb.Send()
	r.rt.InjectKey(key.IsPressed, key.NoKey)
	r.start = r.rt.MillisAtCycleStart()
	r.repeats++

	// A missed release must not leave the generator running.
	if !r.sticky && !r.rt.LiveKeys().Contains(key.RapidFire) {
		r.setActive(false)
	}
	return input.OK
}

// BeforeSyncingLEDs implements input.LEDSyncHandler.
func (r *RapidFire) BeforeSyncingLEDs() input.Result {
	leds := r.rt.LEDs()
	if !r.flash || !r.active {
		for addr := range r.lit {
			leds.Refresh(addr)
			delete(r.lit, addr)
		}
		return input.OK
	}
	if !r.rt.HasTimeExpired(r.flashStart, uint32(r.flashInterval)) {
		return input.OK
	}

	color := led.Off
	if r.ledsOn {
		color = r.activeColor
	}
	r.rt.LiveKeys().All(func(addr key.Addr, k key.Key) {
		if k.IsKeyboardKey() {
			leds.SetColor(addr, color)
			r.lit[addr] = struct{}{}
		}
	})
	r.flashStart = r.rt.MillisAtCycleStart()
	r.ledsOn = !r.ledsOn
	return input.OK
}

// Active reports whether keys are being repeated.
func (r *RapidFire) Active() bool {
	return r.active
}

// Repeats returns how many times the report has been re-triggered.
func (r *RapidFire) Repeats() uint64 {
	return r.repeats
}

// Interval returns the repeat interval in milliseconds.
func (r *RapidFire) Interval() uint16 {
	return r.interval
}

// SetInterval sets the repeat interval in milliseconds.
func (r *RapidFire) SetInterval(ms uint16) {
	r.interval = ms
}

// FlashInterval returns the LED flash interval in milliseconds.
func (r *RapidFire) FlashInterval() uint16 {
	return r.flashInterval
}

// SetFlashInterval sets the LED flash interval in milliseconds.
func (r *RapidFire) SetFlashInterval(ms uint16) {
	r.flashInterval = ms
}

// Sticky reports whether the key toggles.
func (r *RapidFire) Sticky() bool {
	return r.sticky
}

// SetSticky sets whether the key toggles.
func (r *RapidFire) SetSticky(sticky bool) {
	r.sticky = sticky
}

// Flash reports whether LEDs flash while active.
func (r *RapidFire) Flash() bool {
	return r.flash
}

// SetFlash turns LED flashing on or off.
func (r *RapidFire) SetFlash(flash bool) {
	r.flash = flash
}

// ActiveColor returns the flash color.
func (r *RapidFire) ActiveColor() led.Color {
	return r.activeColor
}

// SetActiveColor sets the flash color.
func (r *RapidFire) SetActiveColor(c led.Color) {
	r.activeColor = c
}
