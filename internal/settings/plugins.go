package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/input/keymap"
	"github.com/dshills/keystrike/internal/led"
	"github.com/dshills/keystrike/internal/plugin/autoshift"
	"github.com/dshills/keystrike/internal/plugin/holdtap"
	"github.com/dshills/keystrike/internal/plugin/macros"
	"github.com/dshills/keystrike/internal/plugin/multitap"
	"github.com/dshills/keystrike/internal/plugin/rapidfire"
	"github.com/dshills/keystrike/internal/plugin/syster"
)

// RegisterAutoShift registers the autoshift.* settings.
func RegisterAutoShift(m *Manager, a *autoshift.AutoShift) error {
	return m.registerAll(
		Bool("autoshift.enabled", "Shift keys held past the timeout",
			a.Enabled, a.SetEnabled),
		Uint16("autoshift.timeout", "Hold time in ms before a key is shifted", 1,
			a.Timeout, a.SetTimeout),
		String("autoshift.classes", "Key classes eligible for auto-shift (letters,numbers,symbols|all|none)",
			func() string { return a.Classes().String() },
			func(v string) error {
				c, err := autoshift.ParseClass(v)
				if err != nil {
					return err
				}
				a.SetClasses(c)
				return nil
			}),
	)
}

// RegisterHoldTap registers the holdtap.* settings.
func RegisterHoldTap(m *Manager, h *holdtap.HoldTap) error {
	return m.registerAll(
		Bool("holdtap.enabled", "Give mapped keys a meaning when held",
			h.Enabled, h.SetEnabled),
		Uint16("holdtap.timeout", "Hold time in ms for bindings without their own", 1,
			h.Timeout, h.SetTimeout),
		String("holdtap.map", "Bindings as Input:Output[:ms], space separated",
			func() string { return holdtap.FormatBindings(h.Bindings()) },
			func(v string) error {
				b, err := holdtap.ParseBindings(v)
				if err != nil {
					return err
				}
				h.SetBindings(b)
				return nil
			}),
	)
}

// RegisterMultiTap registers the multitap.* settings.
func RegisterMultiTap(m *Manager, c *multitap.Controller) error {
	return m.registerAll(
		Bool("multitap.enabled", "Resolve multi-tap keys",
			c.Enabled, c.SetEnabled),
		Uint16("multitap.timeout", "Quiet time in ms that ends a multi-tap sequence", 1,
			c.Timeout, c.SetTimeout),
	)
}

// RegisterRapidFire registers the rapidfire.* settings.
func RegisterRapidFire(m *Manager, r *rapidfire.RapidFire) error {
	return m.registerAll(
		Uint16("rapidfire.interval", "Repeat interval in ms", 1,
			r.Interval, r.SetInterval),
		Uint16("rapidfire.flash_interval", "LED flash interval in ms", 1,
			r.FlashInterval, r.SetFlashInterval),
		Bool("rapidfire.sticky", "The rapid-fire key toggles instead of acting while held",
			r.Sticky, r.SetSticky),
		Bool("rapidfire.flash", "Flash held keys while repeating",
			r.Flash, r.SetFlash),
		String("rapidfire.active_color", "Flash color as #rrggbb",
			func() string { return r.ActiveColor().String() },
			func(v string) error {
				c, err := led.ParseColor(v)
				if err != nil {
					return err
				}
				r.SetActiveColor(c)
				return nil
			}),
	)
}

// RegisterSyster registers the syster.* settings.
func RegisterSyster(m *Manager, s *syster.Syster) error {
	return m.registerAll(
		Bool("syster.enabled", "The Syster key starts a typed symbol",
			s.Enabled, s.SetEnabled),
	)
}

// RegisterMacros registers the macros.* settings.
func RegisterMacros(m *Manager, mc *macros.Macros) error {
	return m.registerAll(
		Bool("macros.enabled", "Play macro keys",
			mc.Enabled, mc.SetEnabled),
	)
}

// RegisterKeymap registers keymap.layers, the active layer stack by name.
// Setting it activates exactly the named layers on top of the base layer.
func RegisterKeymap(m *Manager, km *keymap.Keymap) error {
	return m.registerAll(
		String("keymap.layers", "Active layers, bottom first",
			func() string {
				var names []string
				for _, i := range km.ActiveLayers() {
					if l, ok := km.Layer(i); ok {
						names = append(names, l.Name)
					}
				}
				return strings.Join(names, ",")
			},
			func(v string) error {
				var want []int
				for _, name := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
					i, ok := km.LayerIndex(name)
					if !ok {
						return fmt.Errorf("%w: %s", keymap.ErrNoSuchLayer, name)
					}
					want = append(want, i)
				}
				for _, i := range km.ActiveLayers() {
					if i != 0 {
						if err := km.Deactivate(i); err != nil {
							return err
						}
					}
				}
				for _, i := range want {
					if i != 0 {
						if err := km.Activate(i); err != nil {
							return err
						}
					}
				}
				return nil
			}),
	)
}

func (m *Manager) registerAll(settings ...Setting) error {
	for _, s := range settings {
		if err := m.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// ConfigValues flattens the plugin sections of cfg into setting values.
func ConfigValues(cfg *config.Config) map[string]string {
	u := func(v uint16) string { return strconv.FormatUint(uint64(v), 10) }
	b := strconv.FormatBool
	return map[string]string{
		"autoshift.enabled":        b(cfg.AutoShift.Enabled),
		"autoshift.timeout":        u(cfg.AutoShift.Timeout),
		"autoshift.classes":        cfg.AutoShift.Classes,
		"holdtap.enabled":          b(cfg.HoldTap.Enabled),
		"holdtap.timeout":          u(cfg.HoldTap.Timeout),
		"holdtap.map":              cfg.HoldTap.Map,
		"multitap.enabled":         b(cfg.MultiTap.Enabled),
		"multitap.timeout":         u(cfg.MultiTap.Timeout),
		"rapidfire.interval":       u(cfg.RapidFire.Interval),
		"rapidfire.flash_interval": u(cfg.RapidFire.FlashInterval),
		"rapidfire.sticky":         b(cfg.RapidFire.Sticky),
		"rapidfire.flash":          b(cfg.RapidFire.Flash),
		"rapidfire.active_color":   cfg.RapidFire.ActiveColor,
		"syster.enabled":           b(cfg.Syster.Enabled),
		"macros.enabled":           b(cfg.Macros.Enabled),
	}
}
