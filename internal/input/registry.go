package input

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors
var (
	ErrRegistryFrozen = errors.New("plugin registry is frozen")
	ErrNotAPlugin     = errors.New("value implements no plugin capability")
)

// Priority defines the dispatch order of plugins.
// Lower values run first.
type Priority int

const (
	// PriorityHighest runs before all other plugins.
	PriorityHighest Priority = -1000
	// PriorityHigh runs early in the chain.
	PriorityHigh Priority = -100
	// PriorityNormal is the default priority.
	PriorityNormal Priority = 0
	// PriorityLow runs late in the chain.
	PriorityLow Priority = 100
	// PriorityLowest runs after all other plugins.
	PriorityLowest Priority = 1000
)

// PluginID uniquely identifies a registered plugin.
type PluginID uint64

// Registration holds metadata about a registered plugin.
type Registration struct {
	ID       PluginID
	Name     string
	Priority Priority
	Plugin   Plugin
}

// Registry keeps plugins in dispatch order. Plugins with equal priority
// keep their registration order. Once frozen the order cannot change.
type Registry struct {
	regs   []Registration
	nextID PluginID
	byName map[string]PluginID
	frozen bool

	physical []PhysicalKeyHandler
	keys     []KeyHandler
	cycle    []CycleHandler
	leds     []LEDSyncHandler
	reports  []ReportHandler
	ordered  []Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]PluginID),
	}
}

// Register adds a plugin with normal priority.
func (r *Registry) Register(p Plugin) (PluginID, error) {
	return r.RegisterWithPriority(p, PriorityNormal)
}

// RegisterWithPriority adds a plugin with the given priority.
func (r *Registry) RegisterWithPriority(p Plugin, priority Priority) (PluginID, error) {
	if r.frozen {
		return 0, ErrRegistryFrozen
	}
	if !isPlugin(p) {
		return 0, fmt.Errorf("%w: %T", ErrNotAPlugin, p)
	}

	r.nextID++
	id := r.nextID
	name := pluginName(p)

	r.regs = append(r.regs, Registration{
		ID:       id,
		Name:     name,
		Priority: priority,
		Plugin:   p,
	})
	r.byName[name] = id
	return id, nil
}

// Unregister removes a plugin by ID.
func (r *Registry) Unregister(id PluginID) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	for i := range r.regs {
		if r.regs[i].ID == id {
			if r.byName[r.regs[i].Name] == id {
				delete(r.byName, r.regs[i].Name)
			}
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Lookup returns the registration with the given name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Registration{}, false
	}
	for _, reg := range r.regs {
		if reg.ID == id {
			return reg, true
		}
	}
	return Registration{}, false
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	return len(r.regs)
}

// List returns all registrations in dispatch order.
func (r *Registry) List() []Registration {
	r.sort()
	result := make([]Registration, len(r.regs))
	copy(result, r.regs)
	return result
}

// Frozen reports whether the dispatch order has been fixed.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Freeze fixes the dispatch order and splits plugins by capability.
// It is safe to call more than once.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	r.sort()
	for _, reg := range r.regs {
		r.ordered = append(r.ordered, reg.Plugin)
		if h, ok := reg.Plugin.(PhysicalKeyHandler); ok {
			r.physical = append(r.physical, h)
		}
		if h, ok := reg.Plugin.(KeyHandler); ok {
			r.keys = append(r.keys, h)
		}
		if h, ok := reg.Plugin.(CycleHandler); ok {
			r.cycle = append(r.cycle, h)
		}
		if h, ok := reg.Plugin.(LEDSyncHandler); ok {
			r.leds = append(r.leds, h)
		}
		if h, ok := reg.Plugin.(ReportHandler); ok {
			r.reports = append(r.reports, h)
		}
	}
	r.frozen = true
}

func (r *Registry) sort() {
	if r.frozen {
		return
	}
	sort.SliceStable(r.regs, func(i, j int) bool {
		return r.regs[i].Priority < r.regs[j].Priority
	})
}

func pluginName(p Plugin) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
