package keymap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/keystrike/internal/input/key"
)

// Keymap errors
var (
	ErrNoSuchLayer   = errors.New("no such layer")
	ErrLayerSize     = errors.New("layer does not match matrix size")
	ErrBaseLayerLock = errors.New("base layer cannot be deactivated")
)

// Layer is one full set of keys for the matrix.
type Layer struct {
	Name string
	Keys []key.Key
}

// Keymap holds the layers for one matrix.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	// Matrix is the geometry every layer covers.
	Matrix key.Matrix

	layers []Layer
	active []int
}

// New creates a keymap with no layers.
func New(name string, m key.Matrix) *Keymap {
	return &Keymap{
		Name:   name,
		Matrix: m,
		active: []int{0},
	}
}

// AddLayer appends a layer. Short layers are padded with Transparent, or
// NoKey for the base layer.
func (k *Keymap) AddLayer(name string, keys []key.Key) (int, error) {
	size := k.Matrix.Size()
	if len(keys) > size {
		return 0, fmt.Errorf("%w: layer %q has %d keys, matrix has %d", ErrLayerSize, name, len(keys), size)
	}

	fill := key.Transparent
	if len(k.layers) == 0 {
		fill = key.NoKey
	}
	padded := make([]key.Key, size)
	copy(padded, keys)
	for i := len(keys); i < size; i++ {
		padded[i] = fill
	}

	k.layers = append(k.layers, Layer{Name: name, Keys: padded})
	return len(k.layers) - 1, nil
}

// LayerCount returns the number of layers.
func (k *Keymap) LayerCount() int {
	return len(k.layers)
}

// Layer returns a copy of layer i.
func (k *Keymap) Layer(i int) (Layer, bool) {
	if i < 0 || i >= len(k.layers) {
		return Layer{}, false
	}
	l := k.layers[i]
	return Layer{Name: l.Name, Keys: slices.Clone(l.Keys)}, true
}

// LayerIndex returns the index of the named layer.
func (k *Keymap) LayerIndex(name string) (int, bool) {
	for i, l := range k.layers {
		if l.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Set replaces one entry of a layer.
func (k *Keymap) Set(layer int, addr key.Addr, v key.Key) error {
	if layer < 0 || layer >= len(k.layers) {
		return fmt.Errorf("%w: %d", ErrNoSuchLayer, layer)
	}
	if !addr.IsValid() || int(addr) >= k.Matrix.Size() {
		return fmt.Errorf("address %s outside matrix", addr)
	}
	k.layers[layer].Keys[addr] = v
	return nil
}

// Activate puts layer i on top of the active stack.
func (k *Keymap) Activate(i int) error {
	if i < 0 || i >= len(k.layers) {
		return fmt.Errorf("%w: %d", ErrNoSuchLayer, i)
	}
	k.active = slices.DeleteFunc(k.active, func(a int) bool { return a == i })
	k.active = append(k.active, i)
	if i == 0 {
		// keep the base layer at the bottom
		k.active = append([]int{0}, k.active[:len(k.active)-1]...)
	}
	return nil
}

// Deactivate removes layer i from the active stack.
func (k *Keymap) Deactivate(i int) error {
	if i == 0 {
		return ErrBaseLayerLock
	}
	if i < 0 || i >= len(k.layers) {
		return fmt.Errorf("%w: %d", ErrNoSuchLayer, i)
	}
	k.active = slices.DeleteFunc(k.active, func(a int) bool { return a == i })
	return nil
}

// Toggle flips layer i.
func (k *Keymap) Toggle(i int) error {
	if k.IsActive(i) {
		return k.Deactivate(i)
	}
	return k.Activate(i)
}

// IsActive reports whether layer i is on the active stack.
func (k *Keymap) IsActive(i int) bool {
	return slices.Contains(k.active, i)
}

// ActiveLayers returns the active stack, bottom first.
func (k *Keymap) ActiveLayers() []int {
	return slices.Clone(k.active)
}

// Lookup returns the key at addr on the highest active layer that does
// not define it as Transparent. It implements input.Keymap.
func (k *Keymap) Lookup(addr key.Addr) key.Key {
	if !addr.IsValid() || int(addr) >= k.Matrix.Size() {
		return key.NoKey
	}
	for i := len(k.active) - 1; i >= 0; i-- {
		idx := k.active[i]
		if idx >= len(k.layers) {
			continue
		}
		if v := k.layers[idx].Keys[addr]; v != key.Transparent {
			return v
		}
	}
	return key.NoKey
}

// Reverse returns the lowest address whose current lookup yields v.
func (k *Keymap) Reverse(v key.Key) (key.Addr, bool) {
	for _, addr := range k.Matrix.All() {
		if k.Lookup(addr) == v {
			return addr, true
		}
	}
	return key.AddrNone, false
}
