package input

import "github.com/dshills/keystrike/internal/input/key"

// LiveKeys is the set of keys currently active at each physical address.
type LiveKeys struct {
	keys [key.AddrNone]key.Key
}

// At returns the live key at addr, or NoKey.
func (l *LiveKeys) At(addr key.Addr) key.Key {
	if !addr.IsValid() {
		return key.NoKey
	}
	return l.keys[addr]
}

// Contains reports whether k is live at any address.
func (l *LiveKeys) Contains(k key.Key) bool {
	for _, live := range l.keys {
		if live == k {
			return true
		}
	}
	return false
}

// All calls fn for every address holding a key, in address order.
func (l *LiveKeys) All(fn func(addr key.Addr, k key.Key)) {
	for i, live := range l.keys {
		if live != key.NoKey {
			fn(key.Addr(i), live)
		}
	}
}

// Len returns the number of live keys.
func (l *LiveKeys) Len() int {
	n := 0
	for _, live := range l.keys {
		if live != key.NoKey {
			n++
		}
	}
	return n
}

func (l *LiveKeys) update(ev key.Event) {
	if !ev.Addr.IsValid() {
		return
	}
	switch {
	case ev.State.ToggledOn():
		l.keys[ev.Addr] = ev.Key
	case ev.State.ToggledOff():
		l.keys[ev.Addr] = key.NoKey
	}
}

func (l *LiveKeys) clear() {
	l.keys = [key.AddrNone]key.Key{}
}
