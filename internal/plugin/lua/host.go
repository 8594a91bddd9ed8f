package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
)

// HostModule is the global table through which scripts query the keyboard.
const HostModule = "keystrike"

// Host answers script queries about keyboard state. *input.Runtime
// implements it.
type Host interface {
	Keymap() input.Keymap
	LiveKeys() *input.LiveKeys
}

// WithHost exposes h to scripts as the keystrike table.
func WithHost(h Host) StateOption {
	return func(s *State) {
		s.host = h
	}
}

// hostModule builds the keystrike table functions.
//
//	keystrike.key(name)      -> canonical name, or nil and a message
//	keystrike.lookup(addr)   -> key on the active layers, or nil
//	keystrike.live(addr)     -> key currently held at addr, or nil
//	keystrike.pressed(name)  -> whether the key is held anywhere
//	keystrike.held()         -> number of held keys
func hostModule(h Host) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"key": func(L *lua.LState) int {
			k, err := key.Parse(L.CheckString(1))
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LString(k.String()))
			return 1
		},
		"lookup": func(L *lua.LState) int {
			pushKey(L, h.Keymap().Lookup(checkAddr(L, 1)))
			return 1
		},
		"live": func(L *lua.LState) int {
			pushKey(L, h.LiveKeys().At(checkAddr(L, 1)))
			return 1
		},
		"pressed": func(L *lua.LState) int {
			k, err := key.Parse(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			L.Push(lua.LBool(h.LiveKeys().Contains(k)))
			return 1
		},
		"held": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.LiveKeys().Len()))
			return 1
		},
	}
}

func checkAddr(L *lua.LState, n int) key.Addr {
	v := L.CheckInt(n)
	if v < 0 || v >= int(key.AddrNone) {
		L.ArgError(n, "address out of range")
	}
	return key.Addr(v)
}

func pushKey(L *lua.LState, k key.Key) {
	if k == key.NoKey {
		L.Push(lua.LNil)
		return
	}
	L.Push(lua.LString(k.String()))
}
