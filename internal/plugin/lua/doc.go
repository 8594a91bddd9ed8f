// Package lua runs multi-tap behaviors written in Lua.
//
// A script defines a global function that receives the multi-tap index,
// the key address, the tap count and the action name, and returns the keys
// the sequence cycles through:
//
//	function multitap(index, addr, taps, action)
//	  if index == 0 then
//	    return "A", "B", "C"
//	  end
//	  return { "Escape", "S-Tab" }
//	end
//
// The returned keys are handed to the multi-tap controller exactly as a
// table-driven behavior would hand them over.
//
// # Host queries
//
// When the state is created WithHost, scripts get a keystrike table for
// reading keyboard state: keystrike.key(name) canonicalizes a key name,
// keystrike.lookup(addr) and keystrike.live(addr) report the mapped and
// held key at an address, keystrike.pressed(name) and keystrike.held()
// inspect the held set.
//
// # State
//
// State wraps a gopher-lua state with only the base, table, string and
// math libraries opened. Loading code from disk inside scripts is removed,
// print goes to the structured logger, and every call runs under an
// execution timeout:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(5 * time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
package lua
