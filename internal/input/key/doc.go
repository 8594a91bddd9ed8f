// Package key defines the identity of keyboard events.
//
// The package provides the value types every other layer passes around:
//
//   - Key: a logical key, keycode in the low byte and flags in the high byte
//   - Addr: the flat physical address of a switch in the matrix
//   - State: the transition bits of a single scan
//   - Event: one logical occurrence of a transition, ordered by its ID
//
// # Event IDs
//
// IDs come from a small cyclic counter. Two IDs are compared with
// wrapping subtraction cast to int8, so ordering holds as long as the
// events being compared were created fewer than 128 ids apart.
//
// # Key Specifications
//
// Keys can be written by name ("A", "Enter", "LeftShift"), with modifier
// prefixes ("S-A", "Shift+A", "<C-Delete>") or as reserved plugin keys
// ("RapidFire", "MultiTap(3)").
package key
