// Package keymap resolves physical key addresses to logical keys.
//
// A Keymap is a stack of layers over a fixed matrix. Layer 0 is the base
// layer and is always active; higher layers can be switched on and off at
// runtime. Lookup walks the active layers from the top down and skips
// Transparent entries, so a layer only needs to define the keys it changes.
//
// # Keymap Files
//
// Keymaps are written in YAML, one whitespace-separated string per matrix
// row:
//
//	name: default
//	rows: 2
//	cols: 3
//	layers:
//	  - name: base
//	    rows:
//	      - "Esc 1 2"
//	      - "Tab Q W"
//
// Each entry accepts anything key.Parse accepts, so "S-A", "MultiTap(0)",
// "RapidFire" and "___" (transparent) all work.
package keymap
