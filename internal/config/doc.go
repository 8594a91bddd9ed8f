// Package config loads keystrike's configuration.
//
// Values come from three places, later ones winning:
//
//  1. Built-in defaults, matching the firmware defaults of each plugin.
//  2. A TOML file.
//  3. KEYSTRIKE_* environment variables.
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[autoshift]
//	timeout = 150
//	classes = "letters,numbers"
//
//	[holdtap]
//	map = "CapsLock:LeftControl Enter:RightControl:250"
//
//	[multitap.table]
//	"0" = ["A", "B", "C"]
//
// # Sub-packages
//
//   - notify: change notification for settings observers
//
// A Watcher reports edits to the file so the cycle loop can reload it.
package config
