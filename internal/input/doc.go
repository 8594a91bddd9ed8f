// Package input is the dispatch chain that turns physical key transitions
// into host reports.
//
// # Architecture
//
// A Runtime owns everything one keyboard needs at dispatch time:
//
//   - the event id counter (see key.IDCounter)
//   - the live key state, one key per physical address
//   - the plugin registry, in a fixed priority order
//   - the Keymap used to look up pressed keys and the Keyboard that
//     assembles reports
//
// Each scan cycle the application calls Cycle with the transitions the
// scanner saw. Every transition becomes a fresh event and goes through two
// stages: physical handlers (resolvers that may hold an event back) and
// then key handlers. A handler answers OK to pass the event on, Consumed
// to keep it from the host while still updating live keys, or Abort to
// suppress it. After the events, every plugin gets AfterEachCycle and then
// BeforeSyncingLEDs, even on cycles without events. Report handlers may
// add keys to every report just before it is sent.
//
// # Re-injection
//
// Resolvers release held events by calling HandlePhysicalKeyEvent again, so
// every other plugin still sees them. Each plugin keeps a tracker.Tracker
// and ignores events it already processed. A depth bound protects against
// plugins that do not: past it, events skip plugins and go straight to the
// report.
//
// Keys a plugin synthesises, such as repeats or typed text, go through
// InjectKey. They reuse the newest id rather than taking a fresh one, so
// any number of them leaves the trackers' marks valid.
//
// # Usage
//
//	rt := input.NewRuntime(km, hid.NewKeyboard(sink), input.WithLogger(logger))
//	rt.Register(autoshift.New(rt))
//	for {
//		rt.Cycle(scanner.Scan(clock.Millis()))
//	}
package input
