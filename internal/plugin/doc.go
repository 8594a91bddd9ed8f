// Package plugin groups the resolvers that sit on the dispatch chain.
//
// Each subpackage registers one handler with an input.Runtime:
//
//   - multitap turns repeated taps of one key into different keys
//   - holdtap gives mapped keys a second meaning when held
//   - autoshift shifts a key that is held past its timeout
//   - rapidfire repeats held keys while the RapidFire key is down
//   - syster turns a word typed after the Syster key into an action
//   - macros plays key sequences bound to macro keys
//
// The lua subpackage supplies multi-tap behaviors written as scripts.
//
// Resolvers are registered in the order above, all at normal priority, so
// a multi-tap sequence is seen whole before the other resolvers act on the
// keys it produces.
package plugin
