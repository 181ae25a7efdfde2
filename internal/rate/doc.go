// Package rate implements the Redis-backed login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// namespaced by the configured prefix:
//   - <prefix>:rl:u:<username>  login failures per username
//   - <prefix>:rl:ip:<ip>       login failures per client IP
//
// # What this package must NOT do
//
//   - Decide what counts as a failure (the Engine does).
//   - Be imported outside the consoleauth module.
package rate
