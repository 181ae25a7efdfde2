// Package audit implements async event dispatching for credential and session
// operations.
//
// # Components
//
//   - [Sink] is the interface for event consumers (channel, JSON lines, slog, no-op).
//   - [Dispatcher] is a buffered async relay with drop-if-full or block-if-full semantics.
//     It stamps missing timestamps, strips credential-looking metadata keys and
//     counts drops per event type.
//   - [Event] is the structured record: timestamp, type, user, client IP, outcome, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit; the Engine does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import consoleauth or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
