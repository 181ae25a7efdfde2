// Package internal holds the engine's private building blocks.
//
//   - audit: async event dispatch and sink implementations
//   - httpapi: HTTP routes over the engine
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis fixed-window login throttle
package internal
