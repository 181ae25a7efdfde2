// Package otel publishes consoleauth metrics through an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter family.
// Grouped families report each outcome under an attribute, for example
// consoleauth_token_rejected_total with reason=expired. Histogram buckets
// are a single gauge per histogram keyed by the le attribute. A single
// callback reads Engine.MetricsSnapshot on each collection.
//
// The caller owns the MeterProvider.
package otel
