// Package otel publishes goFieldOps session counters through an
// OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per session counter
// and one Int64ObservableGauge per refresh-latency bucket. A single callback
// reads [goFieldOps.Session.MetricsSnapshot] on each collection. Callers own
// the MeterProvider.
package otel
