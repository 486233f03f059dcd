// Package prometheus renders goFieldOps session counters in the Prometheus
// text exposition format.
//
// [NewPrometheusExporter] wraps a [goFieldOps.Session] and exposes an
// [http.Handler]. Counter names are prefixed fieldops_*_total; the single
// histogram is fieldops_refresh_latency_seconds. Nothing is registered in a
// global registry; callers mount the Handler themselves.
package prometheus
