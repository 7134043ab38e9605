// Package prometheus provides Prometheus collectors for accesscore metrics.
//
// [NewPrometheusExporter] accepts an [accesscore.Engine] and exposes an [http.Handler]
// that renders all accesscore counters and histograms in Prometheus text exposition
// format. Counter names are prefixed accesscore_*_total; the single histogram is
// accesscore_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
