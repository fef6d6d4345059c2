// Package metrics exposes netctl internals to Prometheus: bus traffic and
// drops, failed operations by error code, WiFi scan timings, store sizes and
// the aggregate network state.
package metrics
