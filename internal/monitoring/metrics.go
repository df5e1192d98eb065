// Package monitoring provides simple in-memory counters.
//
// DESIGN: Lightweight operational metrics for the credits sidecar:
//   - requests/successes: HTTP request counts
//   - resets:             explicit ledger resets
//   - overrides:          tier/balance overrides
//   - probe_failures:     hardware probes that fell back to defaults
//
// For production, export these to Prometheus or similar.
package monitoring

import (
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	startedAt time.Time

	requests      atomic.Int64
	successes     atomic.Int64
	resets        atomic.Int64
	overrides     atomic.Int64
	probeFailures atomic.Int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startedAt: time.Now()}
}

// RecordRequest records a request.
func (mc *MetricsCollector) RecordRequest(success bool) {
	mc.requests.Add(1)
	if success {
		mc.successes.Add(1)
	}
}

// RecordReset records an explicit ledger reset.
func (mc *MetricsCollector) RecordReset() { mc.resets.Add(1) }

// RecordOverride records a tier or balance override.
func (mc *MetricsCollector) RecordOverride() { mc.overrides.Add(1) }

// RecordProbeFailure records a probe that degraded to defaults.
func (mc *MetricsCollector) RecordProbeFailure() { mc.probeFailures.Add(1) }

// StartedAt returns when the metrics collector was created.
func (mc *MetricsCollector) StartedAt() time.Time { return mc.startedAt }

// Stats returns current metrics as a flat map.
func (mc *MetricsCollector) Stats() map[string]int64 {
	return map[string]int64{
		"requests":       mc.requests.Load(),
		"successes":      mc.successes.Load(),
		"resets":         mc.resets.Load(),
		"overrides":      mc.overrides.Load(),
		"probe_failures": mc.probeFailures.Load(),
	}
}
