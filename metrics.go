package accesscore

import "sync/atomic"

// MetricID identifies one of the engine's in-process counters.
type MetricID uint8

const (
	// MetricSignInSuccess counts successful explicit sign-ins.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure counts provider-rejected sign-ins.
	MetricSignInFailure
	// MetricSignInRateLimited counts sign-ins blocked by the throttle.
	MetricSignInRateLimited
	// MetricSignOut counts successful sign-outs.
	MetricSignOut
	// MetricBootstrapStarted counts bootstrap sequences begun.
	MetricBootstrapStarted
	// MetricBootstrapReady counts bootstraps committed as Ready.
	MetricBootstrapReady
	// MetricBootstrapDegraded counts bootstraps committed as DegradedReady.
	MetricBootstrapDegraded
	// MetricBootstrapSuperseded counts bootstraps discarded by a newer
	// generation.
	MetricBootstrapSuperseded
	// MetricRecordCreated counts freshly created user records.
	MetricRecordCreated
	// MetricSessionCacheHit counts degraded bootstraps served from the
	// snapshot cache.
	MetricSessionCacheHit
	// MetricSessionCacheMiss counts degraded bootstraps that fell through
	// to profile synthesis.
	MetricSessionCacheMiss
	// MetricBusinessSwitch counts successful active-business switches.
	MetricBusinessSwitch
	// MetricBusinessSwitchRejected counts switches to non-owned businesses.
	MetricBusinessSwitchRejected
	// MetricRefreshRateLimited counts refreshes blocked by the throttle.
	MetricRefreshRateLimited
	// MetricPermissionAllowed counts IsAllowed grants.
	MetricPermissionAllowed
	// MetricPermissionDenied counts IsAllowed denials.
	MetricPermissionDenied

	metricIDCount
)

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot returns a deep copy of the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
