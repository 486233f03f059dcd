package goFieldOps

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one pipeline counter.
type MetricID uint16

const (
	// MetricRequestDispatched counts every dispatch, replays included.
	MetricRequestDispatched MetricID = iota
	// MetricUnauthorized counts 401 responses seen by the pipeline.
	MetricUnauthorized
	// MetricRefreshStarted counts refresh cycles started.
	MetricRefreshStarted
	// MetricRefreshSuccess counts refresh cycles that produced a new token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh cycles that ended in forced logout.
	MetricRefreshFailure
	// MetricRequestQueued counts requests parked behind an in-flight refresh.
	MetricRequestQueued
	// MetricRequestReplayed counts redispatches after a refresh.
	MetricRequestReplayed
	// MetricReplayUnauthorized counts replays that were rejected again.
	MetricReplayUnauthorized
	// MetricStaleTokenReplay counts 401s replayed with a token refreshed meanwhile.
	MetricStaleTokenReplay
	// MetricForcedLogout counts forced logouts.
	MetricForcedLogout
	// MetricLogin counts stored credential pairs.
	MetricLogin
	// MetricLogout counts explicit sign-outs.
	MetricLogout
	// MetricRefreshLatency is the refresh call latency histogram.
	MetricRefreshLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters plus one latency histogram.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics allocates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the refresh latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricRefreshLatency has a
// histogram; other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRefreshLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of a counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and the histogram when enabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRefreshLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRefreshLatency].buckets[i])
		}
		s.Histograms[MetricRefreshLatency] = buckets
	}

	return s
}

// refresh calls are network round trips, so buckets start at 50ms
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
