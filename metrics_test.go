package goFieldOps

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricRefreshStarted)

	if got := m.Value(MetricRefreshStarted); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricUnauthorized)
	m.Inc(MetricUnauthorized)
	m.Inc(MetricUnauthorized)

	if got := m.Value(MetricUnauthorized); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRequestDispatched)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRequestDispatched); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsRefreshLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		10 * time.Millisecond,
		50 * time.Millisecond,
		80 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		900 * time.Millisecond,
		2 * time.Second,
		4 * time.Second,
		9 * time.Second,
	}
	for _, d := range observations {
		m.Observe(MetricRefreshLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricRefreshLatency]
	want := []uint64{2, 1, 1, 1, 1, 1, 1, 1}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(buckets))
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d", i, want[i], buckets[i])
		}
	}
}

func TestMetricsObserveIgnoresCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Observe(MetricLogin, time.Second)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricLogin]; ok {
		t.Fatal("counter ids must not grow a histogram")
	}
	if _, ok := snap.Counters[MetricRefreshLatency]; ok {
		t.Fatal("latency id must not appear among counters")
	}
}

func TestMetricsHistogramDisabledByDefault(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricRefreshLatency, time.Millisecond)

	if len(m.Snapshot().Histograms) != 0 {
		t.Fatal("histogram should be absent when latency is disabled")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogin)
	m.Observe(MetricRefreshLatency, time.Second)
	if m.Enabled() || m.Value(MetricLogin) != 0 {
		t.Fatal("nil metrics must record nothing")
	}
	if snap := m.Snapshot(); snap.Counters == nil || snap.Histograms == nil {
		t.Fatal("nil metrics snapshot must return empty maps")
	}
}
