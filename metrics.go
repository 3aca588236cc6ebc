package vex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Implementations must be safe for concurrent use when one collector is
// shared by several maps.
type MetricsCollector interface {
	// RecordPut is called after each put.
	// duration is the total time taken, err is nil if successful.
	RecordPut(duration time.Duration, err error)

	// RecordGet is called after each lookup. hit reports whether the key
	// was present.
	RecordGet(duration time.Duration, hit bool)

	// RecordRemove is called after each remove. found reports whether the
	// key was present.
	RecordRemove(duration time.Duration, found bool)

	// RecordAllocationFailure is called when the memory budget refuses an
	// allocation.
	RecordAllocationFailure()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(time.Duration, error)   {}
func (NoopMetricsCollector) RecordGet(time.Duration, bool)    {}
func (NoopMetricsCollector) RecordRemove(time.Duration, bool) {}
func (NoopMetricsCollector) RecordAllocationFailure()         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount           atomic.Int64
	PutErrors          atomic.Int64
	PutTotalNanos      atomic.Int64
	GetCount           atomic.Int64
	GetHits            atomic.Int64
	GetTotalNanos      atomic.Int64
	RemoveCount        atomic.Int64
	RemoveHits         atomic.Int64
	AllocationFailures atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, hit bool) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.GetHits.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ time.Duration, found bool) {
	b.RemoveCount.Add(1)
	if found {
		b.RemoveHits.Add(1)
	}
}

// RecordAllocationFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocationFailure() {
	b.AllocationFailures.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:           b.PutCount.Load(),
		PutErrors:          b.PutErrors.Load(),
		PutAvgNanos:        avg(b.PutTotalNanos.Load(), b.PutCount.Load()),
		GetCount:           b.GetCount.Load(),
		GetHits:            b.GetHits.Load(),
		GetAvgNanos:        avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		RemoveCount:        b.RemoveCount.Load(),
		RemoveHits:         b.RemoveHits.Load(),
		AllocationFailures: b.AllocationFailures.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount           int64
	PutErrors          int64
	PutAvgNanos        int64
	GetCount           int64
	GetHits            int64
	GetAvgNanos        int64
	RemoveCount        int64
	RemoveHits         int64
	AllocationFailures int64
}

// HitRate returns the fraction of lookups that found their key.
func (s BasicMetricsStats) HitRate() float64 {
	if s.GetCount == 0 {
		return 0
	}
	return float64(s.GetHits) / float64(s.GetCount)
}
