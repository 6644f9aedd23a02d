package slate

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; a
// Prometheus implementation ships with the package.
type MetricsCollector interface {
	// RecordStore is called after each memory-store upsert.
	RecordStore(duration time.Duration, err error)

	// RecordRetrieve is called after each point lookup (memory or event).
	RecordRetrieve(duration time.Duration, err error)

	// RecordDelete is called after each delete.
	RecordDelete(duration time.Duration, err error)

	// RecordScan is called after each prefix or predicate scan.
	// results is the number of records returned.
	RecordScan(results int, duration time.Duration, err error)

	// RecordEvent is called after each event append.
	RecordEvent(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStore(time.Duration, error)     {}
func (NoopMetricsCollector) RecordRetrieve(time.Duration, error)  {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)    {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordEvent(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	StoreCount     atomic.Int64
	StoreErrors    atomic.Int64
	RetrieveCount  atomic.Int64
	RetrieveErrors atomic.Int64
	DeleteCount    atomic.Int64
	DeleteErrors   atomic.Int64
	ScanCount      atomic.Int64
	ScanResults    atomic.Int64
	ScanErrors     atomic.Int64
	EventCount     atomic.Int64
	EventErrors    atomic.Int64
}

// RecordStore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStore(_ time.Duration, err error) {
	b.StoreCount.Add(1)
	if err != nil {
		b.StoreErrors.Add(1)
	}
}

// RecordRetrieve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRetrieve(_ time.Duration, err error) {
	b.RetrieveCount.Add(1)
	if err != nil {
		b.RetrieveErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(results int, _ time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanResults.Add(int64(results))
	if err != nil {
		b.ScanErrors.Add(1)
	}
}

// RecordEvent implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvent(_ time.Duration, err error) {
	b.EventCount.Add(1)
	if err != nil {
		b.EventErrors.Add(1)
	}
}
