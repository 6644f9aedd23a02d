package slate

import (
	"context"
	"time"
)

// Stats holds event counts grouped by service and kind, derived from a
// bounded full scan. Counts inherit the predicate scan's window truncation:
// with more events than the scan window, they are a sample, not a census.
type Stats struct {
	TotalEvents int            `json:"total_events"`
	ByService   map[string]int `json:"by_service"`
	ByType      map[string]int `json:"by_type"`
}

// Stats tallies events by service and kind over the scan window.
func (l *EventLog) Stats(ctx context.Context) (stats *Stats, err error) {
	start := time.Now()
	scanned := 0
	defer func() {
		l.opts.metricsCollector.RecordScan(scanned, time.Since(start), err)
		l.opts.logger.LogScan(ctx, "", scanned, err)
	}()

	decode := func(key string, value []byte) (*Event, error) {
		return decodeEvent(l.opts.codec, key, value)
	}
	events, err := scanFilter(ctx, l.kv, l.opts.scanWindow, 0, decode, nil)
	if err != nil {
		return nil, err
	}
	scanned = len(events)

	stats = &Stats{
		ByService: make(map[string]int),
		ByType:    make(map[string]int),
	}
	for _, ev := range events {
		stats.TotalEvents++
		stats.ByService[ev.Service]++
		stats.ByType[ev.Type]++
	}
	return stats, nil
}
