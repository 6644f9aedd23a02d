package slate

import (
	"context"
	"fmt"
	"time"

	"github.com/zzstoatzz/slate/engine"
)

// EventLog is the event-audit surface. Events are immutable facts keyed
// `service:timestamp:kind`; the fixed-width timestamp makes a plain prefix
// scan return one service's events in chronological order. It exclusively
// owns its engine handle.
type EventLog struct {
	kv   engine.KV
	opts options
}

// NewEventLog wraps an engine handle in the event-log surface. The log takes
// ownership of kv and closes it on Close.
func NewEventLog(kv engine.KV, optFns ...Option) *EventLog {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return &EventLog{kv: kv, opts: o}
}

// LogEvent appends an event for service with the given kind and payload,
// timestamped now. Service and kind must not contain the key separator.
func (l *EventLog) LogEvent(ctx context.Context, service, kind string, data map[string]any) (ev *Event, err error) {
	start := time.Now()
	defer func() {
		l.opts.metricsCollector.RecordEvent(time.Since(start), err)
		id := ""
		if ev != nil {
			id = ev.ID
		}
		l.opts.logger.LogEventStored(ctx, id, err)
	}()

	ts := l.opts.clock()
	key, err := EventKey(service, ts, kind)
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = map[string]any{}
	}
	ev = &Event{
		ID:        key,
		Service:   service,
		Type:      kind,
		Timestamp: FormatEventTime(ts),
		Data:      data,
	}

	raw, err := l.opts.codec.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if err = l.kv.Put(ctx, []byte(key), raw); err != nil {
		return nil, fmt.Errorf("write event: %w", err)
	}
	return ev, nil
}

// GetEvent returns the event with the given composite id, or ErrNotFound.
func (l *EventLog) GetEvent(ctx context.Context, id string) (ev *Event, err error) {
	start := time.Now()
	defer func() {
		l.opts.metricsCollector.RecordRetrieve(time.Since(start), err)
		l.opts.logger.LogRetrieve(ctx, id, ev != nil, err)
	}()

	raw, ok, err := l.kv.Get(ctx, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("event %q: %w", id, ErrNotFound)
	}
	return decodeEvent(l.opts.codec, id, raw)
}

// ServiceEvents returns up to limit events logged by service, oldest first.
// This is the fast path: one prefix-bounded scan, no filtering.
func (l *EventLog) ServiceEvents(ctx context.Context, service string, limit int) ([]*Event, error) {
	if err := validateKeyField("service", service); err != nil {
		return nil, err
	}
	return l.scanEvents(ctx, EventPrefix(service), limit, nil)
}

// EventsByType returns up to limit events of the given kind across all
// services. Kind is not a key prefix, so this is a bounded predicate scan:
// it examines at most the configured scan window and can miss events beyond
// it.
func (l *EventLog) EventsByType(ctx context.Context, kind string, limit int) ([]*Event, error) {
	if err := validateKeyField("kind", kind); err != nil {
		return nil, err
	}
	return l.scanEvents(ctx, "", limit, func(ev *Event) bool {
		return ev.Type == kind
	})
}

// Events is the combined query behind the list_events operation: optional
// service, optional kind, both empty for a bounded window over everything.
// A service selector uses the prefix fast path even when combined with a
// kind filter.
func (l *EventLog) Events(ctx context.Context, service, kind string, limit int) ([]*Event, error) {
	var pred func(*Event) bool
	if kind != "" {
		if err := validateKeyField("kind", kind); err != nil {
			return nil, err
		}
		pred = func(ev *Event) bool { return ev.Type == kind }
	}

	prefix := ""
	if service != "" {
		if err := validateKeyField("service", service); err != nil {
			return nil, err
		}
		prefix = EventPrefix(service)
	}
	return l.scanEvents(ctx, prefix, limit, pred)
}

func (l *EventLog) scanEvents(ctx context.Context, prefix string, limit int, pred func(*Event) bool) (events []*Event, err error) {
	start := time.Now()
	defer func() {
		l.opts.metricsCollector.RecordScan(len(events), time.Since(start), err)
		l.opts.logger.LogScan(ctx, prefix, len(events), err)
	}()

	decode := func(key string, value []byte) (*Event, error) {
		return decodeEvent(l.opts.codec, key, value)
	}

	if prefix == "" {
		return scanFilter(ctx, l.kv, l.opts.scanWindow, limit, decode, pred)
	}
	if pred == nil {
		return scanPrefix(ctx, l.kv, prefix, limit, decode)
	}

	// Prefix-bounded scan with an in-memory filter on top: collect without
	// a limit (the limit applies to matches, not scanned records), filter,
	// then cap.
	all, err := scanPrefix(ctx, l.kv, prefix, 0, decode)
	if err != nil {
		return nil, err
	}
	for _, ev := range all {
		if !pred(ev) {
			continue
		}
		events = append(events, ev)
		if limit > 0 && len(events) >= limit {
			break
		}
	}
	return events, nil
}

// ClearEvents reports how many events a clear of service (or of everything,
// for an empty service) would remove. It deletes nothing: the count-only
// behavior is a deliberate safety guard against accidental bulk data loss,
// and callers must not assume state changed.
func (l *EventLog) ClearEvents(ctx context.Context, service string) (int, error) {
	var (
		events []*Event
		err    error
	)
	if service != "" {
		events, err = l.ServiceEvents(ctx, service, 0)
	} else {
		events, err = l.scanEvents(ctx, "", 0, nil)
	}
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// Close releases the underlying engine handle.
func (l *EventLog) Close() error {
	return l.kv.Close()
}
