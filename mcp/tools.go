package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zzstoatzz/slate"
)

// Default result caps applied when a caller omits limit.
const (
	defaultSearchLimit = 50
	defaultKeysLimit   = 100
	defaultEventsLimit = 20
)

// RegisterAll registers the full slate tool set: five memory-store tools and
// five event-log tools. The facades are injected so callers own lifetimes
// and tests get isolation.
func RegisterAll(reg *Registry, mem *slate.MemoryStore, log *slate.EventLog) error {
	for _, r := range []func(*Registry) error{
		func(r *Registry) error { return registerStoreMemory(r, mem) },
		func(r *Registry) error { return registerRetrieveMemory(r, mem) },
		func(r *Registry) error { return registerSearchMemory(r, mem) },
		func(r *Registry) error { return registerDeleteMemory(r, mem) },
		func(r *Registry) error { return registerListMemoryKeys(r, mem) },
		func(r *Registry) error { return registerLogEvent(r, log) },
		func(r *Registry) error { return registerGetEvent(r, log) },
		func(r *Registry) error { return registerListEvents(r, log) },
		func(r *Registry) error { return registerGetEventStats(r, log) },
		func(r *Registry) error { return registerClearEvents(r, log) },
	} {
		if err := r(reg); err != nil {
			return err
		}
	}
	return nil
}

// succeed marshals an application-level result envelope.
func succeed(v map[string]any) (Result, error) {
	v["success"] = true
	data, err := json.Marshal(v)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: string(data)}, nil
}

// fail produces the application-level failure envelope. Domain failures
// (not-found, invalid input, corruption) are data, not protocol errors, so
// the client sees {"success": false, "error": ...} rather than a JSON-RPC
// fault.
func fail(err error) (Result, error) {
	data, mErr := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if mErr != nil {
		return Result{}, mErr
	}
	return Result{Content: string(data), IsError: true}, nil
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func registerStoreMemory(reg *Registry, mem *slate.MemoryStore) error {
	return reg.Register(Tool{
		Name:        "store_memory",
		Description: "Store a value in persistent memory. Re-storing a key preserves its original created_at.",
		InputSchema: objectSchema(map[string]any{
			"key":      map[string]any{"type": "string", "description": "Unique identifier for this memory"},
			"value":    map[string]any{"description": "The value to store (any JSON-serializable data)"},
			"metadata": map[string]any{"type": "object", "description": "Optional metadata about this memory"},
		}, "key", "value"),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Key      string         `json:"key"`
			Value    any            `json:"value"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		entry, err := mem.Store(ctx, in.Key, in.Value, in.Metadata)
		if err != nil {
			return fail(err)
		}
		return succeed(map[string]any{
			"message": fmt.Sprintf("Stored memory with key: %s", in.Key),
			"entry":   entry,
		})
	})
}

func registerRetrieveMemory(reg *Registry, mem *slate.MemoryStore) error {
	return reg.Register(Tool{
		Name:        "retrieve_memory",
		Description: "Retrieve a value from memory by key.",
		InputSchema: objectSchema(map[string]any{
			"key": map[string]any{"type": "string", "description": "The key to look up"},
		}, "key"),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Key string `json:"key"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		entry, err := mem.Retrieve(ctx, in.Key)
		if err != nil {
			if errors.Is(err, slate.ErrNotFound) {
				return fail(fmt.Errorf("no memory found with key: %s", in.Key))
			}
			return fail(err)
		}
		return succeed(map[string]any{"entry": entry})
	})
}

func registerSearchMemory(reg *Registry, mem *slate.MemoryStore) error {
	return reg.Register(Tool{
		Name:        "search_memory",
		Description: "Search for memories with optional prefix filter.",
		InputSchema: objectSchema(map[string]any{
			"prefix": map[string]any{"type": "string", "description": "Filter results to keys starting with this prefix"},
			"limit":  map[string]any{"type": "integer", "description": "Maximum number of results to return"},
		}),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Prefix string `json:"prefix"`
			Limit  int    `json:"limit"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}
		if in.Limit <= 0 {
			in.Limit = defaultSearchLimit
		}

		entries, err := mem.Search(ctx, in.Prefix, in.Limit)
		if err != nil {
			return fail(err)
		}
		if entries == nil {
			entries = []*slate.Entry{}
		}
		return succeed(map[string]any{"count": len(entries), "entries": entries})
	})
}

func registerDeleteMemory(reg *Registry, mem *slate.MemoryStore) error {
	return reg.Register(Tool{
		Name:        "delete_memory",
		Description: "Delete a memory entry by key.",
		InputSchema: objectSchema(map[string]any{
			"key": map[string]any{"type": "string", "description": "The key to delete"},
		}, "key"),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Key string `json:"key"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		existed, err := mem.Delete(ctx, in.Key)
		if err != nil {
			return fail(err)
		}
		if !existed {
			return fail(fmt.Errorf("no memory found with key: %s", in.Key))
		}
		return succeed(map[string]any{
			"message": fmt.Sprintf("Deleted memory with key: %s", in.Key),
		})
	})
}

func registerListMemoryKeys(reg *Registry, mem *slate.MemoryStore) error {
	return reg.Register(Tool{
		Name:        "list_memory_keys",
		Description: "List all memory keys with optional prefix filter.",
		InputSchema: objectSchema(map[string]any{
			"prefix": map[string]any{"type": "string", "description": "Filter results to keys starting with this prefix"},
			"limit":  map[string]any{"type": "integer", "description": "Maximum number of keys to return"},
		}),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Prefix string `json:"prefix"`
			Limit  int    `json:"limit"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}
		if in.Limit <= 0 {
			in.Limit = defaultKeysLimit
		}

		keys, err := mem.Keys(ctx, in.Prefix, in.Limit)
		if err != nil {
			return fail(err)
		}
		if keys == nil {
			keys = []string{}
		}
		return succeed(map[string]any{"count": len(keys), "keys": keys})
	})
}

func registerLogEvent(reg *Registry, log *slate.EventLog) error {
	return reg.Register(Tool{
		Name:        "log_event",
		Description: "Append an immutable event for a service.",
		InputSchema: objectSchema(map[string]any{
			"service":    map[string]any{"type": "string", "description": "The service that produced the event"},
			"event_type": map[string]any{"type": "string", "description": "The event category"},
			"data":       map[string]any{"type": "object", "description": "Optional structured event payload"},
		}, "service", "event_type"),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Service   string         `json:"service"`
			EventType string         `json:"event_type"`
			Data      map[string]any `json:"data"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		ev, err := log.LogEvent(ctx, in.Service, in.EventType, in.Data)
		if err != nil {
			return fail(err)
		}
		return succeed(map[string]any{
			"message": fmt.Sprintf("Logged event: %s", ev.ID),
			"event":   ev,
		})
	})
}

func registerGetEvent(reg *Registry, log *slate.EventLog) error {
	return reg.Register(Tool{
		Name:        "get_event",
		Description: "Retrieve a single event by its composite id.",
		InputSchema: objectSchema(map[string]any{
			"event_id": map[string]any{"type": "string", "description": "The composite event id (service:timestamp:type)"},
		}, "event_id"),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			EventID string `json:"event_id"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		ev, err := log.GetEvent(ctx, in.EventID)
		if err != nil {
			if errors.Is(err, slate.ErrNotFound) {
				return fail(fmt.Errorf("no event found with id: %s", in.EventID))
			}
			return fail(err)
		}
		return succeed(map[string]any{"event": ev})
	})
}

func registerListEvents(reg *Registry, log *slate.EventLog) error {
	return reg.Register(Tool{
		Name:        "list_events",
		Description: "List events, optionally filtered by service and/or event type.",
		InputSchema: objectSchema(map[string]any{
			"service":    map[string]any{"type": "string", "description": "Only events from this service"},
			"event_type": map[string]any{"type": "string", "description": "Only events of this type"},
			"limit":      map[string]any{"type": "integer", "description": "Maximum number of events to return"},
		}),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Service   string `json:"service"`
			EventType string `json:"event_type"`
			Limit     int    `json:"limit"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}
		if in.Limit <= 0 {
			in.Limit = defaultEventsLimit
		}

		events, err := log.Events(ctx, in.Service, in.EventType, in.Limit)
		if err != nil {
			return fail(err)
		}
		if events == nil {
			events = []*slate.Event{}
		}
		return succeed(map[string]any{"count": len(events), "events": events})
	})
}

func registerGetEventStats(reg *Registry, log *slate.EventLog) error {
	return reg.Register(Tool{
		Name:        "get_event_stats",
		Description: "Count events grouped by service and type over a bounded scan window.",
		InputSchema: objectSchema(map[string]any{}),
	}, func(ctx context.Context, _ json.RawMessage) (Result, error) {
		stats, err := log.Stats(ctx)
		if err != nil {
			return fail(err)
		}
		return succeed(map[string]any{"stats": stats})
	})
}

func registerClearEvents(reg *Registry, log *slate.EventLog) error {
	return reg.Register(Tool{
		Name:        "clear_events",
		Description: "Count events that a clear would remove. No events are deleted; this is a counting no-op kept as a safety guard.",
		InputSchema: objectSchema(map[string]any{
			"service": map[string]any{"type": "string", "description": "Count only this service's events"},
		}),
	}, func(ctx context.Context, args json.RawMessage) (Result, error) {
		var in struct {
			Service string `json:"service"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return fail(fmt.Errorf("malformed arguments: %w", err))
		}

		count, err := log.ClearEvents(ctx, in.Service)
		if err != nil {
			return fail(err)
		}
		return succeed(map[string]any{
			"count":   count,
			"message": fmt.Sprintf("counted %d event(s); no events were deleted (clear is a counting no-op)", count),
		})
	})
}
