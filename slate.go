// Package slate provides two keyed-record surfaces over an ordered
// key-value engine: an append-oriented event log whose composite keys make
// chronological per-service queries fall out of plain lexicographic
// ordering, and a generic tagged-memory store with upsert semantics that
// preserve creation metadata.
//
// Both surfaces are thin: every operation round-trips through the engine,
// and nothing is cached between calls. Each facade exclusively owns one
// engine handle and closes it on Close.
//
// Basic usage:
//
//	db, err := engine.Open("./event_logs")
//	if err != nil { ... }
//	log := slate.NewEventLog(db)
//	defer log.Close()
//
//	ev, err := log.LogEvent(ctx, "auth-service", "login", map[string]any{"user": "u1"})
package slate

import "time"

// nowUTC is the default clock. Timestamps are always UTC so composite keys
// sort chronologically regardless of the writer's zone.
func nowUTC() time.Time {
	return time.Now().UTC()
}
