package main

import (
	"log/slog"
	"os"

	"github.com/zzstoatzz/slate"
	"github.com/zzstoatzz/slate/engine"
	"github.com/zzstoatzz/slate/internal/ui"
)

// dataDirs carries the two database locations. The event log and the memory
// store each own an independent engine, mirroring their independent
// lifecycles.
type dataDirs struct {
	events     string
	memory     string
	engineOpts []engine.Option
}

func stderrLogger() *slate.Logger {
	return slate.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// openEventLog opens the event database and wraps it in the event-log
// surface. CLI commands exit on failure rather than propagating.
func openEventLog(dirs dataDirs, opts ...slate.Option) *slate.EventLog {
	db, err := engine.Open(dirs.events, dirs.engineOpts...)
	if err != nil {
		ui.Errorf("open event database %s: %v", dirs.events, err)
		os.Exit(1)
	}
	opts = append([]slate.Option{slate.WithLogger(stderrLogger())}, opts...)
	return slate.NewEventLog(db, opts...)
}

// openMemoryStore opens the memory database and wraps it in the memory-store
// surface.
func openMemoryStore(dirs dataDirs, opts ...slate.Option) *slate.MemoryStore {
	db, err := engine.Open(dirs.memory, dirs.engineOpts...)
	if err != nil {
		ui.Errorf("open memory database %s: %v", dirs.memory, err)
		os.Exit(1)
	}
	opts = append([]slate.Option{slate.WithLogger(stderrLogger())}, opts...)
	return slate.NewMemoryStore(db, opts...)
}
