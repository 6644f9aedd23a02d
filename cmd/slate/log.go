package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/zzstoatzz/slate"
	"github.com/zzstoatzz/slate/internal/ui"
)

// runLog appends one event. Malformed --data JSON is rejected at the
// boundary before anything touches the store.
func runLog(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	service := fs.String("service", "", "Service name (required)")
	eventType := fs.String("type", "", "Event type (required)")
	data := fs.String("data", "{}", "Event data as JSON string")
	fs.Parse(args)

	if *service == "" || *eventType == "" {
		ui.Errorf("log requires --service and --type")
		fs.Usage()
		os.Exit(1)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(*data), &payload); err != nil {
		ui.Errorf("invalid JSON data: %v", err)
		os.Exit(1)
	}

	log := openEventLog(dirs)
	defer log.Close()

	ev, err := log.LogEvent(context.Background(), *service, *eventType, payload)
	if err != nil {
		ui.Errorf("log event: %v", err)
		os.Exit(1)
	}
	ui.Successf("Event logged: %s", ev.ID)
}

// runGet prints one event as indented JSON.
func runGet(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		ui.Errorf("usage: slate get <event-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	log := openEventLog(dirs)
	defer log.Close()

	ev, err := log.GetEvent(context.Background(), id)
	if err != nil {
		if errors.Is(err, slate.ErrNotFound) {
			ui.Errorf("Event not found: %s", id)
		} else {
			ui.Errorf("get event: %v", err)
		}
		os.Exit(1)
	}

	out, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		ui.Errorf("encode event: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
