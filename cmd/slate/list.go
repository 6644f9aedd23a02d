package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/zzstoatzz/slate/internal/ui"
)

// runListService lists one service's events in chronological order, the
// prefix-scan fast path.
func runListService(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("list-service", flag.ExitOnError)
	service := fs.String("service", "", "Service name (required)")
	limit := fs.Int("limit", 10, "Maximum events to return")
	fs.Parse(args)

	if *service == "" {
		ui.Errorf("list-service requires --service")
		os.Exit(1)
	}

	log := openEventLog(dirs)
	defer log.Close()

	events, err := log.ServiceEvents(context.Background(), *service, *limit)
	if err != nil {
		ui.Errorf("list events: %v", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Printf("No events found for service: %s\n", *service)
		return
	}

	ui.Bold.Printf("\nEvents for %s (limit: %d):\n\n", *service, *limit)
	for _, ev := range events {
		data, _ := json.Marshal(ev.Data)
		fmt.Printf("  [%s] %s: %s\n", ev.Timestamp, ev.Type, data)
	}
}

// runListType lists events of one type across all services, the bounded
// predicate-scan fallback.
func runListType(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("list-type", flag.ExitOnError)
	eventType := fs.String("type", "", "Event type to filter (required)")
	limit := fs.Int("limit", 10, "Maximum events to return")
	fs.Parse(args)

	if *eventType == "" {
		ui.Errorf("list-type requires --type")
		os.Exit(1)
	}

	log := openEventLog(dirs)
	defer log.Close()

	events, err := log.EventsByType(context.Background(), *eventType, *limit)
	if err != nil {
		ui.Errorf("list events: %v", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Printf("No events found of type: %s\n", *eventType)
		return
	}

	ui.Bold.Printf("\nEvents of type %q (limit: %d):\n\n", *eventType, *limit)
	for _, ev := range events {
		data, _ := json.Marshal(ev.Data)
		fmt.Printf("  [%s] %s: %s\n", ev.Service, ev.Timestamp, data)
	}
}
