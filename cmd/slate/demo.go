package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zzstoatzz/slate/internal/ui"
)

// runDemo walks through the query surface with a scripted set of events
// from three services.
func runDemo(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.Parse(args)

	ctx := context.Background()
	log := openEventLog(dirs)
	defer log.Close()

	ui.Bold.Println("slate event log demo")
	fmt.Println()

	scripted := []struct {
		service string
		kind    string
		data    map[string]any
	}{
		{"auth-service", "user_login", map[string]any{"user_id": "12345", "ip": "192.168.1.1"}},
		{"api-gateway", "request", map[string]any{"path": "/api/users", "method": "GET", "status": 200}},
		{"auth-service", "user_logout", map[string]any{"user_id": "12345", "session_duration": 3600}},
		{"payment-service", "transaction", map[string]any{"amount": 99.99, "currency": "USD", "status": "success"}},
		{"api-gateway", "request", map[string]any{"path": "/api/orders", "method": "POST", "status": 201}},
		{"auth-service", "user_login", map[string]any{"user_id": "67890", "ip": "10.0.0.1"}},
	}

	fmt.Println("Logging events from different services...")
	var firstID string
	for _, s := range scripted {
		ev, err := log.LogEvent(ctx, s.service, s.kind, s.data)
		if err != nil {
			ui.Errorf("log event: %v", err)
			os.Exit(1)
		}
		if firstID == "" {
			firstID = ev.ID
		}
		ui.Successf("Logged: %s - %s", s.service, s.kind)
	}

	fmt.Println("\nRetrieving a specific event...")
	ev, err := log.GetEvent(ctx, firstID)
	if err != nil {
		ui.Errorf("get event: %v", err)
		os.Exit(1)
	}
	fmt.Printf("  Found: %s - %s at %s\n", ev.Service, ev.Type, ev.Timestamp)

	fmt.Println("\nAll auth-service events (prefix scan):")
	authEvents, err := log.ServiceEvents(ctx, "auth-service", 0)
	if err != nil {
		ui.Errorf("list events: %v", err)
		os.Exit(1)
	}
	for _, ev := range authEvents {
		fmt.Printf("  - %s: user_id=%v\n", ev.Type, ev.Data["user_id"])
	}

	fmt.Println("\nAll 'request' events across services (predicate scan):")
	requests, err := log.EventsByType(ctx, "request", 0)
	if err != nil {
		ui.Errorf("list events: %v", err)
		os.Exit(1)
	}
	for _, ev := range requests {
		fmt.Printf("  - %v %v -> %v\n", ev.Data["method"], ev.Data["path"], ev.Data["status"])
	}

	fmt.Println()
	ui.Successf("Demo complete. Try 'slate stats' next.")
}
