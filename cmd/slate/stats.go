package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/zzstoatzz/slate/internal/ui"
)

// runStats counts events by service and type over the scan window.
func runStats(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	log := openEventLog(dirs)
	defer log.Close()

	stats, err := log.Stats(context.Background())
	if err != nil {
		ui.Errorf("aggregate stats: %v", err)
		os.Exit(1)
	}

	ui.Bold.Printf("\nEvent stats (%d total):\n\n", stats.TotalEvents)

	fmt.Println("  By service:")
	for _, svc := range sortedKeys(stats.ByService) {
		fmt.Printf("    %-24s %d\n", svc, stats.ByService[svc])
	}

	fmt.Println("  By type:")
	for _, kind := range sortedKeys(stats.ByType) {
		fmt.Printf("    %-24s %d\n", kind, stats.ByType[kind])
	}
}

// runClear reports how many events a clear would remove. Nothing is
// deleted; the output says so explicitly so nobody mistakes it for a
// mutation.
func runClear(args []string, dirs dataDirs) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	service := fs.String("service", "", "Count only this service's events")
	fs.Parse(args)

	log := openEventLog(dirs)
	defer log.Close()

	count, err := log.ClearEvents(context.Background(), *service)
	if err != nil {
		ui.Errorf("count events: %v", err)
		os.Exit(1)
	}

	if *service != "" {
		ui.Infof("Counted %d event(s) for service %s.", count, *service)
	} else {
		ui.Infof("Counted %d event(s).", count)
	}
	ui.Dim.Println("No events were deleted: clear is a counting no-op kept as a safety guard.")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
