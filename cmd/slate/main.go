// Package main implements the slate CLI for logging and querying events and
// for serving the store over MCP.
//
// Usage:
//
//	slate log --service auth --type login [--data '{"k":"v"}']
//	slate get <event-id>
//	slate list-service --service auth [--limit N]
//	slate list-type --type login [--limit N]
//	slate stats
//	slate clear [--service auth]
//	slate demo
//	slate simulate
//	slate --mcp                   Start as MCP server (JSON-RPC over stdio)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zzstoatzz/slate/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		mcpMode     = flag.Bool("mcp", false, "Start as MCP server (JSON-RPC over stdio)")
		metricsAddr = flag.String("metrics-listen", "", "Serve Prometheus metrics on this address in MCP mode (e.g. :9090)")
		eventsDir   = flag.String("events-dir", "./event_logs", "Event log database directory")
		memoryDir   = flag.String("memory-dir", "./slate_memory", "Memory store database directory")
		mirrorURI   = flag.String("mirror", "", "Mirror checkpoints to a blob store (file://dir, s3://bucket/prefix, minio://endpoint/bucket/prefix)")
		commitTable = flag.String("commit-table", "", "DynamoDB table for the checkpoint commit pointer (s3 mirrors only)")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `slate - event log and persistent memory over an embedded ordered KV store

Usage:
  slate <command> [options]

Commands:
  log           Log an event (--service, --type, --data)
  get           Get an event by its composite id
  list-service  List a service's events in chronological order
  list-type     List events of one type across all services
  stats         Count events by service and type
  clear         Count events a clear would remove (deletes nothing)
  demo          Run a scripted multi-service walkthrough
  simulate      Log 20 random events across four services

Global Options:
  --mcp             Start as MCP server (JSON-RPC over stdio)
  --metrics-listen  Prometheus endpoint address in MCP mode
  --events-dir      Event database directory (default ./event_logs)
  --memory-dir      Memory database directory (default ./slate_memory)
  --mirror          Mirror checkpoints to a blob store URI
  --commit-table    DynamoDB commit-pointer table for s3 mirrors
  --no-color        Disable colored output
  --version         Show version and exit

Examples:
  slate log --service auth-service --type user_login --data '{"user_id":"42"}'
  slate list-service --service auth-service --limit 20
  slate list-type --type request
  slate --mcp --metrics-listen :9090

`)
	}

	flag.Parse()
	ui.InitColors(*noColor)

	if *showVersion {
		fmt.Printf("slate version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		os.Exit(0)
	}

	engineOpts, err := mirrorOptions(context.Background(), *mirrorURI, *commitTable)
	if err != nil {
		ui.Errorf("configure mirror: %v", err)
		os.Exit(1)
	}

	dirs := dataDirs{events: *eventsDir, memory: *memoryDir, engineOpts: engineOpts}

	// MCP mode takes precedence over subcommands.
	if *mcpMode {
		runMCPServer(dirs, *metricsAddr)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "log":
		runLog(cmdArgs, dirs)
	case "get":
		runGet(cmdArgs, dirs)
	case "list-service":
		runListService(cmdArgs, dirs)
	case "list-type":
		runListType(cmdArgs, dirs)
	case "stats":
		runStats(cmdArgs, dirs)
	case "clear":
		runClear(cmdArgs, dirs)
	case "demo":
		runDemo(cmdArgs, dirs)
	case "simulate":
		runSimulate(cmdArgs, dirs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
