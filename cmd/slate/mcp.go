package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zzstoatzz/slate"
	"github.com/zzstoatzz/slate/internal/ui"
	"github.com/zzstoatzz/slate/mcp"
)

// runMCPServer serves the tool set over stdio until stdin is drained.
// Stdout carries the protocol, so all logging goes to stderr. If
// metricsAddr is set, operation metrics are exposed on a Prometheus
// endpoint alongside.
func runMCPServer(dirs dataDirs, metricsAddr string) {
	logger := slate.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	opts := []slate.Option{slate.WithLogger(logger)}
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, slate.WithMetricsCollector(slate.NewPrometheusCollector(reg)))
		go serveMetrics(metricsAddr, reg, logger)
	}

	memStore := openMemoryStore(dirs, opts...)
	defer memStore.Close()
	eventLog := openEventLog(dirs, opts...)
	defer eventLog.Close()

	registry := mcp.NewRegistry()
	if err := mcp.RegisterAll(registry, memStore, eventLog); err != nil {
		ui.Errorf("register tools: %v", err)
		os.Exit(1)
	}

	server := mcp.NewServer("slate", version, registry, logger)
	if err := server.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slate.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics endpoint failed", "addr", addr, "error", err)
	}
}
