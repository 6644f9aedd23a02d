// Package mcp exposes the slate store operations as remote-callable tools
// over the Model Context Protocol: JSON-RPC 2.0 on stdin/stdout, with the
// standard initialize / tools/list / tools/call methods.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for the tool registry.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrToolAlreadyExists = errors.New("tool already registered")
	ErrEmptyToolName     = errors.New("tool name is empty")
)

// Tool describes one callable tool as advertised to clients.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Handler is the function signature for tool implementations. Handlers
// receive the request context and the JSON-encoded arguments of the call.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is a tool execution outcome. Content carries the JSON envelope
// returned to the client; IsError marks protocol-visible failures.
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	tool    Tool
	handler Handler
}

// Registry holds the tool set served by one Server. It is constructed
// explicitly and injected rather than living in package state, so tests and
// multiple servers get isolated tool sets.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Returns ErrToolAlreadyExists if the name is taken.
func (r *Registry) Register(tool Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyToolName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyExists, tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns all tool definitions, sorted by name for stable output.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Execute dispatches a tool call by name. Returns ErrToolNotFound for
// unknown tools; handler errors are wrapped with the tool name.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}
	return result, nil
}
