package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zzstoatzz/slate"
	"github.com/zzstoatzz/slate/engine"
)

func testClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	mem := slate.NewMemoryStore(engine.NewMemory(), slate.WithClock(testClock()))
	log := slate.NewEventLog(engine.NewMemory(), slate.WithClock(testClock()))
	t.Cleanup(func() {
		mem.Close()
		log.Close()
	})

	reg := NewRegistry()
	require.NoError(t, RegisterAll(reg, mem, log))
	return NewServer("slate", "test", reg, nil)
}

// roundTrip feeds newline-delimited requests through the server and decodes
// one response per request line.
func roundTrip(t *testing.T, srv *Server, requests ...string) []response {
	t.Helper()

	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), in, &out))

	var responses []response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp response
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	return responses
}

// toolEnvelope extracts the application envelope out of a tools/call result.
func toolEnvelope(t *testing.T, resp response) map[string]any {
	t.Helper()
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	text := content[0].(map[string]any)["text"].(string)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &envelope))
	return envelope
}

func callLine(id int, name string, args string) string {
	return `{"jsonrpc":"2.0","id":` + jsonInt(id) + `,"method":"tools/call","params":{"name":"` + name + `","arguments":` + args + `}}`
}

func jsonInt(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}

func TestServerInitializeAndList(t *testing.T) {
	srv := newTestServer(t)

	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	require.Len(t, responses, 2) // the notification gets no response

	init := responses[0].Result.(map[string]any)
	require.Equal(t, protocolVersion, init["protocolVersion"])
	require.Equal(t, "slate", init["serverInfo"].(map[string]any)["name"])

	list := responses[1].Result.(map[string]any)
	tools := list["tools"].([]any)
	require.Len(t, tools, 10)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	require.Contains(t, names, "store_memory")
	require.Contains(t, names, "log_event")
	require.Contains(t, names, "clear_events")
}

func TestServerUnknownMethod(t *testing.T) {
	srv := newTestServer(t)

	responses := roundTrip(t, srv, `{"jsonrpc":"2.0","id":1,"method":"bogus"}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	require.Equal(t, codeMethodNotFound, responses[0].Error.Code)
}

func TestServerMemoryTools(t *testing.T) {
	srv := newTestServer(t)

	responses := roundTrip(t, srv,
		callLine(1, "store_memory", `{"key":"note:1","value":"hello","metadata":{"tag":"test"}}`),
		callLine(2, "retrieve_memory", `{"key":"note:1"}`),
		callLine(3, "retrieve_memory", `{"key":"missing"}`),
		callLine(4, "search_memory", `{"prefix":"note:"}`),
		callLine(5, "list_memory_keys", `{}`),
		callLine(6, "delete_memory", `{"key":"note:1"}`),
		callLine(7, "delete_memory", `{"key":"note:1"}`),
	)
	require.Len(t, responses, 7)

	stored := toolEnvelope(t, responses[0])
	require.Equal(t, true, stored["success"])
	entry := stored["entry"].(map[string]any)
	require.Equal(t, "note:1", entry["key"])
	require.NotEmpty(t, entry["created_at"])

	retrieved := toolEnvelope(t, responses[1])
	require.Equal(t, true, retrieved["success"])
	require.Equal(t, "hello", retrieved["entry"].(map[string]any)["value"])

	notFound := toolEnvelope(t, responses[2])
	require.Equal(t, false, notFound["success"])
	require.Contains(t, notFound["error"], "missing")

	searched := toolEnvelope(t, responses[3])
	require.Equal(t, float64(1), searched["count"])

	keys := toolEnvelope(t, responses[4])
	require.Equal(t, []any{"note:1"}, keys["keys"])

	deleted := toolEnvelope(t, responses[5])
	require.Equal(t, true, deleted["success"])

	deletedAgain := toolEnvelope(t, responses[6])
	require.Equal(t, false, deletedAgain["success"])
}

func TestServerEventTools(t *testing.T) {
	srv := newTestServer(t)

	responses := roundTrip(t, srv,
		callLine(1, "log_event", `{"service":"svc-a","event_type":"login","data":{"user":"u1"}}`),
		callLine(2, "log_event", `{"service":"svc-b","event_type":"login"}`),
		callLine(3, "list_events", `{"service":"svc-a"}`),
		callLine(4, "list_events", `{"event_type":"login"}`),
		callLine(5, "get_event_stats", `{}`),
		callLine(6, "clear_events", `{"service":"svc-a"}`),
		callLine(7, "list_events", `{}`),
	)
	require.Len(t, responses, 7)

	logged := toolEnvelope(t, responses[0])
	require.Equal(t, true, logged["success"])
	ev := logged["event"].(map[string]any)
	require.Equal(t, "svc-a", ev["service"])
	id := ev["id"].(string)
	require.True(t, strings.HasPrefix(id, "svc-a:"))

	svcA := toolEnvelope(t, responses[2])
	require.Equal(t, float64(1), svcA["count"])

	logins := toolEnvelope(t, responses[3])
	require.Equal(t, float64(2), logins["count"])

	stats := toolEnvelope(t, responses[4])
	statsBody := stats["stats"].(map[string]any)
	require.Equal(t, float64(2), statsBody["total_events"])

	cleared := toolEnvelope(t, responses[5])
	require.Equal(t, float64(1), cleared["count"])
	require.Contains(t, cleared["message"], "no events were deleted")

	// clear_events did not mutate anything.
	after := toolEnvelope(t, responses[6])
	require.Equal(t, float64(2), after["count"])

	// get_event round-trips the id from log_event.
	getResp := roundTrip(t, srv, callLine(8, "get_event", `{"event_id":"`+id+`"}`))
	got := toolEnvelope(t, getResp[0])
	require.Equal(t, true, got["success"])
	require.Equal(t, id, got["event"].(map[string]any)["id"])
}

func TestServerInvalidInputs(t *testing.T) {
	srv := newTestServer(t)

	responses := roundTrip(t, srv,
		callLine(1, "log_event", `{"service":"bad:svc","event_type":"login"}`),
		callLine(2, "store_memory", `{"key":"","value":1}`),
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}`,
	)
	require.Len(t, responses, 3)

	badService := toolEnvelope(t, responses[0])
	require.Equal(t, false, badService["success"])
	require.Contains(t, badService["error"], "invalid input")

	emptyKey := toolEnvelope(t, responses[1])
	require.Equal(t, false, emptyKey["success"])

	require.NotNil(t, responses[2].Error)
	require.Equal(t, codeInvalidParams, responses[2].Error.Code)
}
