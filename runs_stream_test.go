package trellis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellis-ai/trellis-go/sse"
)

// sseHandler adapts a write function into a streaming HTTP handler.
func sseHandler(t *testing.T, write func(w http.ResponseWriter, flush func(), r *http.Request)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		write(w, flusher.Flush, r)
	}
}

func event(w http.ResponseWriter, name, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

func TestStreamRun_DoneEvent(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		event(w, "init", `{"id": "run-1", "status": "running"}`)
		flush()
		event(w, "done", `{"id": "run-1", "status": "completed", "output": "42"}`)
		flush()
	}))
	defer server.Close()

	var seen []sse.Message
	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"},
		WithStreamHandler(func(m sse.Message) { seen = append(seen, m) }))
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.JSONEq(t, `"42"`, string(run.Output))
	assert.JSONEq(t, `{"id": "run-1", "status": "completed", "output": "42"}`, string(run.Raw))

	require.Len(t, seen, 2)
	assert.Equal(t, "init", seen[0].Event)
	assert.Equal(t, "done", seen[1].Event)
}

func TestStreamRun_TerminalShortCircuit(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), r *http.Request) {
		event(w, "init", `{"id": "run-1", "status": "running"}`)
		event(w, "done", `{"id": "run-1", "status": "completed"}`)
		flush()
		// Keep the stream open; the client must resolve without it closing.
		<-r.Context().Done()
		close(blocked)
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)

	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not release the connection after the done event")
	}
}

func TestStreamRun_PendingStatusRejected(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		event(w, "init", `{"id": "run-1", "status": "pending"}`)
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)
	assert.True(t, IsStreamIncomplete(err))

	var sie *StreamIncompleteError
	require.ErrorAs(t, err, &sie)
	assert.Equal(t, RunStatusPending, sie.LastStatus)
}

func TestStreamRun_LastSeenFallback(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		event(w, "init", `{"id": "run-1", "status": "completed", "output": "partial close"}`)
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.JSONEq(t, `"partial close"`, string(run.Output))
}

func TestStreamRun_EmptyStream(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		fmt.Fprint(w, ": ping\n\n")
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)

	var sie *StreamIncompleteError
	require.ErrorAs(t, err, &sie)
	assert.Equal(t, RunStatus(""), sie.LastStatus)
}

func TestStreamRun_FlushOnStreamClose(t *testing.T) {
	// A done event without a trailing blank line must still be delivered
	// when the stream closes.
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		fmt.Fprint(w, "event: done\ndata: {\"id\": \"run-1\", \"status\": \"completed\"}")
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
}

func TestStreamRun_MalformedPayloadSkipped(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		event(w, "init", `{not json`)
		event(w, "done", `{"id": "run-1", "status": "completed"}`)
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
}

func TestStreamRun_UnknownEventNamesNotDecoded(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		event(w, "progress", `{"id": "run-1", "status": "completed"}`)
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)
	assert.True(t, IsStreamIncomplete(err))
}

func TestStreamRun_JSONShortCircuit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Run{ID: "run-1", AgentID: "agent-1", Status: RunStatusCompleted})
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.NotEmpty(t, run.Raw)
}

func TestStreamRun_Timeout(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), r *http.Request) {
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
				fmt.Fprint(w, ": ping\n\n")
				flush()
			}
		}
	}))
	defer server.Close()

	c := New(server.URL)
	start := time.Now()
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"},
		WithStreamTimeout(30*time.Millisecond))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 30*time.Millisecond, te.Budget)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestStreamRun_CallerCancellation(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), r *http.Request) {
		fmt.Fprint(w, ": ping\n\n")
		flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := New(server.URL)
	_, err := c.StreamRun(ctx, "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestStreamRun_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"detail": [{"msg": "input is required", "loc": ["body", "input"]}]}`)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "input is required")
	assert.NotEmpty(t, ve.Detail)
}

func TestStreamRun_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, http.MethodPost, se.Method)
	assert.Contains(t, se.URL, "/v1/agents/agent-1/runs/stream")
	assert.Equal(t, "upstream unavailable", se.Body)
}

// nilBodyDoer simulates a transport that cannot stream.
type nilBodyDoer struct{}

func (nilBodyDoer) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Request:    req,
	}, nil
}

func TestStreamRun_NoStreamableBody(t *testing.T) {
	c := New("http://example.invalid", WithHTTPClient(nilBodyDoer{}))
	_, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "streamable body")
}

func TestStreamRun_FirstDoneWins(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func(), _ *http.Request) {
		// Both terminal events arrive in one chunk; the first must win.
		event(w, "done", `{"id": "run-1", "status": "completed"}`)
		event(w, "done", `{"id": "run-1", "status": "failed"}`)
		flush()
	}))
	defer server.Close()

	c := New(server.URL)
	run, err := c.StreamRun(context.Background(), "agent-1", RunRequest{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
}
