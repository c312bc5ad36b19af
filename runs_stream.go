package trellis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trellis-ai/trellis-go/internal/abort"
	"github.com/trellis-ai/trellis-go/sse"
)

// Event names carried on the run stream. Only these two are decoded; data
// from any other event name is never interpreted.
const (
	eventInit = "init"
	eventDone = "done"
)

// StreamOption configures a single StreamRun call.
type StreamOption func(*streamOptions)

type streamOptions struct {
	timeout time.Duration
	handler func(sse.Message)
}

// WithStreamTimeout sets the time budget for this call, overriding the
// client default.
func WithStreamTimeout(d time.Duration) StreamOption {
	return func(o *streamOptions) {
		o.timeout = d
	}
}

// WithStreamHandler registers a callback invoked for every event observed
// on the stream, in arrival order. Delivery of intermediate events is best
// effort and not part of the contract; only the returned terminal run and
// the timeout/cancellation behavior are.
func WithStreamHandler(fn func(sse.Message)) StreamOption {
	return func(o *streamOptions) {
		o.handler = fn
	}
}

// StreamRun starts an agent run over the streaming endpoint and waits for
// its terminal state.
//
// The call resolves with the payload of the stream's done event, or with
// the decoded body when the server answers with a plain JSON document
// instead of a stream. When the stream closes without a done event but the
// last payload seen has progressed past pending, that payload is accepted;
// this compensates for servers that close right after the last meaningful
// update and is best effort, not a guaranteed contract. Otherwise the call
// fails with [StreamIncompleteError].
//
// Cancelling ctx aborts the call with ctx's error. When the time budget
// (default 60s, see [WithStreamTimeout] and [WithDefaultStreamTimeout])
// elapses first, the call fails with [TimeoutError] instead.
func (c *Client) StreamRun(ctx context.Context, agentID string, runReq RunRequest, opts ...StreamOption) (*Run, error) {
	o := streamOptions{timeout: c.streamTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = defaultStreamTimeout
	}

	// The timeout is one cancellation source, the caller's context the
	// other. A local flag set by the timer callback is the only way to
	// tell the two apart after the fact: both produce the same abort.
	timeoutSig := abort.New()
	var timedOut atomic.Bool
	timer := time.AfterFunc(o.timeout, func() {
		timedOut.Store(true)
		timeoutSig.Trigger()
	})
	defer timer.Stop()

	combined := abort.Combine(timeoutSig.Done(), ctx.Done())
	defer combined.Trigger()

	// The request context is cancelled only through the combined signal,
	// so the transport aborts in-flight reads for either source.
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	go func() {
		select {
		case <-combined.Done():
			cancel()
		case <-reqCtx.Done():
		}
	}()

	run, err := c.streamRun(reqCtx, agentID, runReq, o)
	if err != nil && errors.Is(err, context.Canceled) {
		if timedOut.Load() {
			return nil, &TimeoutError{Budget: o.timeout}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return run, err
}

// streamRun drives one streaming request-response cycle.
func (c *Client) streamRun(ctx context.Context, agentID string, runReq RunRequest, o streamOptions) (*Run, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/v1/agents/"+agentID+"/runs/stream", runReq)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trellis: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if resp.Body != nil {
			resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(req, resp)
	}

	if resp.Body == nil {
		return nil, &ConfigError{Reason: "transport returned a response without a streamable body"}
	}

	// The server may answer a streaming request with a plain JSON body;
	// that document is the terminal payload.
	if isJSONContentType(resp.Header.Get("Content-Type")) {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("trellis: read run response: %w", err)
		}
		return decodeRun(raw)
	}

	var latest, final json.RawMessage
	parser := sse.NewParser(func(m sse.Message) {
		if o.handler != nil {
			o.handler(m)
		}
		if final != nil {
			return
		}
		if m.Event != eventInit && m.Event != eventDone {
			return
		}
		// A malformed payload is dropped, not fatal: the stream may still
		// produce a well-formed terminal event later.
		raw := json.RawMessage(m.Data)
		if !json.Valid(raw) {
			return
		}
		latest = raw
		if m.Event == eventDone {
			final = raw
		}
	})

	buf := make([]byte, 4096)
	for final == nil {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			parser.Feed(string(buf[:n]))
		}
		if readErr != nil {
			if readErr != io.EOF {
				return nil, fmt.Errorf("trellis: read run stream: %w", readErr)
			}
			break
		}
	}
	parser.End()

	switch {
	case final != nil:
		return decodeRun(final)
	case latest != nil:
		status := gjson.GetBytes(latest, "status")
		if status.Exists() && status.String() != string(RunStatusPending) {
			return decodeRun(latest)
		}
		return nil, &StreamIncompleteError{LastStatus: RunStatus(status.String())}
	default:
		return nil, &StreamIncompleteError{}
	}
}

// decodeRun unmarshals a server run payload, preserving the raw document.
func decodeRun(raw json.RawMessage) (*Run, error) {
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("trellis: decode run payload: %w", err)
	}
	run.Raw = raw
	return &run, nil
}
