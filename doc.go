// Package trellis is a typed Go client for the Trellis agent platform API:
// agents, runs, sources, content, and file uploads over JSON, plus a
// Server-Sent-Events streaming protocol for following runs to completion.
//
// # Basic Usage
//
// Create a client and start a streaming run:
//
//	c := trellis.New("https://api.trellis.dev", trellis.WithAPIKey(os.Getenv("TRELLIS_API_KEY")))
//
//	run, err := c.StreamRun(ctx, agentID, trellis.RunRequest{
//	    Input: "Summarize yesterday's support tickets.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(run.Status, string(run.Output))
//
// StreamRun opens the run's event stream and blocks until the run reaches a
// terminal state, the time budget elapses ([TimeoutError]), or ctx is
// cancelled. Use [WithStreamTimeout] to adjust the budget per call and
// [WithStreamHandler] to observe intermediate events.
//
// # Configuration
//
// [NewFromEnv] resolves the API key, base URL, and default stream timeout
// from TRELLIS_API_KEY, TRELLIS_BASE_URL, and TRELLIS_TIMEOUT, loading a
// .env file when one is present:
//
//	c, err := trellis.NewFromEnv()
//
// # Errors
//
// Failures surface as typed errors: [ValidationError] for rejected requests,
// [StatusError] for other non-success statuses, [StreamIncompleteError] when
// a stream ends without a terminal event, [TimeoutError] for an elapsed
// budget, and [ConfigError] for unusable environments. The predicates
// [IsValidation], [IsStreamIncomplete], [IsTimeout], and [IsRetryable]
// classify wrapped errors. This package never retries; the
// [github.com/trellis-ai/trellis-go/retry] package provides opt-in retry
// with exponential backoff for callers that want it.
package trellis
