package trellis

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// ConfigError indicates the environment cannot support the requested
// operation, for example a transport without a streamable response body.
// It is not retryable; the caller must change the environment.
type ConfigError struct {
	Reason string
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return "trellis: " + e.Reason
}

// ValidationError indicates the server rejected the request as semantically
// invalid (HTTP 422). Detail carries the decoded validation payload when the
// response body was decodable JSON; Body always carries the raw text.
// Not retryable without changing the request.
type ValidationError struct {
	Method string
	URL    string
	Detail []byte
	Body   string
}

// Error returns the error message, including the first validation message
// from the decoded detail when one is present.
func (e *ValidationError) Error() string {
	msg := "invalid request"
	if m := gjson.GetBytes(e.Detail, "detail.0.msg"); m.Exists() {
		msg = m.String()
	} else if m := gjson.GetBytes(e.Detail, "detail"); m.Type == gjson.String {
		msg = m.String()
	}
	return fmt.Sprintf("trellis: %s %s: %s", e.Method, e.URL, msg)
}

// StatusError indicates a non-success HTTP status other than a validation
// failure. Body holds the best-effort decoded response text.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("trellis: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("trellis: %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// StreamIncompleteError indicates a run stream ended without a terminal
// event and without an acceptable last-seen payload. The caller may retry
// the stream or poll [Client.GetRun].
type StreamIncompleteError struct {
	// LastStatus is the status of the last payload seen on the stream,
	// empty when no payload was decoded at all.
	LastStatus RunStatus
}

// Error returns the error message.
func (e *StreamIncompleteError) Error() string {
	if e.LastStatus != "" {
		return fmt.Sprintf("trellis: stream ended before terminal event (last status %q)", e.LastStatus)
	}
	return "trellis: stream ended before terminal event"
}

// TimeoutError indicates the configured time budget elapsed before a run
// reached a terminal state. It is distinct from cancellation through the
// caller's context, which surfaces as the context's own error.
type TimeoutError struct {
	Budget time.Duration
}

// Error returns the error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("trellis: run did not complete within %s", e.Budget)
}

// IsTimeout reports whether err is a stream timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a server-side validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStreamIncomplete reports whether err indicates a stream that ended
// before producing a terminal event.
func IsStreamIncomplete(err error) bool {
	var se *StreamIncompleteError
	return errors.As(err, &se)
}

// StatusCodeOf returns the HTTP status code carried by err, or 0 when err
// carries none.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity
	}
	return 0
}

// IsRetryable reports whether err is worth retrying: server-side failures
// (5xx and 429) and incomplete streams. Validation, configuration, and
// timeout errors are not retryable by this layer.
func IsRetryable(err error) bool {
	if IsStreamIncomplete(err) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return false
}
