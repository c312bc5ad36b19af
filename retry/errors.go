package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"

	trellis "github.com/trellis-ai/trellis-go"
)

// Retryable determines whether an error is transient and worth another
// attempt. API errors are classified through the trellis taxonomy
// (incomplete streams, 5xx, 429); anything else falls back to network-level
// heuristics: timeouts, connection resets, refused connections, and
// temporary DNS failures.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if trellis.IsRetryable(err) {
		return true
	}
	// A stream timeout means the server was reachable but slow; another
	// attempt may land on a healthier instance.
	if trellis.IsTimeout(err) {
		return true
	}
	return isTransientNetworkError(err)
}

func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT:
			return true
		}
	}

	return false
}
