// Package resilience classifies provider failures and applies bounded
// retries. The extraction pipeline uses the timeout/other split to decide
// log severity before falling back to a smaller context variant; the
// search layer uses the transient check for its single bounded retry.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsTimeout reports whether err is a deadline or network timeout. Timeouts
// during extraction are expected to recur with smaller input and are
// logged as warnings rather than errors.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

// IsTransient reports whether err looks safe to retry: a timeout, a
// connection-level failure, or a DNS hiccup.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status code indicates a
// server-side condition worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
