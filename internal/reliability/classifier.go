package reliability

import (
	"context"
	"errors"
	"net"
)

// Error classes reported by ClassifyError.
const (
	ClassTimeout   = "timeout"
	ClassCanceled  = "canceled"
	ClassRetryable = "retryable"
	ClassFatal     = "fatal"
	ClassTransport = "transport"
)

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ClassifyError buckets an upstream error for metrics and logs. Errors exposing
// HTTPStatus() are classed by status; everything else is a transport failure.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	var status interface{ HTTPStatus() int }
	if errors.As(err, &status) {
		if IsRetryableHTTPStatus(status.HTTPStatus()) {
			return ClassRetryable
		}
		return ClassFatal
	}
	return ClassTransport
}
