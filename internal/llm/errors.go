package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable marks provider failures that are retryable on a later run:
// authentication and quota rejections, rate limiting, timeouts, and transport
// errors. Callers test for it with errors.Is; an email whose extraction hit
// ErrUnavailable must not be marked processed.
var ErrUnavailable = errors.New("completion provider unavailable")

// statusError converts a non-200 provider response into an error, wrapping
// ErrUnavailable for the status codes that indicate a retryable condition
// rather than a bad request.
func statusError(statusCode int, body []byte) error {
	switch {
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusTooManyRequests,
		statusCode >= http.StatusInternalServerError:
		return fmt.Errorf("bad status %d: %s: %w", statusCode, string(body), ErrUnavailable)
	default:
		return fmt.Errorf("bad status %d: %s", statusCode, string(body))
	}
}

// transportError wraps request send failures (connection refused, timeouts,
// context deadline) as ErrUnavailable.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("failed to send request: %v: %w", err, ErrUnavailable)
}
