package chat

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/FrenchMajesty/turbo-exec/rate_limit"
	"github.com/openai/openai-go/v2"
)

// IsRetryable reports whether a failed completion is worth another attempt.
// It classifies errors only. Used as an executor's CanReturn it would lift
// the retry budget for every transient failure, so callers should rather
// cancel on errors it rejects.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// The local budget only refills at the next window.
	if errors.Is(err, rate_limit.ErrBudgetExhausted) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, ErrEmptyResponse) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Network-related errors are retryable
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") || strings.Contains(errStr, "connection") {
		return true
	}

	// Rate limiting errors are retryable
	if strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests") {
		return true
	}

	// Server errors (5xx) are retryable
	if strings.Contains(errStr, "internal server error") || strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") || strings.Contains(errStr, "gateway timeout") ||
		strings.Contains(errStr, "overloaded") {
		return true
	}

	return false
}
