package rate_limit

import (
	"errors"
	"time"
)

var ErrBudgetExhausted = errors.New("rate_limit: budget exhausted for the current window")

// Backend tracks per-key token and request consumption within a time window
// (typically per minute). Keys are usually model names.
type Backend interface {
	// BudgetAvailable returns the available token and request budget for key
	// in the current window.
	BudgetAvailable(key string) (tokensAvailable int, requestsAvailable int)

	// Reserve records tokens and one request against key when both fit in
	// the remaining budget, and returns ErrBudgetExhausted otherwise.
	Reserve(key string, tokens int) error

	// TimeUntilReset returns the duration until the next budget reset.
	TimeUntilReset() time.Duration

	// SetBudget overrides the limits applied to key.
	SetBudget(key string, limit RateLimit)

	// Close cleans up any resources held by the backend
	Close() error
}
