package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/FrenchMajesty/turbo-exec/rate_limit"
)

// usageData tracks token and request consumption
type usageData struct {
	Tokens   int
	Requests int
}

// Memory is an in-memory rate limit backend for single-process scenarios.
type Memory struct {
	state         map[string]usageData
	currentMinute time.Time
	budgets       map[string]rate_limit.RateLimit
	fallback      rate_limit.RateLimit
	now           func() time.Time
	mu            sync.Mutex
}

var _ rate_limit.Backend = (*Memory)(nil)

// NewBackend creates an in-memory backend applying fallback to every key
// without an explicit budget.
func NewBackend(fallback rate_limit.RateLimit) *Memory {
	return newBackend(fallback, time.Now)
}

func newBackend(fallback rate_limit.RateLimit, now func() time.Time) *Memory {
	return &Memory{
		state:         make(map[string]usageData),
		currentMinute: now().Truncate(time.Minute),
		budgets:       make(map[string]rate_limit.RateLimit),
		fallback:      fallback,
		now:           now,
	}
}

// BudgetAvailable returns the available token and request budget for key
func (m *Memory) BudgetAvailable(key string) (tokensAvailable int, requestsAvailable int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkAndResetMinute()
	return m.available(key)
}

// Reserve records the consumption of one request of tokens if it fits.
func (m *Memory) Reserve(key string, tokens int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkAndResetMinute()

	tokensAvailable, requestsAvailable := m.available(key)
	if requestsAvailable < 1 || tokensAvailable < tokens {
		return fmt.Errorf("%w: %s needs %d tokens, %d tokens and %d requests left",
			rate_limit.ErrBudgetExhausted, key, tokens, tokensAvailable, requestsAvailable)
	}

	usage := m.state[key]
	usage.Tokens += tokens
	usage.Requests++
	m.state[key] = usage

	return nil
}

// TimeUntilReset returns the duration until the next minute boundary
func (m *Memory) TimeUntilReset() time.Duration {
	now := m.now()
	nextMinute := now.Truncate(time.Minute).Add(time.Minute)
	return nextMinute.Sub(now)
}

// SetBudget sets a custom budget for key
func (m *Memory) SetBudget(key string, limit rate_limit.RateLimit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.budgets[key] = limit
}

// Close is a no-op for in-memory backend (no resources to clean up)
func (m *Memory) Close() error {
	return nil
}

// available computes the remaining budget. Caller must hold the lock.
func (m *Memory) available(key string) (tokensAvailable int, requestsAvailable int) {
	budget, ok := m.budgets[key]
	if !ok {
		budget = m.fallback
	}
	usage := m.state[key]

	tokensAvailable = budget.TPM - usage.Tokens
	requestsAvailable = budget.RPM - usage.Requests

	if tokensAvailable < 0 {
		tokensAvailable = 0
	}
	if requestsAvailable < 0 {
		requestsAvailable = 0
	}

	return tokensAvailable, requestsAvailable
}

// checkAndResetMinute resets state if we're in a new minute
// Note: caller must hold the lock
func (m *Memory) checkAndResetMinute() {
	currentMinute := m.now().Truncate(time.Minute)
	if !m.currentMinute.Equal(currentMinute) {
		m.currentMinute = currentMinute
		m.state = make(map[string]usageData)
	}
}
