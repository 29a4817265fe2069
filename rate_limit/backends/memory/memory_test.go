package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/FrenchMajesty/turbo-exec/rate_limit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBackend(limit rate_limit.RateLimit) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 10, 0, time.UTC)}
	return newBackend(limit, clock.Now), clock
}

func TestMemory_ReserveWithinBudget(t *testing.T) {
	backend, _ := newTestBackend(rate_limit.RateLimit{RPM: 3, TPM: 100})

	require.NoError(t, backend.Reserve("gpt-4o-mini", 40))
	require.NoError(t, backend.Reserve("gpt-4o-mini", 40))

	tokens, requests := backend.BudgetAvailable("gpt-4o-mini")
	assert.Equal(t, 20, tokens)
	assert.Equal(t, 1, requests)

	err := backend.Reserve("gpt-4o-mini", 30)
	assert.ErrorIs(t, err, rate_limit.ErrBudgetExhausted)

	tokens, requests = backend.BudgetAvailable("gpt-4o-mini")
	assert.Equal(t, 20, tokens, "a refused reservation consumes nothing")
	assert.Equal(t, 1, requests)
}

func TestMemory_RequestLimit(t *testing.T) {
	backend, _ := newTestBackend(rate_limit.RateLimit{RPM: 2, TPM: 1000})

	require.NoError(t, backend.Reserve("m", 1))
	require.NoError(t, backend.Reserve("m", 1))
	assert.ErrorIs(t, backend.Reserve("m", 1), rate_limit.ErrBudgetExhausted)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	backend, _ := newTestBackend(rate_limit.RateLimit{RPM: 1, TPM: 1000})
	backend.SetBudget("large", rate_limit.RateLimit{RPM: 5, TPM: 1000})

	require.NoError(t, backend.Reserve("small", 1))
	assert.ErrorIs(t, backend.Reserve("small", 1), rate_limit.ErrBudgetExhausted)

	for i := 0; i < 5; i++ {
		require.NoError(t, backend.Reserve("large", 1))
	}
}

func TestMemory_ResetsEveryMinute(t *testing.T) {
	backend, clock := newTestBackend(rate_limit.RateLimit{RPM: 1, TPM: 1000})

	assert.Equal(t, 50*time.Second, backend.TimeUntilReset())

	require.NoError(t, backend.Reserve("m", 10))
	assert.ErrorIs(t, backend.Reserve("m", 10), rate_limit.ErrBudgetExhausted)

	clock.Advance(50 * time.Second)

	require.NoError(t, backend.Reserve("m", 10))
	tokens, requests := backend.BudgetAvailable("m")
	assert.Equal(t, 990, tokens)
	assert.Equal(t, 0, requests)
	assert.NoError(t, backend.Close())
}
