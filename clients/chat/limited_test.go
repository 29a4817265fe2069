package chat

import (
	"context"
	"testing"

	"github.com/FrenchMajesty/turbo-exec/rate_limit"
	"github.com/FrenchMajesty/turbo-exec/rate_limit/backends/memory"
	"github.com/FrenchMajesty/turbo-exec/turbo_exec"
	"github.com/FrenchMajesty/turbo-exec/utils/token_counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLimitedClient_EnforcesRequestBudget(t *testing.T) {
	next := NewMockClient()
	next.On("Complete", mock.Anything, "hi").Return("hello", nil).Twice()

	backend := memory.NewBackend(rate_limit.RateLimit{RPM: 2, TPM: 1000})
	client := NewLimitedClient(next, backend, nil, "gpt-4o-mini")

	for i := 0; i < 2; i++ {
		got, err := client.Complete(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	}

	_, err := client.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, rate_limit.ErrBudgetExhausted)
	assert.False(t, IsRetryable(err))
	next.AssertExpectations(t)
}

func TestLimitedClient_CountsPromptTokens(t *testing.T) {
	next := NewMockClient()
	counter := token_counter.NewMockTokenCounter()
	counter.On("CountPromptTokens", "long prompt").Return(60)

	backend := memory.NewBackend(rate_limit.RateLimit{RPM: 100, TPM: 100})
	client := NewLimitedClient(next, backend, counter, "gpt-4o-mini")

	next.On("Complete", mock.Anything, "long prompt").Return("ok", nil).Once()
	_, err := client.Complete(context.Background(), "long prompt")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "long prompt")
	assert.ErrorIs(t, err, rate_limit.ErrBudgetExhausted)

	tokens, _ := backend.BudgetAvailable("gpt-4o-mini")
	assert.Equal(t, 40, tokens)
	next.AssertExpectations(t)
}

func TestLimitedClient_BoundsExecutorRetries(t *testing.T) {
	next := NewMockClient()
	next.On("Complete", mock.Anything, "hi").Return("", &rateLimitedError{}).Times(3)

	backend := memory.NewBackend(rate_limit.RateLimit{RPM: 3, TPM: 1000})
	client := NewLimitedClient(next, backend, nil, "gpt-4o-mini")

	executor := turbo_exec.New[string]().RetryOnError(10).MustBuild()
	outcome, err := executor.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return client.Complete(ctx, "hi")
	}).Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, turbo_exec.StateExhausted, outcome.State)
	assert.Equal(t, 11, outcome.Attempts)
	assert.ErrorIs(t, outcome.Err, rate_limit.ErrBudgetExhausted)
	next.AssertNumberOfCalls(t, "Complete", 3)
}

type rateLimitedError struct{}

func (*rateLimitedError) Error() string { return "429 too many requests" }
