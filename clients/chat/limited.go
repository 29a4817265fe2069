package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/FrenchMajesty/turbo-exec/rate_limit"
	"github.com/FrenchMajesty/turbo-exec/utils/token_counter"
)

// LimitedClient admits a completion only when the rate limit backend has
// budget left for it. A refused request fails at once with
// rate_limit.ErrBudgetExhausted; it is never delayed.
type LimitedClient struct {
	next    Client
	backend rate_limit.Backend
	counter token_counter.TokenCounterInterface
	key     string
}

var _ Client = (*LimitedClient)(nil)

// NewLimitedClient wraps next. counter may be nil, in which case only the
// request budget is enforced.
func NewLimitedClient(next Client, backend rate_limit.Backend, counter token_counter.TokenCounterInterface, key string) *LimitedClient {
	return &LimitedClient{
		next:    next,
		backend: backend,
		counter: counter,
		key:     key,
	}
}

func (c *LimitedClient) Complete(ctx context.Context, prompt string) (string, error) {
	tokens := 0
	if c.counter != nil {
		tokens = c.counter.CountPromptTokens(prompt)
	}

	if err := c.backend.Reserve(c.key, tokens); err != nil {
		return "", fmt.Errorf("chat %s (resets in %s): %w", c.key, c.backend.TimeUntilReset().Round(time.Second), err)
	}

	return c.next.Complete(ctx, prompt)
}
