package token_counter

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// tokenCounterImpl provides utilities for counting tokens in prompts
type tokenCounterImpl struct {
	encoder *tiktoken.Tiktoken
}

var encodingBase = "cl100k_base"

// messageOverhead is the per-message framing cost of the chat format.
const messageOverhead = 4

// NewTokenCounter creates a new TokenCounter instance
func NewTokenCounter() (*tokenCounterImpl, error) {
	// Use cl100k_base encoding (used by GPT-4, GPT-3.5-turbo, and text-embedding-ada-002)
	encoder, err := tiktoken.GetEncoding(encodingBase)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &tokenCounterImpl{
		encoder: encoder,
	}, nil
}

// CountTextTokens counts tokens in plain text using tiktoken
func (tc *tokenCounterImpl) CountTextTokens(text string) int {
	tokens := tc.encoder.Encode(text, nil, nil)
	return len(tokens)
}

// CountPromptTokens estimates the tokens a single user message costs,
// role and message framing included.
func (tc *tokenCounterImpl) CountPromptTokens(prompt string) int {
	return tc.CountTextTokens("user") + tc.CountTextTokens(prompt) + messageOverhead
}

// CountPromptsTokens sums CountPromptTokens over a conversation.
func (tc *tokenCounterImpl) CountPromptsTokens(prompts []string) int {
	totalTokens := 0
	for _, p := range prompts {
		totalTokens += tc.CountPromptTokens(p)
	}
	return totalTokens
}
