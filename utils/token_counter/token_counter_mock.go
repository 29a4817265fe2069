package token_counter

import (
	"github.com/stretchr/testify/mock"
)

// MockTokenCounter is a mock implementation of TokenCounterInterface for testing.
type MockTokenCounter struct {
	mock.Mock
}

var _ TokenCounterInterface = (*MockTokenCounter)(nil)

func NewMockTokenCounter() *MockTokenCounter {
	return &MockTokenCounter{}
}

func (m *MockTokenCounter) CountTextTokens(text string) int {
	args := m.Called(text)
	return args.Int(0)
}

func (m *MockTokenCounter) CountPromptTokens(prompt string) int {
	args := m.Called(prompt)
	return args.Int(0)
}

func (m *MockTokenCounter) CountPromptsTokens(prompts []string) int {
	args := m.Called(prompts)
	return args.Int(0)
}
