package token_counter

type TokenCounterInterface interface {
	CountTextTokens(text string) int
	CountPromptTokens(prompt string) int
	CountPromptsTokens(prompts []string) int
}
