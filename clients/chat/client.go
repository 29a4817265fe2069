package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.ChatModelGPT4oMini

var ErrEmptyResponse = errors.New("chat: completion returned no choices")

// Client completes a single user prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient is a Client backed by the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  openai.ChatModel
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for model. Retries are disabled on the
// SDK side so that the caller's executor owns the retry policy.
func NewOpenAIClient(apiKey string, model string, opts ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = string(DefaultModel)
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
	}
}

// Model returns the model requests are sent to.
func (c *OpenAIClient) Model() string {
	return string(c.model)
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
