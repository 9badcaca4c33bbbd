package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClientArgs configures an OpenAI-compatible chat client. BaseURL
// allows pointing the same client at Groq- or DeepSeek-style endpoints.
type OpenAIClientArgs struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float32
}

// OpenAIClient is a ModelClient backed by an OpenAI-compatible chat
// completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxRetries  int
	retryDelay  time.Duration
	temperature float32
}

// NewOpenAIClient creates a chat client for the configured endpoint.
func NewOpenAIClient(args OpenAIClientArgs) (*OpenAIClient, error) {
	if args.APIKey == "" {
		return nil, fmt.Errorf("model client requires an API key")
	}
	if args.Model == "" {
		return nil, fmt.Errorf("model client requires a model name")
	}

	cfg := openai.DefaultConfig(args.APIKey)
	if args.BaseURL != "" {
		cfg.BaseURL = args.BaseURL
	}

	maxRetries := args.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := args.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       args.Model,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		temperature: args.Temperature,
	}, nil
}

func (c *OpenAIClient) ModelID() string { return c.model }

// Complete sends the prompt and returns the first choice. Transient
// failures and empty responses are retried with linear backoff; the
// scoring engine never sees this policy.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err == nil && len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
			return resp.Choices[0].Message.Content, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("model returned no content")
		}
		slog.Warn("model call failed, retrying",
			"model", c.model, "attempt", attempt, "error", lastErr)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}

	return "", fmt.Errorf("model %s failed after %d attempts: %w", c.model, c.maxRetries, lastErr)
}
