// ABOUTME: OpenAI chat client used by the orchestrating agent
// ABOUTME: Wraps chat completions with tool definitions, timeouts, and retry with backoff
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/todo-agent/internal/config"
	"github.com/harper/todo-agent/internal/util"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// Client wraps the OpenAI API client with retry logic
type Client struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a chat client from configuration
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}

	return &Client{
		client:     openai.NewClient(cfg.OpenAIKey),
		model:      model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Model returns the configured chat model name
func (c *Client) Model() string {
	return c.model
}

// ChatCompletion sends the conversation with the given tool definitions and
// returns the assistant's message, which may carry tool calls instead of
// (or alongside) text. Transient API failures are retried with exponential
// backoff.
func (c *Client) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, toolDefs []openai.Tool) (openai.ChatCompletionMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return openai.ChatCompletionMessage{}, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    toolDefs,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		return resp.Choices[0].Message, nil
	}

	return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
