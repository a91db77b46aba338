package ai

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultBaseURL = "https://integrate.api.nvidia.com/v1"
	defaultModel   = "qwen/qwen3-next-80b-a3b-instruct"

	// Completion calls are retried this many times before the error is
	// surfaced to the caller. No backoff between attempts.
	maxAttempts = 3
)

// Message is one turn of conversation context passed to the model
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client wraps an OpenAI-compatible chat completion endpoint
type Client struct {
	client *openai.Client
	model  string
}

// New creates a completion client from the environment. Returns an error
// when NVIDIA_API_KEY is unset; callers are expected to run degraded
// without a client rather than fail.
func New() (*Client, error) {
	apiKey := os.Getenv("NVIDIA_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("NVIDIA_API_KEY environment variable is not set")
	}

	baseURL := os.Getenv("NVIDIA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("NVIDIA_MODEL")
	if model == "" {
		model = defaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)

	return &Client{client: &client, model: model}, nil
}

// Complete sends a single system+user exchange and returns the raw text
// of the reply, retrying up to maxAttempts times.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return c.CompleteConversation(ctx, systemPrompt, []Message{{Role: "user", Content: userMessage}})
}

// CompleteConversation sends a system prompt plus prior turns and returns
// the raw reply text, retrying up to maxAttempts times.
func (c *Client) CompleteConversation(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.complete(ctx, systemPrompt, messages)
		if err == nil {
			return text, nil
		}
		log.Printf("[ai] completion attempt %d/%d failed: %v", attempt, maxAttempts, err)
		lastErr = err
	}
	return "", fmt.Errorf("completion failed after %d attempts: %v", maxAttempts, lastErr)
}

// CompleteJSON sends a single exchange and parses the reply into out,
// tolerating code fences and mildly malformed JSON. A reply that still
// fails to parse counts as a failed attempt and is retried.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userMessage string, out any) error {
	messages := []Message{{Role: "user", Content: userMessage}}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.complete(ctx, systemPrompt, messages)
		if err == nil {
			if err = ParseJSON(text, out); err == nil {
				return nil
			}
		}
		log.Printf("[ai] JSON completion attempt %d/%d failed: %v", attempt, maxAttempts, err)
		lastErr = err
	}
	return fmt.Errorf("completion failed after %d attempts: %v", maxAttempts, lastErr)
}

func (c *Client) complete(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Temperature: openai.Float(0.5),
		TopP:        openai.Float(0.95),
		MaxTokens:   openai.Int(4096),
	}
	params.Messages = append(params.Messages, openai.SystemMessage(systemPrompt))
	for _, m := range messages {
		if m.Role == "assistant" {
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		} else {
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
