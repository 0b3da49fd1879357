package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DBravy/connected-chatbot-sub000/app/config"

	"github.com/sashabaranov/go-openai"
)

const (
	callTimeout         = 30 * time.Second
	maxCompletionTokens = 2000
)

// Completer is the slice of the language model the services depend on.
// Reducer, planner and editor all speak through it so tests can swap in
// a failing stub and exercise the deterministic fallbacks.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string, out any) error
	Complete(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	api   *openai.Client
	model string
}

var _ Completer = (*Client)(nil)

func NewClient(cfg config.ModelConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: callTimeout,
	}

	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: cfg.Model,
	}
}

// CompleteJSON asks for a JSON object completion and unmarshals it into out.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	aiResponse, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: maxCompletionTokens,
			Temperature:         1,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return fmt.Errorf("no chat completion found")
	}

	result := trimJSONFences(aiResponse.Choices[0].Message.Content)

	if err = json.Unmarshal([]byte(result), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// Complete asks for a plain text completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	aiResponse, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: maxCompletionTokens,
			Temperature:         1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}

// Models love wrapping JSON in markdown fences regardless of response_format.
func trimJSONFences(s string) string {
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)

	return s
}

// RenderPrompt substitutes {key} placeholders in an embedded template.
func RenderPrompt(template string, values map[string]any) string {
	for key, value := range values {
		template = strings.ReplaceAll(template, "{"+key+"}", fmt.Sprint(value))
	}

	return template
}
