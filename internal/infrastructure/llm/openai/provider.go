// Package openai adapts the OpenAI chat-completions API to ports.ChatProvider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

var _ ports.ChatProvider = (*Provider)(nil)

// ErrEmptyCompletion is returned when the API answers without any choice.
var ErrEmptyCompletion = errors.New("openai: completion returned no choices")

// CompletionsService is the subset of the SDK used by Provider, so tests can
// avoid the network.
type CompletionsService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config holds the connection settings for the API.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string
}

// Provider sends single-turn chat completions.
type Provider struct {
	completions CompletionsService
}

func NewProvider(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &Provider{completions: client.Chat.Completions}
}

func (p *Provider) Name() string { return "openai" }

// Complete sends the system prompt and user message and returns the content
// of the first choice.
func (p *Provider) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Message))

	resp, err := p.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(openai.ChatModel(req.Model)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
