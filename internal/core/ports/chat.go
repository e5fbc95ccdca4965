package ports

import (
	"context"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// ChatRequest is a single-turn completion request.
type ChatRequest struct {
	SystemPrompt string
	Model        string
	Message      string
}

// ChatProvider is the upstream chat-completion collaborator.
type ChatProvider interface {
	// Complete returns the raw reply text produced for req.
	Complete(ctx context.Context, req ChatRequest) (string, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// ChatService turns a user message into a chatbot reply. Upstream failures
// are absorbed into a degraded reply; only input errors are returned.
type ChatService interface {
	Reply(ctx context.Context, message string) (domain.ChatReply, error)
}
