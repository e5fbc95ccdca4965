package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

const (
	DefaultChatModel        = "gpt-3.5-turbo"
	DefaultChatSystemPrompt = "You are a helpful assistant."
	defaultChatTimeout      = 30 * time.Second
)

// ChatOptions configures ChatService.
type ChatOptions struct {
	Model        string
	SystemPrompt string
	// Timeout bounds a single upstream call including queueing.
	Timeout time.Duration
}

type chatService struct {
	provider ports.ChatProvider
	opts     ChatOptions
	log      zerolog.Logger
}

// NewChatService returns a ports.ChatService that never fails because of
// the provider: upstream errors degrade to domain.FallbackReply.
func NewChatService(provider ports.ChatProvider, opts ChatOptions, log zerolog.Logger) ports.ChatService {
	if opts.Model == "" {
		opts.Model = DefaultChatModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultChatSystemPrompt
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}
	return &chatService{
		provider: provider,
		opts:     opts,
		log:      log.With().Str("component", "chat_service").Str("provider", provider.Name()).Logger(),
	}
}

func (s *chatService) Reply(ctx context.Context, message string) (domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ChatReply{}, domain.NewValidationError("message", "no message provided")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.Complete(ctx, ports.ChatRequest{
		SystemPrompt: s.opts.SystemPrompt,
		Model:        s.opts.Model,
		Message:      message,
	})
	metrics.ChatRequestDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.ChatRequestsTotal.WithLabelValues(s.provider.Name(), outcome).Inc()
		s.log.Error().
			Err(err).
			Str("outcome", outcome).
			Dur("elapsed", time.Since(start)).
			Msg("chat provider call failed")
		return domain.FallbackReply(), nil
	}

	metrics.ChatRequestsTotal.WithLabelValues(s.provider.Name(), "ok").Inc()
	return s.parseReply(raw), nil
}

// parseReply accepts either a JSON object {"text","tone"} or plain text.
func (s *chatService) parseReply(raw string) domain.ChatReply {
	var payload struct {
		Text *string `json:"text"`
		Tone *string `json:"tone"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		s.log.Warn().Str("reply", truncate(raw, 200)).Msg("chat reply is not JSON, using raw text")
		return domain.ChatReply{Text: raw, Tone: domain.ToneNormal}
	}

	reply := domain.ChatReply{Text: "...", Tone: domain.ToneNormal}
	if payload.Text != nil {
		reply.Text = *payload.Text
	}
	if payload.Tone != nil && *payload.Tone != "" {
		reply.Tone = *payload.Tone
	}
	return reply
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
