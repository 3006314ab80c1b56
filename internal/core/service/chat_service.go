package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// ChatService is the completion orchestrator.
type ChatService struct {
	provider      ports.CompletionProvider
	conversations ports.ConversationRepository
	systemPrompt  string
	timeout       time.Duration
	logger        zerolog.Logger
	now           func() time.Time
}

// NewChatService returns a ChatService. An empty systemPrompt selects
// DefaultSystemPrompt; a non-positive timeout leaves the provider call
// bounded only by ctx.
func NewChatService(
	provider ports.CompletionProvider,
	conversations ports.ConversationRepository,
	systemPrompt string,
	timeout time.Duration,
	logger zerolog.Logger,
) *ChatService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ChatService{
		provider:      provider,
		conversations: conversations,
		systemPrompt:  systemPrompt,
		timeout:       timeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Complete sends the turns to the provider behind the system prompt and
// appends the reply to the conversation when one is given. Nothing is
// written unless the provider answered; a storage failure after that is
// reported in the result rather than as an error.
func (s *ChatService) Complete(ctx context.Context, caller *domain.Principal, in ports.ChatInput) (*ports.ChatResult, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return nil, err
	}
	if err := validateTurns(in.Turns); err != nil {
		return nil, err
	}
	if in.ConversationID != "" {
		if _, err := s.conversations.FindOwned(ctx, caller.ID, in.ConversationID); err != nil {
			return nil, err
		}
	}

	reply, err := s.call(ctx, BuildCompletionRequest(s.systemPrompt, in.Turns))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.ID).Msg("completion failed")
		return nil, err
	}

	result := &ports.ChatResult{Message: reply}
	if in.ConversationID == "" {
		return result, nil
	}

	// The reply is already delivered; storing it must not depend on the
	// caller still waiting.
	m, err := newMessage(in.ConversationID, domain.MessageRoleAssistant, reply, nil, s.now())
	if err == nil {
		err = s.conversations.AppendMessage(context.WithoutCancel(ctx), caller.ID, m)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to store assistant reply")
		result.PersistErr = err
		return result, nil
	}
	result.MessageID = m.ID
	result.Persisted = true
	return result, nil
}

func (s *ChatService) call(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.ErrCompletionTimeout
		}
		if errors.Is(err, domain.ErrUpstream) {
			return "", err
		}
		return "", domain.NewUpstreamError(err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return reply, nil
}

func validateTurns(turns []domain.Turn) error {
	if len(turns) == 0 {
		return domain.NewValidationError("messages", "is required")
	}
	for i, t := range turns {
		if err := validateTurn(t, fmt.Sprintf("messages[%d].", i)); err != nil {
			return err
		}
	}
	return nil
}

// BuildCompletionRequest assembles the provider payload: the system prompt
// first, then one message per turn in order. A turn without images is plain
// text; a turn with images becomes one text part followed by one image part
// per reference.
func BuildCompletionRequest(systemPrompt string, turns []domain.Turn) domain.CompletionRequest {
	msgs := make([]domain.ProviderMessage, 0, len(turns)+1)
	msgs = append(msgs, domain.ProviderMessage{Role: domain.MessageRoleSystem, Text: systemPrompt})

	for _, t := range turns {
		if len(t.Images) == 0 {
			msgs = append(msgs, domain.ProviderMessage{Role: t.Role, Text: t.Text})
			continue
		}
		parts := make([]domain.ContentPart, 0, len(t.Images)+1)
		parts = append(parts, domain.ContentPart{Type: domain.ContentPartText, Text: t.Text})
		for _, img := range t.Images {
			parts = append(parts, domain.ContentPart{Type: domain.ContentPartImage, ImageURL: img})
		}
		msgs = append(msgs, domain.ProviderMessage{Role: t.Role, Parts: parts})
	}

	return domain.CompletionRequest{
		Messages:    msgs,
		MaxTokens:   CompletionMaxTokens,
		Temperature: CompletionTemperature,
	}
}
