package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

const maxTitleLength = 200

// ConversationService is the owner-scoped conversation store.
type ConversationService struct {
	repo   ports.ConversationRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewConversationService(repo ports.ConversationRepository, logger zerolog.Logger) *ConversationService {
	return &ConversationService{repo: repo, logger: logger, now: time.Now}
}

// CreateConversation starts an empty conversation. A blank title falls back
// to the default placeholder.
func (s *ConversationService) CreateConversation(ctx context.Context, caller *domain.Principal, title string) (*domain.Conversation, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return nil, err
	}
	title = domain.TitleOrDefault(title)
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, domain.NewValidationError("title", "must be at most 200 characters")
	}

	now := s.now().UTC()
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    caller.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("conversation_id", c.ID).Str("user_id", caller.ID).Msg("conversation created")
	return c, nil
}

func (s *ConversationService) ListConversations(ctx context.Context, caller *domain.Principal) ([]domain.ConversationSummary, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionReadOwnData}); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, caller.ID)
}

// GetConversation returns the conversation with its messages. A conversation
// owned by someone else is reported as ErrConversationNotFound.
func (s *ConversationService) GetConversation(ctx context.Context, caller *domain.Principal, id string) (*domain.ConversationDetail, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionReadOwnData}); err != nil {
		return nil, err
	}
	c, err := s.repo.FindOwned(ctx, caller.ID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.Messages(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return &domain.ConversationDetail{Conversation: *c, Messages: msgs}, nil
}

func (s *ConversationService) RenameConversation(ctx context.Context, caller *domain.Principal, id, title string) (*domain.Conversation, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return nil, domain.NewValidationError("title", "is required")
	case utf8.RuneCountInString(title) > maxTitleLength:
		return nil, domain.NewValidationError("title", "must be at most 200 characters")
	}

	n, err := s.repo.Rename(ctx, caller.ID, id, title, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrConversationNotFound
	}
	return s.repo.FindOwned(ctx, caller.ID, id)
}

func (s *ConversationService) DeleteConversation(ctx context.Context, caller *domain.Principal, id string) error {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, caller.ID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConversationNotFound
	}
	s.logger.Debug().Str("conversation_id", id).Str("user_id", caller.ID).Msg("conversation deleted")
	return nil
}

// AppendUserMessage stores the caller's turn before a completion is
// requested for it.
func (s *ConversationService) AppendUserMessage(ctx context.Context, caller *domain.Principal, id, text string, images []string) (*domain.Message, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return nil, err
	}
	if err := validateTurn(domain.Turn{Role: domain.MessageRoleUser, Text: text, Images: images}, ""); err != nil {
		return nil, err
	}

	m, err := newMessage(id, domain.MessageRoleUser, text, images, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendMessage(ctx, caller.ID, m); err != nil {
		return nil, err
	}
	return m, nil
}

// newMessage uses a time-ordered id so that messages sharing a timestamp
// still sort in insertion order.
func newMessage(conversationID string, role domain.MessageRole, text string, images []string, at time.Time) (*domain.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		ID:             id.String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        text,
		Images:         images,
		Timestamp:      at.UTC(),
	}, nil
}

// validateTurn checks one turn; field names in the returned
// ValidationError carry prefix.
func validateTurn(t domain.Turn, prefix string) error {
	ve := &domain.ValidationError{}
	switch t.Role {
	case domain.MessageRoleUser, domain.MessageRoleAssistant:
	case domain.MessageRoleSystem:
		ve.Add(prefix+"role", "system turns are not accepted")
	default:
		ve.Add(prefix+"role", "must be user or assistant")
	}
	if strings.TrimSpace(t.Text) == "" && len(t.Images) == 0 {
		ve.Add(prefix+"content", "is required")
	}
	for _, img := range t.Images {
		if strings.TrimSpace(img) == "" {
			ve.Add(prefix+"images", "must not contain empty references")
			break
		}
	}
	return ve.OrNil()
}
