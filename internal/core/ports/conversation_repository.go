package ports

import (
	"context"
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// ConversationRepository persists conversations and their message logs.
// Every method that takes ownerID filters by it; a conversation owned by
// someone else behaves exactly like one that does not exist.
type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	// ListByOwner returns the owner's conversations by updated_at descending.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ConversationSummary, error)
	FindOwned(ctx context.Context, ownerID, id string) (*domain.Conversation, error)
	// Messages returns the log of a conversation in ascending timestamp order.
	Messages(ctx context.Context, conversationID string) ([]domain.Message, error)
	// Rename and Delete report the number of conversations affected.
	Rename(ctx context.Context, ownerID, id, title string, at time.Time) (int64, error)
	Delete(ctx context.Context, ownerID, id string) (int64, error)
	// AppendMessage stores m and moves the parent's updated_at to m.Timestamp.
	AppendMessage(ctx context.Context, ownerID string, m *domain.Message) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	// DeleteByOwner removes every conversation and message of the owner.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
