package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// ChatInput is one completion request. An empty ConversationID is an
// ephemeral exchange whose reply is not stored.
type ChatInput struct {
	ConversationID string
	Turns          []domain.Turn
}

// ChatResult carries the reply. Persisted is false when no conversation was
// given or when storing the reply failed; PersistErr holds that failure.
type ChatResult struct {
	Message    string
	MessageID  string
	Persisted  bool
	PersistErr error
}

type ChatService interface {
	Complete(ctx context.Context, caller *domain.Principal, input ChatInput) (*ChatResult, error)
}
