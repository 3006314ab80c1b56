package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// ConversationService scopes every operation to the caller's own
// conversations.
type ConversationService interface {
	CreateConversation(ctx context.Context, caller *domain.Principal, title string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, caller *domain.Principal) ([]domain.ConversationSummary, error)
	GetConversation(ctx context.Context, caller *domain.Principal, id string) (*domain.ConversationDetail, error)
	RenameConversation(ctx context.Context, caller *domain.Principal, id, title string) (*domain.Conversation, error)
	DeleteConversation(ctx context.Context, caller *domain.Principal, id string) error
	AppendUserMessage(ctx context.Context, caller *domain.Principal, id, text string, images []string) (*domain.Message, error)
}
