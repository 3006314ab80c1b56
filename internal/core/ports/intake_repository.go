package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// IntakeRepository persists intake records. There is no update path.
type IntakeRepository interface {
	Create(ctx context.Context, r *domain.IntakeRecord) error
	// ListBySubmitter returns the records filed by userID, newest first.
	ListBySubmitter(ctx context.Context, userID string) ([]domain.IntakeRecord, error)
	DeleteBySubmitter(ctx context.Context, userID string) error
}
