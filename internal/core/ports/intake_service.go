package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

type IntakeService interface {
	CreateIntake(ctx context.Context, caller *domain.Principal, input domain.NewIntakeInput) (*domain.IntakeRecord, error)
	ListIntake(ctx context.Context, caller *domain.Principal) ([]domain.IntakeRecord, error)
}
