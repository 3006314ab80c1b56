package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// UserService is the user directory. Every method authorizes caller before
// touching storage.
type UserService interface {
	CreateUser(ctx context.Context, caller *domain.Principal, input domain.NewUserInput) (*domain.User, error)
	GetUser(ctx context.Context, caller *domain.Principal, id string) (*domain.UserWithStats, error)
	ListUsers(ctx context.Context, caller *domain.Principal, filter domain.UserFilter) ([]domain.UserWithStats, error)
	UpdateUser(ctx context.Context, caller *domain.Principal, id string, patch domain.UserPatch) (*domain.User, error)
	SetStatus(ctx context.Context, caller *domain.Principal, id string, status domain.Status) (*domain.User, error)
	DeleteUser(ctx context.Context, caller *domain.Principal, id string) error
}
