package ports

import (
	"context"
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, passwordHash string) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindCredentialsByEmail looks an account up by normalized email and
	// returns its stored credential hash. It is the only read that exposes
	// the hash and is reserved for authentication.
	FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, string, error)
	// List returns every account annotated with its conversation count,
	// newest first.
	List(ctx context.Context) ([]domain.UserWithStats, error)
	Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
