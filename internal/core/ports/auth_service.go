package ports

import (
	"context"
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// SessionInfo is a verified session token.
type SessionInfo struct {
	Principal *domain.Principal
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Verify checks signature, expiry and revocation of a bearer token.
	Verify(ctx context.Context, token string) (*SessionInfo, error)
	SignOut(ctx context.Context, session *SessionInfo) error
}
