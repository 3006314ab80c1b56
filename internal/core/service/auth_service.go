package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// AuthService implements sign-in and stateless session verification.
type AuthService struct {
	users       ports.UserRepository
	revocations ports.RevocationStore
	jwtSecret   []byte
	tokenTTL    time.Duration

	// dummyHash is compared against when the account is unknown. It uses the
	// same cost as stored hashes so a missing email takes as long as a wrong
	// password.
	dummyHash []byte

	logger zerolog.Logger
	now    func() time.Time
}

// NewAuthService returns an AuthService. revocations may be nil, in which
// case sign-out and principal revocation are no-ops. bcryptCost must match
// the cost the user directory hashes passwords with.
func NewAuthService(
	users ports.UserRepository,
	revocations ports.RevocationStore,
	jwtSecret string,
	tokenTTL time.Duration,
	bcryptCost int,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("cardio-api-timing-equalizer"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generate dummy hash: %v", err))
	}
	return &AuthService{
		users:       users,
		revocations: revocations,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		dummyHash:   dummy,
		logger:      logger,
		now:         time.Now,
	}
}

// SignIn authenticates by case-insensitive email and password and mints a
// session token. Unknown email, missing hash and wrong password are all
// reported as ErrInvalidCredentials; ErrAccountNotActive is only returned
// once the password has matched.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, hash, err := s.users.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		s.logger.Info().Str("user_id", user.ID).Str("status", string(user.Status)).Msg("sign-in refused for inactive account")
		return nil, domain.ErrAccountNotActive
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	token, exp, err := s.issueToken(user, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("signed in")
	return &ports.Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Verify reconstructs the principal from a bearer token. A revocation store
// that cannot be reached is logged and the token accepted.
func (s *AuthService) Verify(ctx context.Context, token string) (*ports.SessionInfo, error) {
	info, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrInvalidSession
	}
	if s.revocations == nil {
		return info, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, info.TokenID, info.Principal.ID, info.IssuedAt)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", info.Principal.ID).Msg("revocation check failed, accepting token")
		return info, nil
	}
	if revoked {
		return nil, domain.ErrInvalidSession
	}
	return info, nil
}

// SignOut revokes the presented token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, session *ports.SessionInfo) error {
	if session == nil {
		return domain.ErrUnauthenticated
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if s.revocations == nil || ttl <= 0 {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, session.TokenID, ttl); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", session.Principal.ID).Msg("signed out")
	return nil
}

// RevokeAll invalidates every token issued to userID so far.
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	if s.revocations == nil {
		return nil
	}
	return s.revocations.RevokePrincipal(ctx, userID, s.now().UTC(), s.tokenTTL)
}
