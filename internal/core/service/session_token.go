package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

const tokenIssuer = "cardio-api"

var errMalformedClaims = errors.New("session token is missing required claims")

// sessionClaims is the signed claim set. Only identity and the profile
// fields needed for authorization go in; never the credential hash.
type sessionClaims struct {
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      domain.Role   `json:"role"`
	Status    domain.Status `json:"status"`
	Specialty *string       `json:"specialty,omitempty"`
	Hospital  *string       `json:"hospital,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(u *domain.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.tokenTTL)
	claims := sessionClaims{
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		Specialty: u.Specialty,
		Hospital:  u.Hospital,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (s *AuthService) parseToken(raw string) (*ports.SessionInfo, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil ||
		!claims.Role.Valid() || !claims.Status.Valid() {
		return nil, errMalformedClaims
	}

	return &ports.SessionInfo{
		Principal: &domain.Principal{
			ID:        claims.Subject,
			Email:     claims.Email,
			Name:      claims.Name,
			Role:      claims.Role,
			Status:    claims.Status,
			Specialty: claims.Specialty,
			Hospital:  claims.Hospital,
		},
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
