package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextKeyPrincipal = "principal"
	ContextKeySession   = "session"
)

// Auth verifies the bearer session token and stores the principal and the
// session in the echo context. Verification covers signature, expiry and
// revocation.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			session, err := auth.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			c.Set(ContextKeySession, session)
			c.Set(ContextKeyPrincipal, session.Principal)

			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(ContextKeyPrincipal).(*domain.Principal)
	return p
}

// SessionFrom returns the verified session stored by Auth, or nil.
func SessionFrom(c echo.Context) *ports.SessionInfo {
	s, _ := c.Get(ContextKeySession).(*ports.SessionInfo)
	return s
}
