package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// RequireAction rejects the request early when the principal may not
// perform action at all. Target-dependent rules (own account, USER targets)
// are decided again by the services once the target is known.
func RequireAction(action domain.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := domain.Require(PrincipalFrom(c), domain.AccessRequest{Action: action}); err != nil {
				return err
			}
			return next(c)
		}
	}
}
