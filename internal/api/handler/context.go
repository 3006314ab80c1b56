package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/api/middleware"
	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware and
// fails fast when it is absent (the route was mounted without Auth).
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// pathID returns the named path parameter after checking it is a UUID, so a
// malformed id is a 400 and only a well-formed unknown id reaches storage.
func pathID(c echo.Context, name string) (string, error) {
	return parseID(name, c.Param(name))
}

func parseID(field, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError(field, "must be a valid UUID")
	}
	return id.String(), nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
