package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/api/metrics"
	"github.com/cardioassist/cardio-api/internal/api/middleware"
	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// SessionHandler handles sign-in, the current session and sign-out.
type SessionHandler struct {
	authService ports.AuthService
}

func NewSessionHandler(authService ports.AuthService) *SessionHandler {
	return &SessionHandler{authService: authService}
}

// Create authenticates with email and password and issues a session token.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/session [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.SignInAttemptsTotal.WithLabelValues(signInResult(err)).Inc()
		return err
	}
	metrics.SignInAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
	})
}

func signInResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountNotActive):
		return "not_active"
	default:
		return "error"
	}
}

// Get returns the principal of the presented session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  currentSessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	resp := currentSessionResponse{User: p}
	if s := middleware.SessionFrom(c); s != nil {
		resp.ExpiresAt = s.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete revokes the presented session token.
//
// @Summary      Sign out
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/session [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if err := h.authService.SignOut(c.Request().Context(), session); err != nil {
		return err
	}
	metrics.SignOutsTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
