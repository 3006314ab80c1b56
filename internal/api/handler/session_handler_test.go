package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

func TestSessionHandler_Create_Success(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := &stubAuthService{
		signInFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			if email != "ana@clinic.test" || password != "Str0ng!" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.Session{
				Token:     "tok-123",
				ExpiresAt: expires,
				User:      &domain.User{ID: uuidA, Email: email, Role: domain.RoleUser, Status: domain.StatusActive},
			}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newContext(t, request{method: http.MethodPost, path: "/v1/session", body: `{"email":"ana@clinic.test","password":"Str0ng!"}`})
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	decode(t, rec, &resp)
	if resp["token"] != "tok-123" {
		t.Errorf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != uuidA || user["role"] != "USER" {
		t.Fatalf("unexpected user payload: %v", resp["user"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("credential hash must never be serialized")
	}
}

func TestSessionHandler_Create_MissingPassword(t *testing.T) {
	h := NewSessionHandler(&stubAuthService{})

	c, _ := newContext(t, request{method: http.MethodPost, path: "/v1/session", body: `{"email":"ana@clinic.test"}`})
	assertValidationField(t, h.Create(c), "password")
}

func TestSessionHandler_Create_InvalidPayload(t *testing.T) {
	h := NewSessionHandler(&stubAuthService{})

	c, _ := newContext(t, request{method: http.MethodPost, path: "/v1/session", body: `not-json`})
	assertHTTPStatus(t, h.Create(c), http.StatusBadRequest)
}

func TestSessionHandler_Create_PassesAuthErrorsThrough(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrAccountNotActive} {
		stub := &stubAuthService{signInFn: func(context.Context, string, string) (*ports.Session, error) {
			return nil, want
		}}
		h := NewSessionHandler(stub)

		c, _ := newContext(t, request{method: http.MethodPost, path: "/v1/session", body: `{"email":"a@b.c","password":"x"}`})
		if err := h.Create(c); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	}
}

func TestSessionHandler_Get_ReturnsPrincipal(t *testing.T) {
	h := NewSessionHandler(&stubAuthService{})
	p := activeUser(uuidA, domain.RoleAdmin)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	c, rec := newContext(t, request{
		method:    http.MethodGet,
		path:      "/v1/session",
		principal: p,
		session:   &ports.SessionInfo{Principal: p, TokenID: "jti", ExpiresAt: expires},
	})
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		User      domain.Principal `json:"user"`
		ExpiresAt time.Time        `json:"expires_at"`
	}
	decode(t, rec, &resp)
	if resp.User.ID != uuidA || resp.User.Role != domain.RoleAdmin {
		t.Errorf("unexpected principal: %+v", resp.User)
	}
	if !resp.ExpiresAt.Equal(expires) {
		t.Errorf("expires_at = %v, want %v", resp.ExpiresAt, expires)
	}
}

func TestSessionHandler_Get_WithoutPrincipal(t *testing.T) {
	h := NewSessionHandler(&stubAuthService{})
	c, _ := newContext(t, request{method: http.MethodGet, path: "/v1/session"})
	assertHTTPStatus(t, h.Get(c), http.StatusUnauthorized)
}

func TestSessionHandler_Delete_RevokesPresentedSession(t *testing.T) {
	stub := &stubAuthService{}
	h := NewSessionHandler(stub)
	p := activeUser(uuidA, domain.RoleUser)
	session := &ports.SessionInfo{Principal: p, TokenID: "jti-9"}

	c, rec := newContext(t, request{method: http.MethodDelete, path: "/v1/session", principal: p, session: session})
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.signedOut != session {
		t.Fatalf("expected the presented session to be revoked, got %+v", stub.signedOut)
	}
}

func TestSessionHandler_Delete_StoreFailure(t *testing.T) {
	boom := domain.NewPersistenceError("revoke", errors.New("redis down"))
	h := NewSessionHandler(&stubAuthService{signOutErr: boom})
	p := activeUser(uuidA, domain.RoleUser)

	c, _ := newContext(t, request{method: http.MethodDelete, path: "/v1/session", principal: p, session: &ports.SessionInfo{Principal: p}})
	if err := h.Delete(c); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
