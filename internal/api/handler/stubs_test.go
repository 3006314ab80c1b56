package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/api/middleware"
	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

type request struct {
	method    string
	path      string
	body      string
	principal *domain.Principal
	session   *ports.SessionInfo
	params    map[string]string
}

func newContext(t *testing.T, r request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if r.principal != nil {
		c.Set(middleware.ContextKeyPrincipal, r.principal)
	}
	if r.session != nil {
		c.Set(middleware.ContextKeySession, r.session)
	}
	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for name, value := range r.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if _, ok := ve.Fields[field]; !ok {
		t.Fatalf("expected field %q in %v", field, ve.Fields)
	}
}

func assertHTTPStatus(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d, got %v", code, err)
	}
}

func activeUser(id string, role domain.Role) *domain.Principal {
	return &domain.Principal{ID: id, Email: id + "@clinic.test", Name: id, Role: role, Status: domain.StatusActive}
}

const (
	uuidA = "0b6f3c8e-2f4a-4c1e-9a57-7d2b8f9e1a01"
	uuidB = "5d0c1e2a-7b3f-4e6d-8a9c-1f2e3d4c5b6a"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	signInFn   func(ctx context.Context, email, password string) (*ports.Session, error)
	signedOut  *ports.SessionInfo
	signOutErr error
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	if s.signInFn == nil {
		return nil, errNotStubbed
	}
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) Verify(context.Context, string) (*ports.SessionInfo, error) {
	return nil, errNotStubbed
}

func (s *stubAuthService) SignOut(_ context.Context, session *ports.SessionInfo) error {
	s.signedOut = session
	return s.signOutErr
}

type stubUserService struct {
	createFn func(caller *domain.Principal, in domain.NewUserInput) (*domain.User, error)
	getFn    func(caller *domain.Principal, id string) (*domain.UserWithStats, error)
	listFn   func(caller *domain.Principal, f domain.UserFilter) ([]domain.UserWithStats, error)
	updateFn func(caller *domain.Principal, id string, p domain.UserPatch) (*domain.User, error)
	statusFn func(caller *domain.Principal, id string, st domain.Status) (*domain.User, error)
	deleteFn func(caller *domain.Principal, id string) error
}

func (s *stubUserService) CreateUser(_ context.Context, caller *domain.Principal, in domain.NewUserInput) (*domain.User, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(caller, in)
}

func (s *stubUserService) GetUser(_ context.Context, caller *domain.Principal, id string) (*domain.UserWithStats, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(caller, id)
}

func (s *stubUserService) ListUsers(_ context.Context, caller *domain.Principal, f domain.UserFilter) ([]domain.UserWithStats, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(caller, f)
}

func (s *stubUserService) UpdateUser(_ context.Context, caller *domain.Principal, id string, p domain.UserPatch) (*domain.User, error) {
	if s.updateFn == nil {
		return nil, errNotStubbed
	}
	return s.updateFn(caller, id, p)
}

func (s *stubUserService) SetStatus(_ context.Context, caller *domain.Principal, id string, st domain.Status) (*domain.User, error) {
	if s.statusFn == nil {
		return nil, errNotStubbed
	}
	return s.statusFn(caller, id, st)
}

func (s *stubUserService) DeleteUser(_ context.Context, caller *domain.Principal, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(caller, id)
}

type stubConversationService struct {
	createFn func(caller *domain.Principal, title string) (*domain.Conversation, error)
	listFn   func(caller *domain.Principal) ([]domain.ConversationSummary, error)
	getFn    func(caller *domain.Principal, id string) (*domain.ConversationDetail, error)
	renameFn func(caller *domain.Principal, id, title string) (*domain.Conversation, error)
	deleteFn func(caller *domain.Principal, id string) error
	appendFn func(caller *domain.Principal, id, text string, images []string) (*domain.Message, error)
}

func (s *stubConversationService) CreateConversation(_ context.Context, caller *domain.Principal, title string) (*domain.Conversation, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(caller, title)
}

func (s *stubConversationService) ListConversations(_ context.Context, caller *domain.Principal) ([]domain.ConversationSummary, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(caller)
}

func (s *stubConversationService) GetConversation(_ context.Context, caller *domain.Principal, id string) (*domain.ConversationDetail, error) {
	if s.getFn == nil {
		return nil, errNotStubbed
	}
	return s.getFn(caller, id)
}

func (s *stubConversationService) RenameConversation(_ context.Context, caller *domain.Principal, id, title string) (*domain.Conversation, error) {
	if s.renameFn == nil {
		return nil, errNotStubbed
	}
	return s.renameFn(caller, id, title)
}

func (s *stubConversationService) DeleteConversation(_ context.Context, caller *domain.Principal, id string) error {
	if s.deleteFn == nil {
		return errNotStubbed
	}
	return s.deleteFn(caller, id)
}

func (s *stubConversationService) AppendUserMessage(_ context.Context, caller *domain.Principal, id, text string, images []string) (*domain.Message, error) {
	if s.appendFn == nil {
		return nil, errNotStubbed
	}
	return s.appendFn(caller, id, text, images)
}

type stubChatService struct {
	completeFn func(caller *domain.Principal, in ports.ChatInput) (*ports.ChatResult, error)
}

func (s *stubChatService) Complete(_ context.Context, caller *domain.Principal, in ports.ChatInput) (*ports.ChatResult, error) {
	if s.completeFn == nil {
		return nil, errNotStubbed
	}
	return s.completeFn(caller, in)
}

type stubIntakeService struct {
	createFn func(caller *domain.Principal, in domain.NewIntakeInput) (*domain.IntakeRecord, error)
	listFn   func(caller *domain.Principal) ([]domain.IntakeRecord, error)
}

func (s *stubIntakeService) CreateIntake(_ context.Context, caller *domain.Principal, in domain.NewIntakeInput) (*domain.IntakeRecord, error) {
	if s.createFn == nil {
		return nil, errNotStubbed
	}
	return s.createFn(caller, in)
}

func (s *stubIntakeService) ListIntake(_ context.Context, caller *domain.Principal) ([]domain.IntakeRecord, error) {
	if s.listFn == nil {
		return nil, errNotStubbed
	}
	return s.listFn(caller)
}

var (
	_ ports.AuthService         = (*stubAuthService)(nil)
	_ ports.UserService         = (*stubUserService)(nil)
	_ ports.ConversationService = (*stubConversationService)(nil)
	_ ports.ChatService         = (*stubChatService)(nil)
	_ ports.IntakeService       = (*stubIntakeService)(nil)
)
