package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// SessionRevoker invalidates every outstanding session of a principal.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

// UserService is the user directory.
type UserService struct {
	users         ports.UserRepository
	conversations ports.ConversationRepository
	intake        ports.IntakeRepository
	sessions      SessionRevoker
	bcryptCost    int
	logger        zerolog.Logger
	now           func() time.Time
}

// NewUserService returns a UserService. sessions may be nil.
func NewUserService(
	users ports.UserRepository,
	conversations ports.ConversationRepository,
	intake ports.IntakeRepository,
	sessions SessionRevoker,
	bcryptCost int,
	logger zerolog.Logger,
) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:         users,
		conversations: conversations,
		intake:        intake,
		sessions:      sessions,
		bcryptCost:    bcryptCost,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateUser creates an account. Role defaults to USER and status to
// ACTIVE; only a SUPERADMIN may create an account with any other role.
func (s *UserService) CreateUser(ctx context.Context, caller *domain.Principal, in domain.NewUserInput) (*domain.User, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionCreateUser}); err != nil {
		return nil, err
	}

	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleUser {
		if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionCreateSuperadmin, TargetRole: user.Role}); err != nil {
			return nil, err
		}
	}

	if err := s.store(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("created_by", caller.ID).Msg("user created")
	return user, nil
}

// Bootstrap creates the first SUPERADMIN. It is an operator action and is
// not subject to the guard; it refuses once any SUPERADMIN exists. The count
// and the insert are not atomic, so two concurrent runs can both succeed.
// It is only reachable from the CLI.
func (s *UserService) Bootstrap(ctx context.Context, in domain.NewUserInput) (*domain.User, error) {
	n, err := s.users.CountByRole(ctx, domain.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrSuperadminExists
	}

	in.Role = domain.RoleSuperadmin
	in.Status = domain.StatusActive
	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("superadmin bootstrapped")
	return user, nil
}

func (s *UserService) newUser(in domain.NewUserInput) (*domain.User, error) {
	ve := &domain.ValidationError{}
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		ve.Add("email", "is required")
	} else if !strings.Contains(email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		ve.Add("name", "is required")
	}
	if in.Password == "" {
		ve.Add("password", "is required")
	} else if len(in.Password) > 72 {
		ve.Add("password", "must be at most 72 bytes")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		ve.Add("role", "must be one of USER, ADMIN, SUPERADMIN")
	}
	status := in.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		ve.Add("status", "must be one of ACTIVE, INACTIVE, SUSPENDED")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return &domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          name,
		Role:          role,
		Status:        status,
		Specialty:     optional(in.Specialty),
		LicenseNumber: optional(in.LicenseNumber),
		Hospital:      optional(in.Hospital),
		CreatedAt:     s.now().UTC(),
	}, nil
}

func (s *UserService) store(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, user, string(hash))
}

// GetUser returns one account with its conversation count.
func (s *UserService) GetUser(ctx context.Context, caller *domain.Principal, id string) (*domain.UserWithStats, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionListUsers}); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.conversations.CountByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.UserWithStats{User: *user, ConversationCount: n}, nil
}

// ListUsers returns every account matching filter.
func (s *UserService) ListUsers(ctx context.Context, caller *domain.Principal, filter domain.UserFilter) ([]domain.UserWithStats, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionListUsers}); err != nil {
		return nil, err
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserWithStats, 0, len(all))
	for _, u := range all {
		if filter.Matches(u.User) {
			out = append(out, u)
		}
	}
	return out, nil
}

// UpdateUser applies a partial update. Each group of fields present in the
// patch is authorized separately: profile fields, status, and credentials
// (email, role, password).
func (s *UserService) UpdateUser(ctx context.Context, caller *domain.Principal, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionListUsers}); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, domain.NewValidationError("body", "must contain at least one field")
	}

	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := domain.AccessRequest{TargetID: target.ID, TargetRole: target.Role}
	if patch.TouchesProfile() {
		req.Action = domain.ActionUpdateProfile
		if err := domain.Require(caller, req); err != nil {
			return nil, err
		}
	}
	if patch.Status.Set {
		req.Action = domain.ActionSetStatus
		if err := domain.Require(caller, req); err != nil {
			return nil, err
		}
	}
	if patch.TouchesCredentials() {
		req.Action = domain.ActionUpdateCredentials
		if err := domain.Require(caller, req); err != nil {
			return nil, err
		}
	}

	update, err := s.buildUpdate(patch)
	if err != nil {
		return nil, err
	}
	roleChanged := update.Role != nil && *update.Role != target.Role
	statusChanged := update.Status != nil && *update.Status != target.Status
	if target.ID == caller.ID && (roleChanged || statusChanged) {
		return nil, domain.ErrSelfModificationForbidden
	}

	updated, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	emailChanged := update.Email != nil && *update.Email != target.Email
	if roleChanged || statusChanged || emailChanged || update.PasswordHash != nil {
		s.revokeSessions(ctx, id)
	}
	s.logger.Info().Str("user_id", id).Str("updated_by", caller.ID).Msg("user updated")
	return updated, nil
}

func (s *UserService) buildUpdate(p domain.UserPatch) (domain.UserUpdate, error) {
	ve := &domain.ValidationError{}
	upd := domain.UserUpdate{
		Specialty:     p.Specialty,
		LicenseNumber: p.LicenseNumber,
		Hospital:      p.Hospital,
	}

	if p.Name.Set {
		if name := strings.TrimSpace(p.Name.Value); p.Name.Null || name == "" {
			ve.Add("name", "cannot be empty")
		} else {
			upd.Name = &name
		}
	}
	if p.Email.Set {
		if email := domain.NormalizeEmail(p.Email.Value); p.Email.Null || !strings.Contains(email, "@") {
			ve.Add("email", "must be a valid email address")
		} else {
			upd.Email = &email
		}
	}
	if p.Role.Set {
		if r, ok := domain.ParseRole(p.Role.Value); ok {
			upd.Role = &r
		} else {
			ve.Add("role", "must be one of USER, ADMIN, SUPERADMIN")
		}
	}
	if p.Status.Set {
		if st, ok := domain.ParseStatus(p.Status.Value); ok {
			upd.Status = &st
		} else {
			ve.Add("status", "must be one of ACTIVE, INACTIVE, SUSPENDED")
		}
	}
	if p.Password.Set {
		switch {
		case p.Password.Blank():
			ve.Add("password", "cannot be empty")
		case len(p.Password.Value) > 72:
			ve.Add("password", "must be at most 72 bytes")
		}
	}
	if err := ve.OrNil(); err != nil {
		return domain.UserUpdate{}, err
	}

	if p.Password.Set {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password.Value), s.bcryptCost)
		if err != nil {
			return domain.UserUpdate{}, err
		}
		h := string(hash)
		upd.PasswordHash = &h
	}
	return upd, nil
}

// SetStatus suspends or reactivates an account.
func (s *UserService) SetStatus(ctx context.Context, caller *domain.Principal, id string, status domain.Status) (*domain.User, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionListUsers}); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of ACTIVE, INACTIVE, SUSPENDED")
	}

	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionSetStatus, TargetID: target.ID, TargetRole: target.Role}); err != nil {
		return nil, err
	}
	if target.ID == caller.ID {
		return nil, domain.ErrSelfModificationForbidden
	}
	if target.Status == status {
		return target, nil
	}

	updated, err := s.users.Update(ctx, id, domain.UserUpdate{Status: &status})
	if err != nil {
		return nil, err
	}
	s.revokeSessions(ctx, id)
	s.logger.Info().Str("user_id", id).Str("status", string(status)).Str("updated_by", caller.ID).Msg("user status changed")
	return updated, nil
}

// DeleteUser removes an account and everything it owns. Children go first so
// a failed cascade can be retried without leaving orphans.
func (s *UserService) DeleteUser(ctx context.Context, caller *domain.Principal, id string) error {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionDeleteUser, TargetID: id}); err != nil {
		return err
	}
	if id == caller.ID {
		return domain.ErrSelfDeletionForbidden
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.conversations.DeleteByOwner(ctx, id); err != nil {
		return err
	}
	if err := s.intake.DeleteBySubmitter(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	s.revokeSessions(ctx, id)
	s.logger.Info().Str("user_id", id).Str("deleted_by", caller.ID).Msg("user deleted")
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke sessions")
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
