package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users    map[string]*domain.User
	hashes   map[string]string
	counts   map[string]int64
	touchErr error
	touched  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:  make(map[string]*domain.User),
		hashes: make(map[string]string),
		counts: make(map[string]int64),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User, hash string) error {
	for _, existing := range r.users {
		if existing.Email == domain.NormalizeEmail(u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = cloneUser(u)
	r.hashes[u.ID] = hash
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindCredentialsByEmail(_ context.Context, email string) (*domain.User, string, error) {
	for _, u := range r.users {
		if u.Email == domain.NormalizeEmail(email) {
			return cloneUser(u), r.hashes[u.ID], nil
		}
	}
	return nil, "", domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.UserWithStats, error) {
	out := make([]domain.UserWithStats, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, domain.UserWithStats{User: *cloneUser(u), ConversationCount: r.counts[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		r.hashes[id] = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	if upd.Specialty.Set {
		u.Specialty = upd.Specialty.Ptr()
	}
	if upd.LicenseNumber.Set {
		u.LicenseNumber = upd.LicenseNumber.Ptr()
	}
	if upd.Hospital.Set {
		u.Hospital = upd.Hospital.Ptr()
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	r.touched++
	u.LastLoginAt = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	delete(r.hashes, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type stubConversationRepo struct {
	mu            sync.Mutex
	convs         map[string]*domain.Conversation
	msgs          map[string][]domain.Message
	appendErr     error
	deletedOwners []string
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{
		convs: make(map[string]*domain.Conversation),
		msgs:  make(map[string][]domain.Message),
	}
}

func (r *stubConversationRepo) Create(_ context.Context, c *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.convs[c.ID] = &clone
	return nil
}

func (r *stubConversationRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ConversationSummary{}
	for _, c := range r.convs {
		if c.UserID == ownerID {
			out = append(out, domain.ConversationSummary{Conversation: *c, MessageCount: int64(len(r.msgs[c.ID]))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *stubConversationRepo) FindOwned(_ context.Context, ownerID, id string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok || c.UserID != ownerID {
		return nil, domain.ErrConversationNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubConversationRepo) Messages(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Message(nil), r.msgs[conversationID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *stubConversationRepo) Rename(_ context.Context, ownerID, id, title string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok || c.UserID != ownerID {
		return 0, nil
	}
	c.Title = title
	c.UpdatedAt = at
	return 1, nil
}

func (r *stubConversationRepo) Delete(_ context.Context, ownerID, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok || c.UserID != ownerID {
		return 0, nil
	}
	delete(r.convs, id)
	delete(r.msgs, id)
	return 1, nil
}

func (r *stubConversationRepo) AppendMessage(_ context.Context, ownerID string, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[m.ConversationID]
	if !ok || c.UserID != ownerID {
		return domain.ErrConversationNotFound
	}
	if r.appendErr != nil {
		return r.appendErr
	}
	r.msgs[m.ConversationID] = append(r.msgs[m.ConversationID], *m)
	c.UpdatedAt = m.Timestamp
	return nil
}

func (r *stubConversationRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.convs {
		if c.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *stubConversationRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedOwners = append(r.deletedOwners, ownerID)
	for id, c := range r.convs {
		if c.UserID == ownerID {
			delete(r.convs, id)
			delete(r.msgs, id)
		}
	}
	return nil
}

type stubIntakeRepo struct {
	records       []domain.IntakeRecord
	createErr     error
	deletedOwners []string
}

func (r *stubIntakeRepo) Create(_ context.Context, rec *domain.IntakeRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubIntakeRepo) ListBySubmitter(_ context.Context, userID string) ([]domain.IntakeRecord, error) {
	out := []domain.IntakeRecord{}
	for _, rec := range r.records {
		if rec.SubmittingUserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubIntakeRepo) DeleteBySubmitter(_ context.Context, userID string) error {
	r.deletedOwners = append(r.deletedOwners, userID)
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.SubmittingUserID != userID {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubRevocations struct {
	tokens     map[string]time.Duration
	watermarks map[string]time.Time
	err        error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{tokens: make(map[string]time.Duration), watermarks: make(map[string]time.Time)}
}

func (s *stubRevocations) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.tokens[tokenID] = ttl
	return nil
}

func (s *stubRevocations) RevokePrincipal(_ context.Context, userID string, at time.Time, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.watermarks[userID] = at
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, tokenID, userID string, issuedAt time.Time) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.tokens[tokenID]; ok {
		return true, nil
	}
	if wm, ok := s.watermarks[userID]; ok && issuedAt.Unix() <= wm.Unix() {
		return true, nil
	}
	return false, nil
}

type stubRevoker struct {
	revoked []string
}

func (s *stubRevoker) RevokeAll(_ context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	// block makes Complete wait for ctx to be done.
	block bool
	calls int
	last  domain.CompletionRequest
}

func (p *stubProvider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	p.mu.Lock()
	p.calls++
	p.last = req
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.reply, p.err
}

var (
	_ ports.UserRepository         = (*stubUserRepo)(nil)
	_ ports.ConversationRepository = (*stubConversationRepo)(nil)
	_ ports.IntakeRepository       = (*stubIntakeRepo)(nil)
	_ ports.RevocationStore        = (*stubRevocations)(nil)
	_ ports.CompletionProvider     = (*stubProvider)(nil)
	_ SessionRevoker               = (*stubRevoker)(nil)
)

func activePrincipal(id string, role domain.Role) *domain.Principal {
	return &domain.Principal{ID: id, Role: role, Status: domain.StatusActive, Name: id, Email: id + "@x.com"}
}
