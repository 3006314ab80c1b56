package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error categories. Concrete errors below wrap or match one of these so the
// HTTP boundary can map them without knowing every case.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("completion provider failure")
	ErrPersistence     = errors.New("storage failure")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrAccountNotActive   = fmt.Errorf("account is not active: %w", ErrUnauthenticated)
	ErrInvalidSession     = fmt.Errorf("invalid or expired session: %w", ErrUnauthenticated)

	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrConversationNotFound = fmt.Errorf("conversation %w", ErrNotFound)

	ErrDuplicateEmail            = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrSelfDeletionForbidden     = fmt.Errorf("cannot delete your own account: %w", ErrConflict)
	ErrSelfModificationForbidden = fmt.Errorf("cannot change your own role or status: %w", ErrConflict)
	ErrSuperadminExists          = fmt.Errorf("a superadmin already exists: %w", ErrConflict)

	ErrEmptyCompletion   = fmt.Errorf("provider returned no content: %w", ErrUpstream)
	ErrCompletionTimeout = fmt.Errorf("provider did not answer in time: %w", ErrUpstream)
)

// ValidationError carries per-field messages for user-correctable input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records another field message and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// OrNil returns nil when no field was recorded, so callers can accumulate
// problems and return the result unconditionally.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+" "+e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PersistenceError wraps a storage engine failure.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err for operation op.
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// UpstreamError wraps a completion provider failure.
type UpstreamError struct {
	Err error
}

// NewUpstreamError wraps a provider error.
func NewUpstreamError(err error) error {
	return &UpstreamError{Err: err}
}

func (e *UpstreamError) Error() string { return "completion provider: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
