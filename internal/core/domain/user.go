package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperadmin Role = "SUPERADMIN"
)

// Roles lists every valid role, lowest privilege first.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperadmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// ParseRole converts an upper- or lower-case role name into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Status is the closed set of account lifecycle states.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusActive, StatusInactive, StatusSuspended}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// ParseStatus converts an upper- or lower-case status name into a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// User is the account record as seen by everything outside the identity
// component. The credential hash is deliberately not part of it.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          Role       `json:"role"`
	Status        Status     `json:"status"`
	Specialty     *string    `json:"specialty"`
	LicenseNumber *string    `json:"license_number"`
	Hospital      *string    `json:"hospital"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at"`
}

// UserWithStats is a User annotated with the number of conversations it owns.
type UserWithStats struct {
	User
	ConversationCount int64 `json:"conversation_count"`
}

// Principal is the authenticated caller reconstructed from a session token.
type Principal struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      Role    `json:"role"`
	Status    Status  `json:"status"`
	Specialty *string `json:"specialty,omitempty"`
	Hospital  *string `json:"hospital,omitempty"`
}

// PrincipalOf builds the session view of a user.
func PrincipalOf(u *User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		Specialty: u.Specialty,
		Hospital:  u.Hospital,
	}
}

// NormalizeEmail is the canonical form used for uniqueness and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUserInput carries the fields accepted when an account is created.
// Role and Status are empty when the caller did not specify them.
type NewUserInput struct {
	Email         string
	Name          string
	Password      string
	Role          Role
	Status        Status
	Specialty     string
	LicenseNumber string
	Hospital      string
}

// UserPatch is a partial update. Only fields with Set are applied.
type UserPatch struct {
	Name          OptionalString
	Email         OptionalString
	Password      OptionalString
	Role          OptionalString
	Status        OptionalString
	Specialty     OptionalString
	LicenseNumber OptionalString
	Hospital      OptionalString
}

// Empty reports whether the patch touches no field at all.
func (p UserPatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Password.Set && !p.Role.Set &&
		!p.Status.Set && !p.Specialty.Set && !p.LicenseNumber.Set && !p.Hospital.Set
}

// TouchesProfile reports whether any self-service profile field is present.
func (p UserPatch) TouchesProfile() bool {
	return p.Name.Set || p.Specialty.Set || p.LicenseNumber.Set || p.Hospital.Set
}

// TouchesCredentials reports whether email, role or password is present.
func (p UserPatch) TouchesCredentials() bool {
	return p.Email.Set || p.Role.Set || p.Password.Set
}

// UserUpdate is the storage-level form of a validated patch. Nil pointers are
// left untouched; for the nullable profile fields a Set OptionalString with
// Null clears the value.
type UserUpdate struct {
	Name          *string
	Email         *string
	PasswordHash  *string
	Role          *Role
	Status        *Status
	Specialty     OptionalString
	LicenseNumber OptionalString
	Hospital      OptionalString
}

// UserFilter is a case-insensitive substring match over the searchable
// profile fields. An empty query matches everything.
type UserFilter struct {
	Query string
}

// Matches reports whether u satisfies the filter.
func (f UserFilter) Matches(u User) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	fields := []string{u.Name, u.Email}
	if u.Specialty != nil {
		fields = append(fields, *u.Specialty)
	}
	if u.Hospital != nil {
		fields = append(fields, *u.Hospital)
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
