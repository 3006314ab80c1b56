package domain

import "fmt"

// Action names an operation the guard can decide on.
type Action string

const (
	ActionSignIn            Action = "session:create"
	ActionReadOwnData       Action = "own:read"
	ActionWriteOwnData      Action = "own:write"
	ActionListUsers         Action = "users:read"
	ActionCreateUser        Action = "users:create"
	ActionCreateSuperadmin  Action = "users:create-superadmin"
	ActionUpdateProfile     Action = "users:update-profile"
	ActionSetStatus         Action = "users:set-status"
	ActionUpdateCredentials Action = "users:update-credentials"
	ActionDeleteUser        Action = "users:delete"
)

// Actions lists every action known to the policy table.
var Actions = []Action{
	ActionSignIn, ActionReadOwnData, ActionWriteOwnData, ActionListUsers,
	ActionCreateUser, ActionCreateSuperadmin, ActionUpdateProfile,
	ActionSetStatus, ActionUpdateCredentials, ActionDeleteUser,
}

// AccessRequest is the input of Authorize. TargetID and TargetRole describe
// the account an administrative action is aimed at and are ignored by
// actions that do not target an account.
type AccessRequest struct {
	Action     Action
	TargetID   string
	TargetRole Role
}

// Decision is the guard's verdict.
type Decision struct {
	Allowed         bool
	Unauthenticated bool
	Reason          string
}

// Err converts a denial into the matching taxonomy error, nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Unauthenticated:
		return ErrUnauthenticated
	default:
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
}

type rule uint8

const (
	deny rule = iota
	allow
	// selfOnly allows the action only on the caller's own account.
	selfOnly
	// userTargetsOnly allows the action on USER accounts other than the caller.
	userTargetsOnly
)

// policy is the role matrix. A missing role entry means deny.
var policy = map[Action]map[Role]rule{
	ActionSignIn:            {RoleUser: allow, RoleAdmin: allow, RoleSuperadmin: allow},
	ActionReadOwnData:       {RoleUser: allow, RoleAdmin: allow, RoleSuperadmin: allow},
	ActionWriteOwnData:      {RoleUser: allow, RoleAdmin: allow, RoleSuperadmin: allow},
	ActionListUsers:         {RoleAdmin: allow, RoleSuperadmin: allow},
	ActionCreateUser:        {RoleAdmin: allow, RoleSuperadmin: allow},
	ActionCreateSuperadmin:  {RoleSuperadmin: allow},
	ActionUpdateProfile:     {RoleAdmin: selfOnly, RoleSuperadmin: allow},
	ActionSetStatus:         {RoleAdmin: userTargetsOnly, RoleSuperadmin: allow},
	ActionUpdateCredentials: {RoleSuperadmin: allow},
	ActionDeleteUser:        {RoleSuperadmin: allow},
}

// Authorize decides whether p may perform req. It is a pure function of the
// principal's id, role and status and the request; it performs no I/O.
// A nil principal is unauthenticated and may only sign in.
func Authorize(p *Principal, req AccessRequest) Decision {
	if p == nil {
		if req.Action == ActionSignIn {
			return Decision{Allowed: true}
		}
		return Decision{Unauthenticated: true, Reason: "authentication required"}
	}

	roles, known := policy[req.Action]
	if !known {
		return Decision{Reason: "unknown action"}
	}
	if p.Status != StatusActive {
		return Decision{Reason: "account is not active"}
	}

	switch roles[p.Role] {
	case allow:
		return Decision{Allowed: true}
	case selfOnly:
		if req.TargetID != "" && req.TargetID == p.ID {
			return Decision{Allowed: true}
		}
		return Decision{Reason: "only allowed on your own account"}
	case userTargetsOnly:
		if req.TargetID != p.ID && req.TargetRole == RoleUser {
			return Decision{Allowed: true}
		}
		return Decision{Reason: "only allowed on USER accounts"}
	default:
		return Decision{Reason: fmt.Sprintf("role %s may not perform %s", p.Role, req.Action)}
	}
}

// Require is Authorize followed by Err, for call sites that only need the error.
func Require(p *Principal, req AccessRequest) error {
	return Authorize(p, req).Err()
}
