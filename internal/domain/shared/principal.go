package shared

import "github.com/google/uuid"

// Role is the coarse permission level carried in access tokens
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// Principal identifies the caller of an application service.
// Handlers build it from the verified token and pass it explicitly.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// NewPrincipal creates a principal
func NewPrincipal(userID uuid.UUID, role Role) Principal {
	return Principal{UserID: userID, Role: role}
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAnonymous reports whether no user is attached
func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}

// RequireAdmin returns ErrForbidden unless the principal is an admin
func (p Principal) RequireAdmin() error {
	if !p.IsAdmin() {
		return NewDomainError(ErrForbidden.Code, "Admin access required")
	}
	return nil
}
