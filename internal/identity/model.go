package identity

import (
	"fmt"
	"time"
)

// Role is the closed set of privilege levels. The model is a total order:
// administrator satisfies every requirement, standard satisfies only standard.
type Role string

const (
	RoleStandard      Role = "standard"
	RoleAdministrator Role = "administrator"
)

// ParseRole validates a textual role against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStandard:
		return RoleStandard, nil
	case RoleAdministrator:
		return RoleAdministrator, nil
	}
	return "", fmt.Errorf("identity: unknown role %q", s)
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdministrator
}

// Satisfies reports whether r meets the required role.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	if r == RoleAdministrator {
		return true
	}
	return r == required
}

// Identity is an account as stored in the credential store. PasswordHash is
// opaque to everything except the password package.
type Identity struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
}
