package auth

import "errors"

// Role is an authorisation tier.
type Role string

// Role constants.
const (
	RoleOperator   Role = "operator"
	RoleAutomation Role = "automation"
	RoleAdmin      Role = "admin"
)

// ValidRoles lists every role a token may carry.
var ValidRoles = []Role{RoleOperator, RoleAutomation, RoleAdmin}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Sentinel errors for auth operations.
var (
	ErrTokenInvalid = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token has expired")
	ErrNoSecret     = errors.New("auth: signing secret is empty")
	ErrInvalidRole  = errors.New("auth: invalid role")
	ErrForbidden    = errors.New("auth: insufficient permissions")
)
