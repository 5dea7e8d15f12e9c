package enums

import (
	"fmt"
	"strings"
)

// UserRole is the coarse authorization class persisted on users.
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleCustomer UserRole = "CUSTOMER"
)

// AuthorityPrefix is prepended to roles when checking route authorization.
const AuthorityPrefix = "ROLE_"

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleCustomer,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role is ADMIN.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}

// Authority returns the prefixed authority string, e.g. ROLE_ADMIN.
func (r UserRole) Authority() string {
	return AuthorityPrefix + string(r)
}

// ParseUserRole converts raw input into a UserRole, ignoring case.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
