package enums

import (
	"fmt"
	"slices"
)

// UserRole represents the platform-level permissions role of a user.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	return slices.Contains(validUserRoles, r)
}

// IsStaff reports whether the role can act on behalf of other buyers.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	if r := UserRole(value); r.IsValid() {
		return r, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
