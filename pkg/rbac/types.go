package rbac

import "strings"

// MaxInheritanceDepth is the maximum allowed depth of role inheritance.
const MaxInheritanceDepth = 10

// Role is one of the fixed user roles of a tenant.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleStaff  Role = "STAFF"
	RoleClient Role = "CLIENT"
)

// Roles lists every role, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleClient}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// RoleDefinition describes the permissions granted to a role by a RoleSource.
// Permissions may contain wildcard patterns ("order:*", "*"); they are
// expanded against the permission catalog when the authorizer is built.
type RoleDefinition struct {
	Permissions []string `yaml:"permissions" json:"permissions"`
	Inherits    []string `yaml:"inherits,omitempty" json:"inherits,omitempty"`
}
