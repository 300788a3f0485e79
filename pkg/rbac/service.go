package rbac

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shutterdesk/core/pkg/scopes"
)

// RoleSource provides role definitions keyed by role name.
type RoleSource interface {
	Load(ctx context.Context) (map[string]RoleDefinition, error)
}

// Authorizer maps each role to its canonical default permission set.
// Sets are computed once, including inherited permissions, and never change afterwards.
type Authorizer struct {
	defaults    map[Role]PermissionSet
	sortedRoles []Role
}

// NewAuthorizer loads role definitions from source and precomputes the
// default permission set of every role.
func NewAuthorizer(ctx context.Context, source RoleSource) (*Authorizer, error) {
	defs, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRoles, err)
	}

	for name := range defs {
		if !Role(name).Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, name)
		}
	}
	for _, r := range Roles() {
		if _, ok := defs[string(r)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRole, r)
		}
	}

	if err := validateRoleInheritance(defs); err != nil {
		return nil, err
	}

	catalog := AllTags()
	defaults := make(map[Role]PermissionSet, len(defs))
	for name, def := range defs {
		if err := scopes.Validate(def.Permissions); err != nil {
			return nil, fmt.Errorf("role %s: %w", name, err)
		}
		patterns := collectPermissions(name, defs, make(map[string]bool), 0)
		expanded := scopes.Expand(patterns, catalog)

		perms := make([]Permission, len(expanded))
		for i, t := range expanded {
			perms[i] = Permission(t)
		}
		defaults[Role(name)] = NewPermissionSet(perms...)
	}

	return &Authorizer{
		defaults:    defaults,
		sortedRoles: sortRolesByInheritance(defs),
	}, nil
}

// DefaultAuthorizer builds an authorizer from the built-in role tables.
func DefaultAuthorizer() *Authorizer {
	a, err := NewAuthorizer(context.Background(), NewMemorySource(DefaultRoles()))
	if err != nil {
		panic(fmt.Sprintf("rbac: built-in role tables are invalid: %v", err))
	}
	return a
}

// DefaultPermissions returns the canonical permission set of role.
func (a *Authorizer) DefaultPermissions(role Role) (PermissionSet, error) {
	set, ok := a.defaults[role]
	if !ok {
		return PermissionSet{}, ErrInvalidRole
	}
	return set, nil
}

// Can checks whether the canonical set of role grants permission.
// User-level checks must go through HasPermission on the stored set instead.
func (a *Authorizer) Can(role Role, permission Permission) error {
	set, ok := a.defaults[role]
	if !ok {
		return ErrInvalidRole
	}
	if !set.Has(permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

// VerifyRole parses name and checks that the authorizer knows it.
func (a *Authorizer) VerifyRole(name string) (Role, error) {
	role, err := ParseRole(name)
	if err != nil {
		return "", err
	}
	if _, ok := a.defaults[role]; !ok {
		return "", ErrInvalidRole
	}
	return role, nil
}

// SortedRoles returns role names sorted by inheritance depth, base roles first.
func (a *Authorizer) SortedRoles() []Role {
	return slices.Clone(a.sortedRoles)
}

// collectPermissions gathers the direct and inherited patterns of a role.
func collectPermissions(name string, defs map[string]RoleDefinition, visited map[string]bool, depth int) []string {
	if depth > MaxInheritanceDepth || visited[name] {
		return nil
	}
	visited[name] = true

	def, ok := defs[name]
	if !ok {
		return nil
	}

	out := slices.Clone(def.Permissions)
	for _, parent := range def.Inherits {
		out = append(out, collectPermissions(parent, defs, visited, depth+1)...)
	}
	return out
}

func sortRolesByInheritance(defs map[string]RoleDefinition) []Role {
	depths := make(map[string]int, len(defs))
	for name := range defs {
		roleDepth(name, defs, depths, make(map[string]bool))
	}

	out := make([]Role, 0, len(defs))
	for name := range defs {
		out = append(out, Role(name))
	}
	slices.SortFunc(out, func(a, b Role) int {
		if d := depths[string(a)] - depths[string(b)]; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}

// roleDepth returns the length of the longest inheritance chain below name.
func roleDepth(name string, defs map[string]RoleDefinition, depths map[string]int, inProcess map[string]bool) int {
	if d, ok := depths[name]; ok {
		return d
	}
	if inProcess[name] {
		return 0
	}
	inProcess[name] = true
	defer delete(inProcess, name)

	maxDepth := 0
	for _, parent := range defs[name].Inherits {
		if d := roleDepth(parent, defs, depths, inProcess) + 1; d > maxDepth {
			maxDepth = d
		}
	}
	depths[name] = maxDepth
	return maxDepth
}

func validateRoleInheritance(defs map[string]RoleDefinition) error {
	for name, def := range defs {
		for _, parent := range def.Inherits {
			if _, ok := defs[parent]; !ok {
				return fmt.Errorf("%w: %s inherits unknown role %q", ErrInvalidRole, name, parent)
			}
		}
		if err := checkCircularInheritance(name, defs, []string{name}); err != nil {
			return err
		}
	}

	depths := make(map[string]int, len(defs))
	for name := range defs {
		if d := roleDepth(name, defs, depths, make(map[string]bool)); d > MaxInheritanceDepth {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
		}
	}
	return nil
}

func checkCircularInheritance(name string, defs map[string]RoleDefinition, path []string) error {
	for _, parent := range defs[name].Inherits {
		if slices.Contains(path, parent) {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("circular inheritance detected: %s -> %s", name, parent))
		}
		if err := checkCircularInheritance(parent, defs, append(slices.Clone(path), parent)); err != nil {
			return err
		}
	}
	return nil
}
