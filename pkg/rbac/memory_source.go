package rbac

import (
	"context"
	"slices"
)

// DefaultRoles returns the built-in role tables.
//
// CLIENT can view photos and pay; STAFF runs day-to-day order and photo work;
// ADMIN inherits both and holds every other permission of the catalog.
func DefaultRoles() map[string]RoleDefinition {
	return map[string]RoleDefinition{
		string(RoleClient): {
			Permissions: []string{string(PhotoRead), string(PaymentProcess)},
		},
		string(RoleStaff): {
			Permissions: []string{
				string(OrderCreate), string(OrderRead), string(OrderUpdate),
				string(PhotoUpload), string(PhotoRead), string(PhotoUpdate),
				string(InvoiceRead),
				string(UserRead),
			},
		},
		string(RoleAdmin): {
			Inherits: []string{string(RoleStaff), string(RoleClient)},
			Permissions: []string{
				string(OrderDelete), string(PhotoDelete),
				"invoice:*", "payment:*", "user:*", "tenant:*",
				string(AnalyticsRead),
			},
		},
	}
}

type memorySource struct {
	roles map[string]RoleDefinition
}

// NewMemorySource creates a RoleSource backed by a deep copy of roles.
func NewMemorySource(roles map[string]RoleDefinition) RoleSource {
	cp := make(map[string]RoleDefinition, len(roles))
	for name, def := range roles {
		cp[name] = RoleDefinition{
			Permissions: slices.Clone(def.Permissions),
			Inherits:    slices.Clone(def.Inherits),
		}
	}
	return &memorySource{roles: cp}
}

// Load returns the role map. The authorizer treats it as read-only.
func (s *memorySource) Load(context.Context) (map[string]RoleDefinition, error) {
	return s.roles, nil
}
