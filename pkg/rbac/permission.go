package rbac

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Permission names one authorizable action on one resource kind.
type Permission string

const (
	OrderCreate Permission = "order:create"
	OrderRead   Permission = "order:read"
	OrderUpdate Permission = "order:update"
	OrderDelete Permission = "order:delete"

	PhotoUpload Permission = "photo:upload"
	PhotoRead   Permission = "photo:read"
	PhotoUpdate Permission = "photo:update"
	PhotoDelete Permission = "photo:delete"

	InvoiceCreate Permission = "invoice:create"
	InvoiceRead   Permission = "invoice:read"
	InvoiceUpdate Permission = "invoice:update"
	InvoiceDelete Permission = "invoice:delete"

	PaymentProcess Permission = "payment:process"
	PaymentRead    Permission = "payment:read"
	PaymentRefund  Permission = "payment:refund"

	UserCreate Permission = "user:create"
	UserRead   Permission = "user:read"
	UserUpdate Permission = "user:update"
	UserDelete Permission = "user:delete"

	TenantRead   Permission = "tenant:read"
	TenantUpdate Permission = "tenant:update"

	AnalyticsRead Permission = "analytics:read"
)

var catalog = []Permission{
	OrderCreate, OrderRead, OrderUpdate, OrderDelete,
	PhotoUpload, PhotoRead, PhotoUpdate, PhotoDelete,
	InvoiceCreate, InvoiceRead, InvoiceUpdate, InvoiceDelete,
	PaymentProcess, PaymentRead, PaymentRefund,
	UserCreate, UserRead, UserUpdate, UserDelete,
	TenantRead, TenantUpdate,
	AnalyticsRead,
}

// AllPermissions returns the full permission catalog.
func AllPermissions() []Permission {
	return slices.Clone(catalog)
}

// AllTags returns the catalog as plain strings.
func AllTags() []string {
	out := make([]string, len(catalog))
	for i, p := range catalog {
		out[i] = string(p)
	}
	return out
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	return slices.Contains(catalog, p)
}

// ParsePermission validates a permission tag against the catalog.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// PermissionSet is an immutable, sorted set of permissions.
// The zero value is an empty set.
type PermissionSet struct {
	tags []Permission
}

// NewPermissionSet builds a set from the given permissions, dropping duplicates.
func NewPermissionSet(perms ...Permission) PermissionSet {
	if len(perms) == 0 {
		return PermissionSet{}
	}
	tags := slices.Clone(perms)
	slices.Sort(tags)
	return PermissionSet{tags: slices.Compact(tags)}
}

// ParsePermissionSet builds a set from stored tags. Unknown tags are rejected.
func ParsePermissionSet(tags []string) (PermissionSet, error) {
	perms := make([]Permission, 0, len(tags))
	for _, t := range tags {
		p, err := ParsePermission(t)
		if err != nil {
			return PermissionSet{}, err
		}
		perms = append(perms, p)
	}
	return NewPermissionSet(perms...), nil
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, found := slices.BinarySearch(s.tags, p)
	return found
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int { return len(s.tags) }

// Permissions returns a copy of the members in sorted order.
func (s PermissionSet) Permissions() []Permission {
	return slices.Clone(s.tags)
}

// Strings returns the members as plain strings in sorted order.
func (s PermissionSet) Strings() []string {
	out := make([]string, len(s.tags))
	for i, p := range s.tags {
		out[i] = string(p)
	}
	return out
}

// With returns a new set that also contains perms.
func (s PermissionSet) With(perms ...Permission) PermissionSet {
	return NewPermissionSet(append(slices.Clone(s.tags), perms...)...)
}

// Without returns a new set with perms removed.
func (s PermissionSet) Without(perms ...Permission) PermissionSet {
	out := make([]Permission, 0, len(s.tags))
	for _, p := range s.tags {
		if !slices.Contains(perms, p) {
			out = append(out, p)
		}
	}
	return PermissionSet{tags: out}
}

// SubsetOf reports whether every member of s is also in other.
func (s PermissionSet) SubsetOf(other PermissionSet) bool {
	for _, p := range s.tags {
		if !other.Has(p) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same members.
func (s PermissionSet) Equal(other PermissionSet) bool {
	return slices.Equal(s.tags, other.tags)
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	set, err := ParsePermissionSet(tags)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// Subject is anything that carries a stored permission set, typically a user.
type Subject interface {
	Permissions() PermissionSet
}

// HasPermission reports whether subject's stored set contains p.
// It never consults role tables: the stored set is the only source of truth.
func HasPermission(subject Subject, p Permission) bool {
	if subject == nil {
		return false
	}
	return subject.Permissions().Has(p)
}
