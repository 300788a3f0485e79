package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when a host, subdomain or tenant id is malformed.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a tenant-scoped operation runs unbound.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInactiveTenant is returned when trying to use an inactive tenant.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoScope is returned when binding on a context that carries no scope.
	ErrNoScope = errors.New("tenant: context carries no scope")

	// ErrSubdomainTaken is returned when onboarding with a subdomain already in use.
	ErrSubdomainTaken = errors.New("subdomain is already taken")

	// ErrReservedSubdomain is returned when onboarding with a reserved subdomain.
	ErrReservedSubdomain = errors.New("subdomain is reserved")

	// ErrQuotaExceeded is returned when a plan limit would be exceeded.
	ErrQuotaExceeded = errors.New("plan quota exceeded")
)
