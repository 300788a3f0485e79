package isolation

import (
	"errors"
	"fmt"

	"github.com/shutterdesk/core/pkg/tenant"
)

var (
	// ErrUnauthenticated is returned when a route needs an authenticated
	// principal and the request has none, or the principal cannot be loaded.
	ErrUnauthenticated = errors.New("isolation: unauthenticated")

	// ErrTenantRequired is returned when a tenant-required route is called
	// without a token or tenant subdomain.
	ErrTenantRequired = fmt.Errorf("isolation: tenant required: %w", tenant.ErrNoTenantInContext)
)
