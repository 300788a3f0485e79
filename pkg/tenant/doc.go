// Package tenant models tenants and binds the active tenant to a unit of work.
//
// # Tenant scope
//
// Every inbound request, and every background task, runs with its own Scope
// carried in its context.Context. A Scope is either unbound or bound to one
// tenant id:
//
//	ctx, scope := tenant.NewScope(r.Context())
//	defer scope.Clear()
//	_ = scope.Bind(t.ID)
//	id, ok := tenant.Current(ctx)
//
// Because the scope lives in the context rather than in a shared variable,
// two concurrent requests can never observe each other's binding, while the
// binding survives every blocking call made with the request's context.
// Run wraps a function in a freshly bound scope that is cleared on return:
//
//	err := tenant.Run(ctx, tenantID, func(ctx context.Context) error {
//		return users.UpdateLastLogin(ctx, userID)
//	})
//
// # Resolution
//
// Resolvers turn a request into a normalized subdomain. SubdomainResolver
// follows the host rules of the platform: the first label of a host with more
// than two labels names the tenant, and "www" never does. Providers load the
// tenant record; CachedProvider puts a Cache (in-memory LRU or Redis) in front
// of a storage-backed Provider.
package tenant
