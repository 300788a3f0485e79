// Package isolation sequences every inbound request through tenant
// isolation.
//
// The coordinator is net/http middleware. For each request it
//
//  1. creates a fresh tenant.Scope in the request context and defers its
//     Clear, so the scope is unbound after the handler returns, fails,
//     panics or times out;
//  2. resolves the identity (token first, then subdomain) through an
//     IdentityResolver;
//  3. binds the tenant to the scope and stores the tenant, identity and
//     claims in the context;
//  4. for authenticated identities, loads the principal with the tenant
//     already bound and stores it as the rbac subject;
//  5. calls the next handler, whose connections come from pg.Binder and are
//     therefore scoped to the bound tenant.
//
// Required routes stop at the first failure and answer through the error
// handler before any tenant-scoped connection is acquired. Optional routes
// (login, password reset) continue unbound instead.
//
//	c := isolation.New(resolver,
//		isolation.WithPrincipalLoader(loadUser),
//		isolation.WithLogger(log),
//	)
//	r.Group(func(r chi.Router) {
//		r.Use(c.Required())
//		r.With(rbac.RequirePermission(rbac.ErrorHandler(c.ErrorHandler()), rbac.OrderRead)).
//			Get("/orders", listOrders)
//	})
//
// DefaultErrorHandler maps token and resolution failures to one 401 key,
// inactive tenants and missing permissions to 403, and binder failures to 500.
package isolation
