// Package pg connects to PostgreSQL with pgx and scopes connections to the
// tenant bound in the request context.
//
// Tenant-owned tables are protected by row-level security policies that
// compare tenant_id with the app.current_tenant session setting. Binder is
// the only way application code obtains a connection:
//
//	binder := pg.NewBinder(pool, pg.WithBinderLogger(log))
//
//	bc, err := binder.Acquire(ctx) // runs BindTenantSQL when a tenant is bound
//	if err != nil {
//		return err // ErrTenantBind: nothing ran unscoped
//	}
//	defer bc.Release(ctx) // runs ResetTenantSQL, discards the conn on failure
//
// Do and WithTx wrap the acquire/release pair for pgx callers. Connect,
// Migrate and Healthcheck cover pool setup, goose migrations and readiness
// probes; IsDuplicateKeyError and friends classify pgx errors.
package pg
