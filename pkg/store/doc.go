// Package store persists tenants, users and orders in PostgreSQL.
//
// Stores never hold a pool. They get connections from a pg.ConnSource
// (normally a *pg.Binder[*pgxpool.Conn]), so every statement runs on a
// connection whose app.current_tenant setting matches the tenant bound in the
// request context. The users and orders tables are protected by row-level
// security keyed on that setting; the tenants table is not, because tenant
// lookup happens before any tenant is bound.
package store
