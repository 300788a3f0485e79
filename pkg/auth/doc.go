// Package auth authenticates tenant users and manages their accounts.
//
// A Service combines a UserStorage, a tenant.Provider, a jwt.Issuer and an
// rbac.Authorizer. Every storage call runs with a tenant bound in the
// context, either the one bound by the request pipeline or one bound by the
// service itself through tenant.Run (Login, Refresh and password reset start
// from a subdomain or token, before any tenant is bound).
//
// Login returns an access/refresh token pair:
//
//	resp, err := svc.Login(ctx, "clientco", "ana@clientco.com", password)
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//		// 401
//	}
//
// Refresh rotates the pair and revokes the presented refresh token when the
// issuer has a denylist. Logout revokes both tokens for their remaining
// lifetime.
//
// User administration (CreateUser, ChangeRole, GrantPermissions,
// RevokePermissions, ChangePassword, DeactivateUser) requires a bound tenant.
// Permission sets are snapshots: CreateUser and ChangeRole copy the role's
// default set into the user record and later changes to the role tables do
// not touch existing users.
package auth
