// Package rbac maps user roles to permission sets and answers permission checks.
//
// Every role (ADMIN, STAFF, CLIENT) has a canonical default set computed once by
// an Authorizer from a RoleSource. Role definitions may inherit from other roles
// and may use wildcard patterns ("invoice:*"); both are resolved up front, so a
// PermissionSet only ever holds concrete catalog tags.
//
// Users do not get their permissions from the role at check time. A user's set
// is copied from the role default when the user is created or the role changes,
// stored with the user, and HasPermission consults only that stored set:
//
//	defaults, _ := authz.DefaultPermissions(rbac.RoleStaff)
//	user.PermissionSet = defaults // snapshot at assignment
//	rbac.HasPermission(user, rbac.OrderCreate)
//
// Built-in tables come from DefaultRoles; NewYAMLFileSource lets deployments
// replace them. RequirePermission guards HTTP handlers using the Subject placed
// in the request context by WithSubject.
package rbac
