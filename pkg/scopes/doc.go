// Package scopes matches permission tags of the form "resource:action".
//
// A pattern may be a concrete tag ("order:create"), a resource wildcard
// ("order:*") or the global wildcard ("*"). Patterns are only used when role
// tables are loaded: the rbac package expands them against the permission
// catalog, so stored permission sets always hold concrete tags.
//
//	scopes.Matches("order:create", "order:*")             // true
//	scopes.Expand([]string{"photo:*"}, rbac.AllTags())    // photo:delete photo:read ...
package scopes
