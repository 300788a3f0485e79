package rbac

import "errors"

var (
	// ErrInvalidRole is returned when a role does not exist.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrUnknownPermission is returned for tags outside the permission catalog.
	ErrUnknownPermission = errors.New("rbac.unknown_permission")

	// ErrInsufficientPermissions is returned when required permissions are not granted.
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")

	// ErrNoSubject is returned when no subject is found in the context.
	ErrNoSubject = errors.New("rbac.subject_not_in_context")

	// ErrCircularInheritance is returned when roles have circular inheritance.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrMissingRole is returned when a role source omits one of the fixed roles.
	ErrMissingRole = errors.New("rbac.missing_role")

	// ErrFailedToLoadRoles is returned when a role source cannot be read.
	ErrFailedToLoadRoles = errors.New("rbac.failed_to_load_roles")
)
