package rbac

import "context"

type subjectCtxKey struct{}

// WithSubject stores the authenticated subject in the context.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, s)
}

// SubjectFromContext returns the subject stored by WithSubject.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(Subject)
	return s, ok && s != nil
}

// Require checks that the subject in ctx holds every permission in perms.
func Require(ctx context.Context, perms ...Permission) error {
	s, ok := SubjectFromContext(ctx)
	if !ok {
		return ErrNoSubject
	}
	for _, p := range perms {
		if !HasPermission(s, p) {
			return ErrInsufficientPermissions
		}
	}
	return nil
}
