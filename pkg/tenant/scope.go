package tenant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Scope holds the tenant bound to one logical unit of work: an inbound
// request or a background task. It starts unbound. Bind overwrites any
// previous binding and Clear returns it to unbound.
//
// A Scope travels inside a context.Context, so it is visible to everything
// that receives that context (including goroutines the unit of work starts)
// and invisible to every other unit of work.
type Scope struct {
	mu    sync.RWMutex
	id    uuid.UUID
	bound bool
}

type scopeKey struct{}

// NewScope returns a child of ctx carrying a fresh, unbound scope.
// A scope already present in ctx is shadowed, not modified.
func NewScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFromContext returns the innermost scope carried by ctx.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// Bind sets the active tenant. Rebinding is legal and last write wins.
func (s *Scope) Bind(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrInvalidIdentifier
	}
	s.mu.Lock()
	s.id, s.bound = id, true
	s.mu.Unlock()
	return nil
}

// Clear unbinds the scope. It is idempotent.
func (s *Scope) Clear() {
	s.mu.Lock()
	s.id, s.bound = uuid.Nil, false
	s.mu.Unlock()
}

// Current returns the bound tenant id, if any.
func (s *Scope) Current() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.bound
}

// Bind binds id on the scope carried by ctx.
func Bind(ctx context.Context, id uuid.UUID) error {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return ErrNoScope
	}
	return s.Bind(id)
}

// Clear unbinds the scope carried by ctx, if there is one.
func Clear(ctx context.Context) {
	if s, ok := ScopeFromContext(ctx); ok {
		s.Clear()
	}
}

// Current returns the tenant bound to the scope carried by ctx.
func Current(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return s.Current()
}

// MustCurrent is Current for code paths that cannot run unbound.
func MustCurrent(ctx context.Context) (uuid.UUID, error) {
	id, ok := Current(ctx)
	if !ok {
		return uuid.Nil, ErrNoTenantInContext
	}
	return id, nil
}

// Run executes fn in a new scope bound to id and clears the scope when fn
// returns or panics. Use it for background tasks and for service calls that
// must act as a tenant outside of a request.
func Run(ctx context.Context, id uuid.UUID, fn func(ctx context.Context) error) error {
	ctx, s := NewScope(ctx)
	defer s.Clear()
	if err := s.Bind(id); err != nil {
		return err
	}
	return fn(ctx)
}
