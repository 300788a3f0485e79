package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CachedProvider wraps a Provider with a Cache. Inactive tenants are cached
// too, so repeated requests for a deactivated tenant do not hit storage.
type CachedProvider struct {
	next  Provider
	cache Cache
	ttl   time.Duration
}

// NewCachedProvider caches lookups of next for ttl.
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration) *CachedProvider {
	if cache == nil {
		cache = NewNoOpCache()
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

func (p *CachedProvider) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	if t, ok := p.cache.Get(ctx, subdomainKey(subdomain)); ok {
		return t, nil
	}
	t, err := p.next.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	p.store(ctx, t)
	return t, nil
}

func (p *CachedProvider) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	if t, ok := p.cache.Get(ctx, idKey(id)); ok {
		return t, nil
	}
	t, err := p.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.store(ctx, t)
	return t, nil
}

// Invalidate drops every cached entry of t. Call it after mutating a tenant.
func (p *CachedProvider) Invalidate(ctx context.Context, t *Tenant) {
	if t == nil {
		return
	}
	p.cache.Delete(ctx, idKey(t.ID))
	p.cache.Delete(ctx, subdomainKey(t.Subdomain))
}

func (p *CachedProvider) store(ctx context.Context, t *Tenant) {
	p.cache.Set(ctx, idKey(t.ID), t, p.ttl)
	p.cache.Set(ctx, subdomainKey(t.Subdomain), t, p.ttl)
}

func subdomainKey(s string) string { return "sub:" + s }
func idKey(id uuid.UUID) string    { return "id:" + id.String() }
