package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/tenant"
)

// TenantCache is a tenant.Cache shared by every server instance. Records are
// stored as JSON. Redis failures degrade to cache misses.
type TenantCache struct {
	client redis.UniversalClient
	prefix string
	log    *slog.Logger
}

var _ tenant.Cache = (*TenantCache)(nil)

// NewTenantCache creates a TenantCache writing keys under prefix + "tenant:".
func NewTenantCache(client redis.UniversalClient, prefix string, log *slog.Logger) *TenantCache {
	if log == nil {
		log = logger.Discard()
	}
	return &TenantCache{
		client: client,
		prefix: prefix + "tenant:",
		log:    log.With(logger.Component("redis.tenant_cache")),
	}
}

func (c *TenantCache) Get(ctx context.Context, key string) (*tenant.Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed", logger.Error(err))
		}
		return nil, false
	}
	var t tenant.Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.log.WarnContext(ctx, "dropping undecodable tenant cache entry", logger.Error(err))
		c.Delete(ctx, key)
		return nil, false
	}
	return &t, true
}

func (c *TenantCache) Set(ctx context.Context, key string, t *tenant.Tenant, ttl time.Duration) {
	if t == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		c.log.WarnContext(ctx, "failed to encode tenant for cache", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", logger.Error(err))
	}
}

func (c *TenantCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache delete failed", logger.Error(err))
	}
}

// Close is a no-op; the client is owned by the caller.
func (c *TenantCache) Close() error { return nil }
