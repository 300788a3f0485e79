// Package redis connects to Redis with go-redis and provides the shared
// stores of the service: a token Denylist for logout and refresh rotation,
// a TenantCache that lets every instance skip the tenant lookup on hot
// subdomains, and a RateLimitStore backing the credential endpoint limits.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	issuer := jwt.NewIssuer(svc, jwt.WithDenylist(redis.NewDenylist(client, cfg.KeyPrefix)))
//	provider := tenant.NewCachedProvider(tenants, redis.NewTenantCache(client, cfg.KeyPrefix, log), time.Minute)
package redis
