// Package ratelimiter throttles requests with a token bucket.
//
// The API uses it in front of the credential endpoints, keyed by studio host
// and client IP, so guessing passwords or flooding reset emails for one
// studio is bounded. Buckets live in a Store: redis.RateLimitStore shares
// them across instances and MemoryStore keeps them in process.
//
//	bucket, err := ratelimiter.NewBucket(redis.NewRateLimitStore(client, prefix), cfg)
//	r.With(ratelimiter.Middleware(bucket, "login", ratelimiter.Composite(ratelimiter.ByHost, ratelimiter.ByClientIP), onError)).
//		Post("/auth/login", login)
package ratelimiter
