package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shutterdesk/core/pkg/ratelimiter"
)

// Refill and consume in one round trip. State is a hash of tokens and the
// last refill time in milliseconds. Denied calls leave the tokens untouched.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local n = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local intervals = math.floor((now - ts) / interval)
if intervals > 0 then
  tokens = math.min(capacity, tokens + intervals * rate)
  ts = ts + intervals * interval
  if tokens == capacity then
    ts = now
  end
end

local remaining = tokens - n
if remaining >= 0 then
  tokens = remaining
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
local ttl = (math.ceil(capacity / rate) + 1) * interval
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, ts + interval}
`)

// RateLimitStore keeps token buckets in Redis so all instances share them.
type RateLimitStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRateLimitStore writes buckets under prefix + "ratelimit:".
func NewRateLimitStore(client redis.UniversalClient, prefix string) *RateLimitStore {
	return &RateLimitStore{client: client, prefix: prefix + "ratelimit:", now: time.Now}
}

func (s *RateLimitStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg ratelimiter.Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		s.now().UnixMilli(),
		tokens,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit store: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("ratelimit store: unexpected reply %v", res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

var _ ratelimiter.Store = (*RateLimitStore)(nil)
