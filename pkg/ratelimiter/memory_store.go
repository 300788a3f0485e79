package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process. Tests and single-instance setups only.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.now = now }
}

// WithStaleAfter drops buckets idle for longer than d. Zero disables the sweeper.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.ttl = d }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		ttl:     time.Hour,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.ttl > 0 {
		go ms.sweep(ms.ttl / 4)
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}
	b.lastAccess = now

	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	if intervals := min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals); intervals > 0 {
		b.tokens = min(b.tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		}
	}

	remaining := b.tokens - tokens
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			ms.mu.Lock()
			now := ms.now()
			for k, b := range ms.buckets {
				if now.Sub(b.lastAccess) > ms.ttl {
					delete(ms.buckets, k)
				}
			}
			ms.mu.Unlock()
		case <-ms.stop:
			return
		}
	}
}
