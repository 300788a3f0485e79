package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores tenant records between requests.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// DefaultCacheSize is the default maximum number of entries of the in-memory cache.
const DefaultCacheSize = 1000

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type memoryEntry struct {
	key       string
	tenant    Tenant
	expiresAt time.Time
}

// NewInMemoryCache creates an LRU cache with DefaultCacheSize entries.
func NewInMemoryCache() Cache {
	return NewInMemoryCacheWithSize(DefaultCacheSize)
}

// NewInMemoryCacheWithSize creates an LRU cache holding at most maxSize
// entries. Expired entries are dropped on access and by a janitor goroutine
// that runs until Close.
func NewInMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.janitor(time.Minute)
	return c
}

// Get returns a copy of the cached tenant so callers cannot mutate the entry.
func (c *memoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*memoryEntry)
	if !c.now().Before(e.expiresAt) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	t := e.tenant
	return &t, true
}

func (c *memoryCache) Set(_ context.Context, key string, t *Tenant, ttl time.Duration) {
	if t == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*memoryEntry)
		e.tenant, e.expiresAt = *t, c.now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.maxSize {
		c.remove(c.order.Back())
	}
	c.entries[key] = c.order.PushFront(&memoryEntry{key: key, tenant: *t, expiresAt: c.now().Add(ttl)})
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
}

// Close stops the janitor. It is safe to call more than once.
func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) remove(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryEntry).key)
}

func (c *memoryCache) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*memoryEntry).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
}

type noOpCache struct{}

// NewNoOpCache returns a Cache that stores nothing.
func NewNoOpCache() Cache { return noOpCache{} }

func (noOpCache) Get(context.Context, string) (*Tenant, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, *Tenant, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                      {}
func (noOpCache) Close() error                                        { return nil }
