// Package pgtest provides an in-memory connection pool that emulates
// PostgreSQL row-level security keyed on the tenant session setting.
//
// Each Conn keeps its own session state, connections are reused LIFO, and
// rows are only visible through a connection whose setting equals the row's
// tenant, the same rule the production policy applies:
//
//	tenant_id = NULLIF(current_setting('app.current_tenant', true), '')::uuid
package pgtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shutterdesk/core/pkg/pg"
)

// ErrUnsupportedStatement is returned for anything but the session statements.
var ErrUnsupportedStatement = errors.New("pgtest: unsupported statement")

// Row is one record of the emulated tenant-owned table.
type Row struct {
	TenantID uuid.UUID
	Value    string
}

// Stats counts pool events.
type Stats struct {
	Opened        int
	Idle          int
	Discarded     int
	DirtyReleases int
}

// DB is an in-memory pool of at most maxConns connections.
type DB struct {
	mu       sync.Mutex
	rows     []Row
	idle     []*Conn
	slots    chan struct{}
	nextID   int
	stats    Stats
	failNext error
}

// New creates a pool limited to maxConns concurrent checkouts.
func New(maxConns int) *DB {
	if maxConns <= 0 {
		maxConns = 1
	}
	return &DB{slots: make(chan struct{}, maxConns)}
}

// Insert adds a row owned by tenantID.
func (db *DB) Insert(tenantID uuid.UUID, value string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.rows = append(db.rows, Row{TenantID: tenantID, Value: value})
}

// FailNextExec makes the next statement on any connection fail with err.
func (db *DB) FailNextExec(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failNext = err
}

// Stats returns a snapshot of the pool counters.
func (db *DB) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := db.stats
	s.Idle = len(db.idle)
	return s
}

// Acquire blocks until a connection is free or ctx is done. The most
// recently released connection is handed out first.
func (db *DB) Acquire(ctx context.Context) (*Conn, error) {
	select {
	case db.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if n := len(db.idle); n > 0 {
		c := db.idle[n-1]
		db.idle = db.idle[:n-1]
		c.checkedOut = true
		return c, nil
	}
	db.nextID++
	db.stats.Opened++
	return &Conn{db: db, id: db.nextID, checkedOut: true}, nil
}

// Discard is a pg.DiscardFunc for this pool.
func Discard(_ context.Context, c *Conn) {
	c.Discard()
}

// Conn is one emulated physical connection.
type Conn struct {
	db         *DB
	id         int
	setting    string
	checkedOut bool
	closed     bool
}

// ID identifies the physical connection across checkouts.
func (c *Conn) ID() int { return c.id }

// Setting returns the current value of the tenant session setting.
func (c *Conn) Setting() string {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return c.setting
}

// Exec understands the two session statements issued by pg.Binder.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}

	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	if c.closed {
		return pgconn.CommandTag{}, errors.New("pgtest: connection is closed")
	}
	if err := c.db.failNext; err != nil {
		c.db.failNext = nil
		return pgconn.CommandTag{}, err
	}

	switch sql {
	case pg.BindTenantSQL:
		if len(args) != 1 {
			return pgconn.CommandTag{}, fmt.Errorf("pgtest: bind expects 1 argument, got %d", len(args))
		}
		s, ok := args[0].(string)
		if !ok {
			return pgconn.CommandTag{}, fmt.Errorf("pgtest: bind argument is %T, want string", args[0])
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return pgconn.CommandTag{}, fmt.Errorf("invalid input syntax for type uuid: %q", s)
		}
		c.setting = id.String()
	case pg.ResetTenantSQL:
		c.setting = ""
	default:
		return pgconn.CommandTag{}, fmt.Errorf("%w: %s", ErrUnsupportedStatement, sql)
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

// Rows returns the values visible through this connection.
func (c *Conn) Rows(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	if c.setting == "" {
		return nil, nil
	}
	current, err := uuid.Parse(c.setting)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range c.db.rows {
		if r.TenantID == current {
			out = append(out, r.Value)
		}
	}
	return out, nil
}

// Release returns the connection to the pool as is, session state included.
func (c *Conn) Release() {
	c.db.mu.Lock()
	if !c.checkedOut || c.closed {
		c.db.mu.Unlock()
		panic("pgtest: release of a connection that is not checked out")
	}
	c.checkedOut = false
	if c.setting != "" {
		c.db.stats.DirtyReleases++
	}
	c.db.idle = append(c.db.idle, c)
	c.db.mu.Unlock()
	<-c.db.slots
}

// Discard closes the connection and frees its slot.
func (c *Conn) Discard() {
	c.db.mu.Lock()
	if !c.checkedOut || c.closed {
		c.db.mu.Unlock()
		panic("pgtest: discard of a connection that is not checked out")
	}
	c.checkedOut = false
	c.closed = true
	c.db.stats.Discarded++
	c.db.mu.Unlock()
	<-c.db.slots
}
