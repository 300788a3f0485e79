package pg

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	applog "github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/tenant"
)

// TenantSetting is the session variable read by the row-level security
// policies of every tenant-owned table.
const TenantSetting = "app.current_tenant"

// Session statements issued by the Binder. The setting is session scoped
// (is_local = false) so it holds across the transactions of one checkout.
const (
	BindTenantSQL  = "SELECT set_config('" + TenantSetting + "', $1::uuid::text, false)"
	ResetTenantSQL = "SELECT set_config('" + TenantSetting + "', '', false)"
)

// DefaultResetTimeout bounds the reset statement issued on release.
const DefaultResetTimeout = 5 * time.Second

// Conn is a pooled connection able to run the session statements.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
}

// Pool hands out connections of type C. *pgxpool.Pool implements
// Pool[*pgxpool.Conn].
type Pool[C Conn] interface {
	Acquire(ctx context.Context) (C, error)
}

// DiscardFunc closes a connection instead of returning it to its pool.
type DiscardFunc[C Conn] func(ctx context.Context, conn C)

// Binder acquires connections whose session is scoped to the tenant bound
// in the caller's context.
//
// A connection acquired while a tenant is bound has the tenant setting set
// before it is handed out. On Release the setting is reset before the
// connection goes back to the pool; if that fails the connection is
// discarded, so a pooled connection never carries a stale tenant.
type Binder[C Conn] struct {
	pool         Pool[C]
	discard      DiscardFunc[C]
	log          *slog.Logger
	resetTimeout time.Duration
}

type binderConfig struct {
	log          *slog.Logger
	resetTimeout time.Duration
}

// BinderOption configures a Binder.
type BinderOption func(*binderConfig)

// WithBinderLogger sets the logger for bind and reset failures.
func WithBinderLogger(l *slog.Logger) BinderOption {
	return func(c *binderConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithResetTimeout bounds the reset statement. The reset runs even when the
// request context is already cancelled.
func WithResetTimeout(d time.Duration) BinderOption {
	return func(c *binderConfig) {
		if d > 0 {
			c.resetTimeout = d
		}
	}
}

// NewBinder creates a Binder over a pgx pool. Discarded connections are
// hijacked from the pool and closed.
func NewBinder(pool *pgxpool.Pool, opts ...BinderOption) *Binder[*pgxpool.Conn] {
	return NewPoolBinder(Pool[*pgxpool.Conn](pool), discardPgxConn, opts...)
}

// NewPoolBinder creates a Binder over any pool. It panics if pool or discard
// is nil.
func NewPoolBinder[C Conn](pool Pool[C], discard DiscardFunc[C], opts ...BinderOption) *Binder[C] {
	if pool == nil || discard == nil {
		panic("pg: binder requires a pool and a discard func")
	}
	cfg := binderConfig{
		log:          applog.Discard(),
		resetTimeout: DefaultResetTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Binder[C]{
		pool:         pool,
		discard:      discard,
		log:          cfg.log.With(applog.Component("pg.binder")),
		resetTimeout: cfg.resetTimeout,
	}
}

// Acquire checks a connection out of the pool. If a tenant is bound in ctx,
// the connection's tenant setting is set first; when that statement fails the
// connection is discarded and an ErrTenantBind error is returned. Without a
// bound tenant the connection is returned unmodified, for tenant-agnostic
// work such as resolving the tenant itself.
func (b *Binder[C]) Acquire(ctx context.Context) (*BoundConn[C], error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrAcquireConn, err)
	}

	id, bound := tenant.Current(ctx)
	if !bound {
		return &BoundConn[C]{conn: conn, binder: b}, nil
	}

	if _, err := conn.Exec(ctx, BindTenantSQL, id.String()); err != nil {
		b.log.ErrorContext(ctx, "failed to bind tenant to connection",
			applog.TenantID(id),
			applog.Error(err),
		)
		b.discardConn(ctx, conn)
		return nil, errors.Join(ErrTenantBind, err)
	}
	return &BoundConn[C]{conn: conn, binder: b, tenantID: id, bound: true}, nil
}

// WithConn runs fn on an acquired connection and releases it afterwards.
func (b *Binder[C]) WithConn(ctx context.Context, fn func(conn C) error) error {
	bc, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer bc.Release(ctx)
	return fn(bc.Conn())
}

func (b *Binder[C]) discardConn(ctx context.Context, conn C) {
	b.discard(context.WithoutCancel(ctx), conn)
}

// BoundConn is a connection checked out through a Binder.
type BoundConn[C Conn] struct {
	conn     C
	binder   *Binder[C]
	tenantID uuid.UUID
	bound    bool
	once     sync.Once
	err      error
}

// Conn returns the underlying connection. It must not be used after Release.
func (c *BoundConn[C]) Conn() C {
	return c.conn
}

// TenantID reports the tenant the connection is scoped to.
func (c *BoundConn[C]) TenantID() (uuid.UUID, bool) {
	return c.tenantID, c.bound
}

// Release resets the tenant setting and returns the connection to the pool.
// If the reset fails the connection is discarded and an ErrTenantReset error
// is returned. Release is idempotent.
func (c *BoundConn[C]) Release(ctx context.Context) error {
	c.once.Do(func() {
		if !c.bound {
			c.conn.Release()
			return
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.binder.resetTimeout)
		defer cancel()

		if _, err := c.conn.Exec(rctx, ResetTenantSQL); err != nil {
			c.binder.log.ErrorContext(ctx, "failed to reset tenant on connection, discarding it",
				applog.TenantID(c.tenantID),
				applog.Error(err),
			)
			c.binder.discardConn(ctx, c.conn)
			c.err = errors.Join(ErrTenantReset, err)
			return
		}
		c.conn.Release()
	})
	return c.err
}

func discardPgxConn(ctx context.Context, conn *pgxpool.Conn) {
	// Hijack removes the connection from the pool's accounting.
	_ = conn.Hijack().Close(ctx)
}
