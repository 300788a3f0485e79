package pg

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLPool adapts a database/sql handle to Pool, for code that reaches
// PostgreSQL through database/sql (goose, the pgx stdlib driver).
type SQLPool struct {
	db *sql.DB
}

// NewSQLPool wraps db.
func NewSQLPool(db *sql.DB) *SQLPool {
	return &SQLPool{db: db}
}

// NewSQLBinder creates a Binder over a database/sql handle.
func NewSQLBinder(db *sql.DB, opts ...BinderOption) *Binder[*SQLConn] {
	return NewPoolBinder[*SQLConn](NewSQLPool(db), DiscardSQLConn, opts...)
}

// Acquire pins one physical connection of the pool.
func (p *SQLPool) Acquire(ctx context.Context) (*SQLConn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &SQLConn{conn: conn}, nil
}

// SQLConn is a pinned database/sql connection.
type SQLConn struct {
	conn *sql.Conn
}

// Exec runs a statement and reports the affected row count in the tag.
func (c *SQLConn) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("SELECT " + strconv.FormatInt(n, 10)), nil
}

// Release returns the connection to the database/sql pool.
func (c *SQLConn) Release() {
	_ = c.conn.Close()
}

// Raw exposes the pinned *sql.Conn.
func (c *SQLConn) Raw() *sql.Conn {
	return c.conn
}

// DiscardSQLConn closes the physical connection instead of pooling it.
// database/sql drops a connection whose Raw callback reports ErrBadConn.
func DiscardSQLConn(_ context.Context, c *SQLConn) {
	err := c.conn.Raw(func(any) error { return driver.ErrBadConn })
	if err != nil && !errors.Is(err, driver.ErrBadConn) {
		_ = c.conn.Close()
	}
}
