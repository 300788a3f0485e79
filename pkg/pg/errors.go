package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")

	ErrAcquireConn = errors.New("failed to acquire database connection")
	ErrBeginTx     = errors.New("failed to begin transaction")
	ErrCommitTx    = errors.New("failed to commit transaction")

	// ErrTenantBind means the tenant setting could not be applied to a
	// connection. The connection was discarded and nothing ran on it.
	ErrTenantBind = errors.New("failed to bind tenant to connection")

	// ErrTenantReset means the tenant setting could not be cleared on
	// release. The connection was discarded instead of pooled.
	ErrTenantReset = errors.New("failed to reset tenant on connection")
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsTxClosedError reports whether err comes from using a finished transaction.
func IsTxClosedError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrTxClosed)
}

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505),
// such as a taken subdomain or a repeated email within a tenant.
func IsDuplicateKeyError(err error) bool {
	return hasCode(err, "23505")
}

// IsForeignKeyViolationError reports a foreign key violation (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	return hasCode(err, "23503")
}

// IsInsufficientPrivilegeError reports SQLSTATE 42501, which PostgreSQL
// returns when a write violates a row-level security policy.
func IsInsufficientPrivilegeError(err error) bool {
	return hasCode(err, "42501")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
