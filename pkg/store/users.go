package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

const userColumns = `id, tenant_id, email, first_name, last_name, role, permissions,
	last_login_at, active, created_at, updated_at`

// UserStore implements auth.UserStorage. Every method requires a bound
// tenant; row-level security limits each statement to that tenant's rows.
type UserStore struct {
	src pg.ConnSource
}

var (
	_ auth.UserStorage      = (*UserStore)(nil)
	_ auth.QuotaUserStorage = (*UserStore)(nil)
)

func NewUserStore(src pg.ConnSource) *UserStore {
	return &UserStore{src: src}
}

func (s *UserStore) CreateUser(ctx context.Context, u *auth.User, passwordHash []byte) error {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return err
	}
	if u.TenantID != tid {
		return fmt.Errorf("%w: user belongs to %s", tenant.ErrInvalidIdentifier, u.TenantID)
	}

	err = s.do(ctx, func(q pg.Querier) error { return insertUser(ctx, q, u, passwordHash) })
	if pg.IsDuplicateKeyError(err) {
		return auth.ErrEmailAlreadyExists
	}
	return err
}

// CreateUserWithinLimit inserts u unless the tenant already has limit active
// users. A transaction scoped advisory lock on the tenant serializes
// concurrent creations, so two requests cannot both take the last seat.
func (s *UserStore) CreateUserWithinLimit(ctx context.Context, u *auth.User, passwordHash []byte, limit int) error {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return err
	}
	if u.TenantID != tid {
		return fmt.Errorf("%w: user belongs to %s", tenant.ErrInvalidIdentifier, u.TenantID)
	}

	err = pg.WithTx(ctx, s.src, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, tid.String()); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM users WHERE active`).Scan(&n); err != nil {
			return err
		}
		if n >= limit {
			return fmt.Errorf("%w: %d of %d users active", tenant.ErrQuotaExceeded, n, limit)
		}
		return insertUser(ctx, tx, u, passwordHash)
	})
	if pg.IsDuplicateKeyError(err) {
		return auth.ErrEmailAlreadyExists
	}
	return err
}

func insertUser(ctx context.Context, q pg.Querier, u *auth.User, passwordHash []byte) error {
	return q.QueryRow(ctx,
		`INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, role, permissions, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		u.ID, u.TenantID, u.Email, passwordHash, u.FirstName, u.LastName,
		string(u.Role), u.PermissionSet.Strings(), u.Active,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (s *UserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *UserStore) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := s.do(ctx, func(q pg.Querier) error {
		return q.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	})
	if pg.IsNotFoundError(err) {
		return nil, auth.ErrUserNotFound
	}
	return hash, err
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	return s.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, hash)
}

func (s *UserStore) UpdateRole(ctx context.Context, userID uuid.UUID, role rbac.Role, perms rbac.PermissionSet) error {
	return s.exec(ctx,
		`UPDATE users SET role = $2, permissions = $3, updated_at = now() WHERE id = $1`,
		userID, string(role), perms.Strings(),
	)
}

func (s *UserStore) UpdatePermissions(ctx context.Context, userID uuid.UUID, perms rbac.PermissionSet) error {
	return s.exec(ctx, `UPDATE users SET permissions = $2, updated_at = now() WHERE id = $1`, userID, perms.Strings())
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
}

func (s *UserStore) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return s.exec(ctx, `UPDATE users SET active = false, updated_at = now() WHERE id = $1`, userID)
}

func (s *UserStore) CountActiveUsers(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func(q pg.Querier) error {
		return q.QueryRow(ctx, `SELECT count(*) FROM users WHERE active`).Scan(&n)
	})
	return n, err
}

// do refuses to touch the database without a bound tenant, even though
// row-level security would return nothing anyway.
func (s *UserStore) do(ctx context.Context, fn func(q pg.Querier) error) error {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return err
	}
	return pg.Do(ctx, s.src, fn)
}

func (s *UserStore) exec(ctx context.Context, query string, args ...any) error {
	return s.do(ctx, func(q pg.Querier) error {
		tag, err := q.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return auth.ErrUserNotFound
		}
		return nil
	})
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	var u *auth.User
	err := s.do(ctx, func(q pg.Querier) error {
		var err error
		u, err = scanUser(q.QueryRow(ctx, query, arg))
		return err
	})
	if pg.IsNotFoundError(err) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u     auth.User
		role  string
		perms []string
	)
	if err := row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.FirstName, &u.LastName, &role, &perms,
		&u.LastLoginAt, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	set, err := rbac.ParsePermissionSet(perms)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = rbac.Role(role)
	u.PermissionSet = set
	return &u, nil
}
