package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/tenant"
)

const tenantColumns = `id, name, subdomain, plan, settings, active, created_at, updated_at`

// TenantStore implements tenant.Provider and the onboarding operations.
type TenantStore struct {
	src pg.ConnSource
}

func NewTenantStore(src pg.ConnSource) *TenantStore {
	return &TenantStore{src: src}
}

// Create inserts t. The subdomain is normalized in place; a taken subdomain
// returns tenant.ErrSubdomainTaken.
func (s *TenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	sub, err := tenant.ValidateNewSubdomain(t.Subdomain)
	if err != nil {
		return err
	}
	if t.Plan == "" {
		t.Plan = tenant.PlanBasic
	}
	if !t.Plan.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlan, t.Plan)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Settings == nil {
		t.Settings = map[string]any{}
	}
	t.Subdomain = sub
	t.Active = true

	err = pg.Do(ctx, s.src, func(q pg.Querier) error {
		return q.QueryRow(ctx,
			`INSERT INTO tenants (id, name, subdomain, plan, settings, active)
			 VALUES ($1, $2, $3, $4, $5, true)
			 RETURNING created_at, updated_at`,
			t.ID, t.Name, t.Subdomain, string(t.Plan), t.Settings,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
	})
	if pg.IsDuplicateKeyError(err) {
		return tenant.ErrSubdomainTaken
	}
	return err
}

// GetByID returns the tenant with id, active or not.
func (s *TenantStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// GetBySubdomain returns the tenant owning subdomain, active or not.
// Callers decide what an inactive tenant means for them.
func (s *TenantStore) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	return s.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE subdomain = $1`, subdomain)
}

// Update saves name, plan and settings and refreshes updated_at.
// The subdomain never changes once assigned.
func (s *TenantStore) Update(ctx context.Context, t *tenant.Tenant) error {
	if !t.Plan.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlan, t.Plan)
	}
	if t.Settings == nil {
		t.Settings = map[string]any{}
	}
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		return q.QueryRow(ctx,
			`UPDATE tenants SET name = $2, plan = $3, settings = $4, updated_at = now()
			 WHERE id = $1
			 RETURNING updated_at`,
			t.ID, t.Name, string(t.Plan), t.Settings,
		).Scan(&t.UpdatedAt)
	})
	if pg.IsNotFoundError(err) {
		return tenant.ErrTenantNotFound
	}
	return err
}

// Deactivate marks the tenant inactive. Tenants are never deleted.
func (s *TenantStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	return pg.Do(ctx, s.src, func(q pg.Querier) error {
		tag, err := q.Exec(ctx, `UPDATE tenants SET active = false, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return tenant.ErrTenantNotFound
		}
		return nil
	})
}

// ListActive returns active tenants ordered by name.
func (s *TenantStore) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		rows, err := q.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE active ORDER BY name, id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTenant(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	return out, err
}

func (s *TenantStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		return q.QueryRow(ctx, `SELECT count(*) FROM tenants WHERE active`).Scan(&n)
	})
	return n, err
}

func (s *TenantStore) getOne(ctx context.Context, query string, arg any) (*tenant.Tenant, error) {
	var t *tenant.Tenant
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		var err error
		t, err = scanTenant(q.QueryRow(ctx, query, arg))
		return err
	})
	if pg.IsNotFoundError(err) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		t    tenant.Tenant
		plan string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &plan, &t.Settings, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Plan = tenant.Plan(plan)
	return &t, nil
}
