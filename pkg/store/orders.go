package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/pg"
	"github.com/shutterdesk/core/pkg/tenant"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderShooting  OrderStatus = "SHOOTING"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a photo-delivery order. It only exists inside one tenant.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	TenantID   uuid.UUID   `json:"tenant_id"`
	Number     string      `json:"number"`
	ClientName string      `json:"client_name"`
	Status     OrderStatus `json:"status"`
	TotalCents int64       `json:"total_cents"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderStore reads and writes orders of the bound tenant.
type OrderStore struct {
	src pg.ConnSource
}

func NewOrderStore(src pg.ConnSource) *OrderStore {
	return &OrderStore{src: src}
}

// Create inserts o for the bound tenant. tenant_id is filled by the column
// default from the connection's tenant setting.
func (s *OrderStore) Create(ctx context.Context, o *Order) error {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		return q.QueryRow(ctx,
			`INSERT INTO orders (id, number, client_name, status, total_cents)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING tenant_id, created_at`,
			o.ID, o.Number, o.ClientName, string(o.Status), o.TotalCents,
		).Scan(&o.TenantID, &o.CreatedAt)
	})
	if pg.IsDuplicateKeyError(err) {
		return ErrDuplicateOrder
	}
	return err
}

// List returns the bound tenant's orders, newest first. It issues no tenant
// predicate: row-level security on the connection does the filtering.
func (s *OrderStore) List(ctx context.Context) ([]Order, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	var out []Order
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		rows, err := q.Query(ctx,
			`SELECT id, tenant_id, number, client_name, status, total_cents, created_at
			 FROM orders ORDER BY created_at DESC, number`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				o      Order
				status string
			)
			if err := rows.Scan(&o.ID, &o.TenantID, &o.Number, &o.ClientName, &status, &o.TotalCents, &o.CreatedAt); err != nil {
				return err
			}
			o.Status = OrderStatus(status)
			out = append(out, o)
		}
		return rows.Err()
	})
	return out, err
}

// Get returns one order of the bound tenant.
func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	var (
		o      Order
		status string
	)
	err := pg.Do(ctx, s.src, func(q pg.Querier) error {
		return q.QueryRow(ctx,
			`SELECT id, tenant_id, number, client_name, status, total_cents, created_at
			 FROM orders WHERE id = $1`, id,
		).Scan(&o.ID, &o.TenantID, &o.Number, &o.ClientName, &status, &o.TotalCents, &o.CreatedAt)
	})
	if pg.IsNotFoundError(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = OrderStatus(status)
	return &o, nil
}
