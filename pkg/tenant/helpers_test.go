package tenant_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/tenant"
)

type mockProvider struct {
	mu      sync.RWMutex
	bySub   map[string]*tenant.Tenant
	calls   atomic.Int32
	failErr error
}

func newMockProvider() *mockProvider {
	return &mockProvider{bySub: make(map[string]*tenant.Tenant)}
}

func (m *mockProvider) addTenant(t *tenant.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySub[t.Subdomain] = t
}

func (m *mockProvider) GetBySubdomain(_ context.Context, subdomain string) (*tenant.Tenant, error) {
	m.calls.Add(1)
	if m.failErr != nil {
		return nil, m.failErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.bySub[subdomain]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *mockProvider) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	m.calls.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.bySub {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func createTestTenant(subdomain string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Name:      subdomain + " Studio",
		Subdomain: subdomain,
		Plan:      tenant.PlanBasic,
		Active:    active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
