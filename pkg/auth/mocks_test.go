package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

// MockUserStorage is a mock implementation of auth.UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user *auth.User, hash []byte) error {
	args := m.Called(ctx, user, hash)
	return args.Error(0)
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockUserStorage) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

func (m *MockUserStorage) UpdateRole(ctx context.Context, userID uuid.UUID, role rbac.Role, perms rbac.PermissionSet) error {
	args := m.Called(ctx, userID, role, perms)
	return args.Error(0)
}

func (m *MockUserStorage) UpdatePermissions(ctx context.Context, userID uuid.UUID, perms rbac.PermissionSet) error {
	args := m.Called(ctx, userID, perms)
	return args.Error(0)
}

func (m *MockUserStorage) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockUserStorage) Deactivate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserStorage) CountActiveUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockEmailSender is a mock implementation of email.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type stubTenants struct {
	byID map[uuid.UUID]*tenant.Tenant
}

func (s *stubTenants) GetBySubdomain(_ context.Context, sub string) (*tenant.Tenant, error) {
	for _, t := range s.byID {
		if t.Subdomain == sub {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *stubTenants) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (d *memDenylist) Revoke(_ context.Context, id string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.revoked[id]; ok {
		return false, nil
	}
	d.revoked[id] = ttl
	return true, nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[id]
	return ok, nil
}

func (d *memDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

const testPassword = "Sh00ting-Stars"

type fixture struct {
	users    *MockUserStorage
	mailer   *MockEmailSender
	denylist *memDenylist
	clock    *testClock
	issuer   *jwt.Issuer
	tenant   *tenant.Tenant
	inactive *tenant.Tenant
	tenants  *stubTenants
	svc      *auth.Service
}

// quotaUsers adds the transactional quota insert to MockUserStorage.
type quotaUsers struct {
	*MockUserStorage
}

func (q quotaUsers) CreateUserWithinLimit(ctx context.Context, user *auth.User, hash []byte, limit int) error {
	args := q.Called(ctx, user, hash, limit)
	return args.Error(0)
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()

	f := &fixture{
		users:    &MockUserStorage{},
		mailer:   &MockEmailSender{},
		denylist: &memDenylist{revoked: map[string]time.Duration{}},
		clock:    &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		tenant: &tenant.Tenant{
			ID: uuid.New(), Name: "ClientCo", Subdomain: "clientco", Plan: tenant.PlanBasic, Active: true,
		},
		inactive: &tenant.Tenant{
			ID: uuid.New(), Name: "Gone", Subdomain: "gone", Plan: tenant.PlanBasic, Active: false,
		},
	}

	signer, err := jwt.NewFromString("auth-test-signing-key-0123456789")
	require.NoError(t, err)
	f.issuer = jwt.NewIssuer(signer, jwt.WithClock(f.clock.Now), jwt.WithDenylist(f.denylist))

	f.tenants = &stubTenants{byID: map[uuid.UUID]*tenant.Tenant{
		f.tenant.ID:   f.tenant,
		f.inactive.ID: f.inactive,
	}}

	opts = append([]auth.Option{
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithClock(f.clock.Now),
	}, opts...)
	f.svc = auth.NewService(f.users, f.tenants, f.issuer, rbac.DefaultAuthorizer(), opts...)
	return f
}

// bound returns a context bound to the fixture tenant.
func (f *fixture) bound(t *testing.T) context.Context {
	t.Helper()
	ctx, scope := tenant.NewScope(context.Background())
	require.NoError(t, scope.Bind(f.tenant.ID))
	return ctx
}

func (f *fixture) newUser(t *testing.T, role rbac.Role) *auth.User {
	t.Helper()
	perms, err := rbac.DefaultAuthorizer().DefaultPermissions(role)
	require.NoError(t, err)
	return &auth.User{
		ID:            uuid.New(),
		TenantID:      f.tenant.ID,
		Email:         "ana@clientco.com",
		FirstName:     "Ana",
		LastName:      "Lima",
		Role:          role,
		PermissionSet: perms,
		Active:        true,
		CreatedAt:     f.clock.Now(),
	}
}

func hashOf(t *testing.T, password string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

// boundTo matches contexts whose tenant scope is bound to id.
func boundTo(id uuid.UUID) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		cur, ok := tenant.Current(ctx)
		return ok && cur == id
	})
}
