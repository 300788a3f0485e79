package api_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/store"
	"github.com/shutterdesk/core/pkg/tenant"
)

type tenants map[uuid.UUID]*tenant.Tenant

func (m tenants) GetBySubdomain(_ context.Context, sub string) (*tenant.Tenant, error) {
	for _, t := range m {
		if t.Subdomain == sub {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m tenants) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

// fakeOrders keeps orders per tenant and, like row-level security, only
// ever shows the bound tenant's rows.
type fakeOrders struct {
	mu       sync.Mutex
	byTenant map[uuid.UUID][]store.Order
	panicNow bool
	lastCtx  context.Context
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byTenant: make(map[uuid.UUID][]store.Order)}
}

func (f *fakeOrders) add(tid uuid.UUID, number string) store.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := store.Order{ID: uuid.New(), TenantID: tid, Number: number, ClientName: "Client " + number, Status: store.OrderPending}
	f.byTenant[tid] = append(f.byTenant[tid], o)
	return o
}

func (f *fakeOrders) List(ctx context.Context) ([]store.Order, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCtx = ctx
	if f.panicNow {
		panic("orders: corrupted row")
	}
	return append([]store.Order(nil), f.byTenant[tid]...), nil
}

func (f *fakeOrders) Get(ctx context.Context, id uuid.UUID) (*store.Order, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byTenant[tid] {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, store.ErrOrderNotFound
}

func (f *fakeOrders) Create(ctx context.Context, o *store.Order) error {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byTenant[tid] {
		if existing.Number == o.Number {
			return store.ErrDuplicateOrder
		}
	}
	o.ID, o.TenantID, o.Status, o.CreatedAt = uuid.New(), tid, store.OrderPending, time.Now()
	f.byTenant[tid] = append(f.byTenant[tid], *o)
	return nil
}

// fakeAuth serves principals from memory and records mutating calls.
type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]*auth.User
	issuer    *jwt.Issuer
	password  string
	loginSub  string
	loggedOut []string
	roles     map[uuid.UUID]rbac.Role
}

func (f *fakeAuth) userByEmail(ctx context.Context, email string) (*auth.User, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.TenantID != tid {
		return nil, errors.Join(auth.ErrUnauthorized, auth.ErrUserNotFound)
	}
	if !u.Active {
		return nil, errors.Join(auth.ErrUnauthorized, auth.ErrUserInactive)
	}
	return u, nil
}

func (f *fakeAuth) userByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id && u.TenantID == tid {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeAuth) Login(ctx context.Context, subdomain, email, password string) (*auth.TokenResponse, error) {
	f.mu.Lock()
	f.loginSub = subdomain
	u, ok := f.users[email]
	f.mu.Unlock()
	if !ok || password != f.password {
		return nil, auth.ErrInvalidCredentials
	}
	pair, err := f.issuer.IssuePair(u.Email, u.TenantID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &auth.TokenResponse{TokenPair: pair, User: auth.NewProfile(u)}, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*auth.TokenResponse, error) {
	claims, err := f.issuer.Decode(ctx, refreshToken, jwt.KindRefresh)
	if err != nil {
		return nil, errors.Join(auth.ErrUnauthorized, err)
	}
	pair, err := f.issuer.IssuePair(claims.Subject, claims.Tenant, claims.Role)
	if err != nil {
		return nil, err
	}
	return &auth.TokenResponse{TokenPair: pair}, nil
}

func (f *fakeAuth) Logout(_ context.Context, accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, accessToken, refreshToken)
	return nil
}

func (f *fakeAuth) ForgotPassword(context.Context, string, string) error { return nil }

func (f *fakeAuth) ResetPassword(_ context.Context, token, _ string) error {
	if token != "good-token" {
		return auth.ErrTokenInvalid
	}
	return nil
}

func (f *fakeAuth) Principal(ctx context.Context, email string) (*auth.User, error) {
	return f.userByEmail(ctx, email)
}

func (f *fakeAuth) CreateUser(ctx context.Context, in auth.NewUser) (*auth.User, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := rbac.DefaultAuthorizer().DefaultPermissions(in.Role)
	if err != nil {
		return nil, err
	}
	u := &auth.User{ID: uuid.New(), TenantID: tid, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Role: in.Role, PermissionSet: perms, Active: true}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[in.Email]; ok {
		return nil, auth.ErrEmailAlreadyExists
	}
	f.users[in.Email] = u
	return u, nil
}

func (f *fakeAuth) GetUser(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return f.userByID(ctx, id)
}

func (f *fakeAuth) ChangeRole(ctx context.Context, id uuid.UUID, role rbac.Role) (*auth.User, error) {
	u, err := f.userByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[id] = role
	cp := *u
	cp.Role = role
	return &cp, nil
}

func (f *fakeAuth) GrantPermissions(ctx context.Context, id uuid.UUID, perms ...rbac.Permission) (*auth.User, error) {
	u, err := f.userByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.PermissionSet = u.PermissionSet.With(perms...)
	return u, nil
}

func (f *fakeAuth) RevokePermissions(ctx context.Context, id uuid.UUID, perms ...rbac.Permission) (*auth.User, error) {
	u, err := f.userByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.PermissionSet = u.PermissionSet.Without(perms...)
	return u, nil
}

func (f *fakeAuth) ChangePassword(ctx context.Context, id uuid.UUID, current, _ string) error {
	if _, err := f.userByID(ctx, id); err != nil {
		return err
	}
	if current != f.password {
		return auth.ErrInvalidCredentials
	}
	return nil
}

func (f *fakeAuth) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	u, err := f.userByID(ctx, id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Active = false
	return nil
}
