package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/jwt"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
)

// User is a member of exactly one tenant. PermissionSet is a snapshot taken
// from the role defaults when the user is created or the role changes; it is
// never recomputed on read.
type User struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	Email         string             `json:"email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Role          rbac.Role          `json:"role"`
	PermissionSet rbac.PermissionSet `json:"permissions"`
	LastLoginAt   *time.Time         `json:"last_login_at,omitempty"`
	Active        bool               `json:"active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Permissions implements rbac.Subject.
func (u *User) Permissions() rbac.PermissionSet { return u.PermissionSet }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile is the public view of a user returned to clients.
type Profile struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	FullName    string             `json:"full_name"`
	Role        rbac.Role          `json:"role"`
	Permissions rbac.PermissionSet `json:"permissions"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func NewProfile(u *User) Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        u.Role,
		Permissions: u.PermissionSet,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenResponse is returned by Login and Refresh.
type TokenResponse struct {
	jwt.TokenPair
	User Profile `json:"user"`
}

// NewUser holds the input of CreateUser.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      rbac.Role
}

// UserStorage persists users. Every method runs against the tenant bound in
// ctx; implementations must not be able to see other tenants' rows.
// Lookups return ErrUserNotFound when nothing matches and CreateUser returns
// ErrEmailAlreadyExists on a duplicate (tenant, email) pair.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User, passwordHash []byte) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role rbac.Role, perms rbac.PermissionSet) error
	UpdatePermissions(ctx context.Context, userID uuid.UUID, perms rbac.PermissionSet) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
	CountActiveUsers(ctx context.Context) (int, error)
}

// QuotaUserStorage is implemented by stores that check the plan's user limit
// and insert in one transaction. CreateUser prefers it when available.
type QuotaUserStorage interface {
	CreateUserWithinLimit(ctx context.Context, user *User, passwordHash []byte, limit int) error
}

// LinkBuilder renders the links placed in outgoing emails.
type LinkBuilder interface {
	PasswordResetURL(t *tenant.Tenant, token string) string
	LoginURL(t *tenant.Tenant) string
}

// SubdomainLinks builds links on the tenant's own subdomain,
// e.g. https://clientco.example.com/reset-password?token=...
type SubdomainLinks struct {
	Scheme     string
	BaseDomain string
}

func (l SubdomainLinks) base(t *tenant.Tenant) string {
	scheme := l.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s.%s", scheme, t.Subdomain, l.BaseDomain)
}

func (l SubdomainLinks) PasswordResetURL(t *tenant.Tenant, token string) string {
	return l.base(t) + "/reset-password?token=" + token
}

func (l SubdomainLinks) LoginURL(t *tenant.Tenant) string {
	return l.base(t) + "/login"
}
