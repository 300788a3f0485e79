package tenant

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Tenant is an isolated customer organization. All business data is
// partitioned by tenant id.
type Tenant struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Subdomain string         `json:"subdomain"`
	Plan      Plan           `json:"plan"`
	Settings  map[string]any `json:"settings,omitempty"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Plan is the subscription tier of a tenant.
type Plan string

const (
	PlanBasic        Plan = "BASIC"
	PlanProfessional Plan = "PROFESSIONAL"
	PlanEnterprise   Plan = "ENTERPRISE"
)

// Limits are the quotas attached to a plan.
type Limits struct {
	MaxPhotos int `json:"max_photos"`
	MaxUsers  int `json:"max_users"`
}

var planLimits = map[Plan]Limits{
	PlanBasic:        {MaxPhotos: 1000, MaxUsers: 10},
	PlanProfessional: {MaxPhotos: 5000, MaxUsers: 25},
	PlanEnterprise:   {MaxPhotos: 50000, MaxUsers: 100},
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	_, ok := planLimits[p]
	return ok
}

// Limits returns the quotas of p. Unknown plans get zero limits.
func (p Plan) Limits() Limits {
	return planLimits[p]
}

// DisplayName returns the human readable plan name.
func (p Plan) DisplayName() string {
	switch p {
	case PlanBasic:
		return "Basic"
	case PlanProfessional:
		return "Professional"
	case PlanEnterprise:
		return "Enterprise"
	}
	return string(p)
}

// Provider loads tenants. Implementations return ErrTenantNotFound when no
// tenant matches. GetBySubdomain expects an already normalized subdomain.
type Provider interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}

const maxSubdomainLength = 63

var (
	subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

	// reservedSubdomains can never be assigned to a tenant.
	reservedSubdomains = []string{"www", "api", "admin", "app", "static"}
)

// NormalizeSubdomain case-folds s and checks it is a valid DNS label.
func NormalizeSubdomain(s string) (string, error) {
	// Casers carry state and must not be shared between goroutines.
	s = cases.Fold().String(strings.TrimSpace(s))
	if s == "" || len(s) > maxSubdomainLength || !subdomainRegex.MatchString(s) {
		return "", ErrInvalidIdentifier
	}
	return s, nil
}

// ValidateNewSubdomain normalizes a subdomain requested at onboarding and
// rejects reserved names.
func ValidateNewSubdomain(s string) (string, error) {
	sub, err := NormalizeSubdomain(s)
	if err != nil {
		return "", err
	}
	if slices.Contains(reservedSubdomains, sub) {
		return "", ErrReservedSubdomain
	}
	return sub, nil
}
