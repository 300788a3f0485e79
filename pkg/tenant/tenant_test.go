package tenant_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterdesk/core/pkg/tenant"
)

func TestPlanLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan      tenant.Plan
		photos    int
		users     int
		name      string
		wantValid bool
	}{
		{tenant.PlanBasic, 1000, 10, "Basic", true},
		{tenant.PlanProfessional, 5000, 25, "Professional", true},
		{tenant.PlanEnterprise, 50000, 100, "Enterprise", true},
		{tenant.Plan("FREE"), 0, 0, "FREE", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantValid, tt.plan.Valid())
			assert.Equal(t, tt.photos, tt.plan.Limits().MaxPhotos)
			assert.Equal(t, tt.users, tt.plan.Limits().MaxUsers)
			assert.Equal(t, tt.name, tt.plan.DisplayName())
		})
	}
}

func TestNormalizeSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"acme", "acme", false},
		{"  ClientCo ", "clientco", false},
		{"studio-42", "studio-42", false},
		{"a", "a", false},
		{"", "", true},
		{"-acme", "", true},
		{"acme-", "", true},
		{"ac_me", "", true},
		{"acme.io", "", true},
		{"stüdio", "", true},
		{strings.Repeat("a", 64), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := tenant.NormalizeSubdomain(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNewSubdomain(t *testing.T) {
	t.Parallel()

	got, err := tenant.ValidateNewSubdomain("Acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got)

	_, err = tenant.ValidateNewSubdomain("WWW")
	assert.ErrorIs(t, err, tenant.ErrReservedSubdomain)

	_, err = tenant.ValidateNewSubdomain("bad label")
	assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
}
