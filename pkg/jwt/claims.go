package jwt

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims is the payload of every token issued by an Issuer.
// Subject is the user's email within the tenant. The subject, tenant and
// role of a decoded token are read directly from Subject, Tenant and Role.
type Claims struct {
	StandardClaims
	Tenant uuid.UUID `json:"tenant"`
	Role   string    `json:"role"`
	Kind   Kind      `json:"kind"`
}

// ValidAt checks temporal claims and the presence of the identity claims.
func (c Claims) ValidAt(now time.Time) error {
	if err := c.StandardClaims.ValidAt(now); err != nil {
		return err
	}
	if c.Subject == "" || c.Tenant == uuid.Nil || c.Role == "" || c.ExpiresAt == 0 {
		return ErrInvalidClaims
	}
	if !c.Kind.Valid() {
		return ErrKindMismatch
	}
	return nil
}

// Remaining returns how long the token stays valid after now.
func (c Claims) Remaining(now time.Time) time.Duration {
	d := time.Unix(c.ExpiresAt, 0).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
