package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/tenant"
	"github.com/shutterdesk/core/pkg/token"
)

const purposePasswordReset = "password_reset"

// resetTokenPayload is signed with the reset secret. Fingerprint ties the
// token to the password hash it was issued for, so it stops working once the
// password changes.
type resetTokenPayload struct {
	TenantID    uuid.UUID `json:"tid"`
	UserID      uuid.UUID `json:"uid"`
	Purpose     string    `json:"sub"`
	Fingerprint string    `json:"fp"`
	ExpiresAt   int64     `json:"exp"`
}

// ForgotPassword mails a reset link to the user with emailAddr in the tenant
// owning subdomain. Unknown tenants and users are not reported, so callers
// cannot probe which accounts exist.
func (s *Service) ForgotPassword(ctx context.Context, subdomain, emailAddr string) error {
	if s.resetSecret == "" || s.mailer == nil || s.links == nil {
		return ErrPasswordResetDisabled
	}

	t, err := s.tenantBySubdomain(ctx, subdomain)
	if err != nil {
		s.logger.DebugContext(ctx, "password reset skipped: tenant lookup failed",
			slog.String("subdomain", subdomain),
			logger.Error(err),
			logger.Component("auth"),
		)
		return nil
	}

	return tenant.Run(ctx, t.ID, func(ctx context.Context) error {
		u, err := s.users.GetUserByEmail(ctx, normalizeEmail(emailAddr))
		if errors.Is(err, ErrUserNotFound) || (err == nil && !u.Active) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		hash, err := s.users.GetPasswordHash(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to load password hash: %w", err)
		}

		tok, err := token.Generate(resetTokenPayload{
			TenantID:    t.ID,
			UserID:      u.ID,
			Purpose:     purposePasswordReset,
			Fingerprint: fingerprint(hash),
			ExpiresAt:   s.now().Add(s.resetTTL).Unix(),
		}, s.resetSecret)
		if err != nil {
			return fmt.Errorf("failed to generate reset token: %w", err)
		}

		msg, err := email.PasswordResetEmail(u.Email, u.FirstName, t.Name, s.links.PasswordResetURL(t, tok), s.resetTTL)
		if err != nil {
			return err
		}
		if err := s.mailer.SendEmail(ctx, msg); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "password reset requested", logger.UserID(u.ID), logger.Component("auth"))
		return nil
	})
}

// ResetPassword sets a new password using a token from ForgotPassword.
// Each token can be used once.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if s.resetSecret == "" {
		return ErrPasswordResetDisabled
	}

	p, err := token.Parse[resetTokenPayload](resetToken, s.resetSecret)
	if err != nil {
		return errors.Join(ErrTokenInvalid, err)
	}
	if p.Purpose != purposePasswordReset || p.TenantID == uuid.Nil || p.UserID == uuid.Nil {
		return ErrTokenInvalid
	}
	if s.now().Unix() >= p.ExpiresAt {
		return ErrTokenExpired
	}

	t, err := s.tenants.GetByID(ctx, p.TenantID)
	if err != nil {
		return errors.Join(ErrTokenInvalid, err)
	}
	if !t.Active {
		return errors.Join(ErrTokenInvalid, tenant.ErrInactiveTenant)
	}

	return tenant.Run(ctx, t.ID, func(ctx context.Context) error {
		u, err := s.users.GetUserByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrTokenInvalid
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !u.Active {
			return errors.Join(ErrTokenInvalid, ErrUserInactive)
		}

		hash, err := s.users.GetPasswordHash(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrTokenInvalid
			}
			return fmt.Errorf("failed to load password hash: %w", err)
		}
		if subtle.ConstantTimeCompare([]byte(fingerprint(hash)), []byte(p.Fingerprint)) != 1 {
			return ErrTokenAlreadyUsed
		}
		if err := s.storePassword(ctx, p.UserID, newPassword); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "password reset", logger.UserID(p.UserID), logger.Component("auth"))
		return nil
	})
}

func fingerprint(hash []byte) string {
	sum := sha256.Sum256(hash)
	return hex.EncodeToString(sum[:8])
}
