package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shutterdesk/core/pkg/email"
	"github.com/shutterdesk/core/pkg/logger"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/tenant"
	"github.com/shutterdesk/core/pkg/validator"
)

// CreateUser adds a user to the tenant bound in ctx. The email must be unique
// within the tenant and the tenant's plan must have room for another active
// user. The permission set is the role's default at this moment.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	tid, err := tenant.MustCurrent(ctx)
	if err != nil {
		return nil, err
	}

	in.Email = normalizeEmail(in.Email)
	if err := validator.Apply(
		validator.ValidEmail("email", in.Email),
		validator.RequiredString("first_name", in.FirstName),
		validator.MaxLenString("first_name", in.FirstName, 100),
		validator.RequiredString("last_name", in.LastName),
		validator.MaxLenString("last_name", in.LastName, 100),
		validator.OneOf("role", in.Role, rbac.Roles()),
		validator.StrongPassword("password", in.Password, s.passwordStrength),
		validator.NotCommonPassword("password", in.Password),
	); err != nil {
		return nil, err
	}

	perms, err := s.authz.DefaultPermissions(in.Role)
	if err != nil {
		return nil, err
	}

	t, err := s.tenants.GetByID(ctx, tid)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	count, err := s.users.CountActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	limit := t.Plan.Limits().MaxUsers
	if count >= limit {
		return nil, fmt.Errorf("%w: %s plan allows %d users", tenant.ErrQuotaExceeded, t.Plan.DisplayName(), limit)
	}

	_, err = s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &User{
		ID:            uuid.New(),
		TenantID:      tid,
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Role:          in.Role,
		PermissionSet: perms,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if qs, ok := s.users.(QuotaUserStorage); ok {
		err = qs.CreateUserWithinLimit(ctx, user, hash, limit)
	} else {
		err = s.users.CreateUser(ctx, user, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		logger.UserID(user.ID),
		logger.Role(user.Role),
		logger.Component("auth"),
	)
	s.sendWelcome(ctx, t, user)
	return user, nil
}

// GetUser returns a user of the tenant bound in ctx.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, id)
}

// ChangeRole assigns role and replaces the stored permission set with the
// role's current default. Earlier explicit grants are discarded.
func (s *Service) ChangeRole(ctx context.Context, userID uuid.UUID, role rbac.Role) (*User, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	perms, err := s.authz.DefaultPermissions(role)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, userID, role, perms); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	u.Role, u.PermissionSet, u.UpdatedAt = role, perms, s.now().UTC()
	return u, nil
}

// GrantPermissions adds explicit permissions on top of the stored set.
func (s *Service) GrantPermissions(ctx context.Context, userID uuid.UUID, perms ...rbac.Permission) (*User, error) {
	return s.mutatePermissions(ctx, userID, perms, rbac.PermissionSet.With)
}

// RevokePermissions removes permissions from the stored set.
func (s *Service) RevokePermissions(ctx context.Context, userID uuid.UUID, perms ...rbac.Permission) (*User, error) {
	return s.mutatePermissions(ctx, userID, perms, rbac.PermissionSet.Without)
}

func (s *Service) mutatePermissions(
	ctx context.Context,
	userID uuid.UUID,
	perms []rbac.Permission,
	op func(rbac.PermissionSet, ...rbac.Permission) rbac.PermissionSet,
) (*User, error) {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return nil, err
	}
	for _, p := range perms {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", rbac.ErrUnknownPermission, p)
		}
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := op(u.PermissionSet, perms...)
	if next.Equal(u.PermissionSet) {
		return u, nil
	}
	if err := s.users.UpdatePermissions(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}
	u.PermissionSet, u.UpdatedAt = next, s.now().UTC()
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return err
	}
	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	return s.storePassword(ctx, userID, next)
}

// DeactivateUser disables a user. Users are never hard deleted.
func (s *Service) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := tenant.MustCurrent(ctx); err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deactivated", logger.UserID(userID), logger.Component("auth"))
	return nil
}

func (s *Service) storePassword(ctx context.Context, userID uuid.UUID, password string) error {
	if err := validator.Apply(
		validator.StrongPassword("password", password, s.passwordStrength),
		validator.NotCommonPassword("password", password),
	); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	return nil
}

func (s *Service) sendWelcome(ctx context.Context, t *tenant.Tenant, u *User) {
	if s.mailer == nil || s.links == nil {
		return
	}
	msg, err := email.WelcomeEmail(u.Email, u.FirstName, t.Name, s.links.LoginURL(t))
	if err == nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		err = s.mailer.SendEmail(ctx, msg)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to send welcome email",
			logger.UserID(u.ID),
			logger.Error(err),
			logger.Component("auth"),
		)
	}
}
