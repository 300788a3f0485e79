package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/auth"
	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/isolation"
	"github.com/shutterdesk/core/pkg/rbac"
	"github.com/shutterdesk/core/pkg/validator"
)

// currentUser returns the principal the coordinator loaded.
func currentUser(ctx handler.Context) (*auth.User, error) {
	s, ok := rbac.SubjectFromContext(ctx)
	if !ok {
		return nil, isolation.ErrUnauthenticated
	}
	u, ok := s.(*auth.User)
	if !ok {
		return nil, isolation.ErrUnauthenticated
	}
	return u, nil
}

func (a *api) me(ctx handler.Context, _ struct{}) handler.Response {
	u, err := currentUser(ctx)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(auth.NewProfile(u))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *api) changeOwnPassword(ctx handler.Context, req changePasswordRequest) handler.Response {
	u, err := currentUser(ctx)
	if err != nil {
		return fail(err)
	}
	if err := validator.Apply(validator.RequiredString("current_password", req.CurrentPassword)); err != nil {
		return fail(err)
	}
	if err := a.auth.ChangePassword(ctx, u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(err)
	}
	return handler.Empty()
}

type createUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (a *api) createUser(ctx handler.Context, req createUserRequest) handler.Response {
	u, err := a.auth.CreateUser(ctx, auth.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      rbac.Role(req.Role),
	})
	if err != nil {
		return fail(err)
	}
	return handler.JSON(auth.NewProfile(u), handler.WithJSONStatus(http.StatusCreated))
}

type userRequest struct {
	ID uuid.UUID `path:"id"`
}

func (a *api) getUser(ctx handler.Context, req userRequest) handler.Response {
	u, err := a.auth.GetUser(ctx, req.ID)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(auth.NewProfile(u))
}

type changeRoleRequest struct {
	ID   uuid.UUID `path:"id" json:"-"`
	Role string    `json:"role"`
}

func (a *api) changeRole(ctx handler.Context, req changeRoleRequest) handler.Response {
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return fail(err)
	}
	u, err := a.auth.ChangeRole(ctx, req.ID, role)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(auth.NewProfile(u))
}

type updatePermissionsRequest struct {
	ID     uuid.UUID `path:"id" json:"-"`
	Grant  []string  `json:"grant"`
	Revoke []string  `json:"revoke"`
}

// updatePermissions applies explicit overrides on top of the role snapshot.
func (a *api) updatePermissions(ctx handler.Context, req updatePermissionsRequest) handler.Response {
	grant, err := parsePermissions(req.Grant)
	if err != nil {
		return fail(err)
	}
	revoke, err := parsePermissions(req.Revoke)
	if err != nil {
		return fail(err)
	}

	var u *auth.User
	if len(grant) > 0 {
		if u, err = a.auth.GrantPermissions(ctx, req.ID, grant...); err != nil {
			return fail(err)
		}
	}
	if len(revoke) > 0 {
		if u, err = a.auth.RevokePermissions(ctx, req.ID, revoke...); err != nil {
			return fail(err)
		}
	}
	if u == nil {
		if u, err = a.auth.GetUser(ctx, req.ID); err != nil {
			return fail(err)
		}
	}
	return handler.JSON(auth.NewProfile(u))
}

func parsePermissions(tags []string) ([]rbac.Permission, error) {
	perms := make([]rbac.Permission, 0, len(tags))
	for _, tag := range tags {
		p, err := rbac.ParsePermission(tag)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}

func (a *api) deactivateUser(ctx handler.Context, req userRequest) handler.Response {
	if err := a.auth.DeactivateUser(ctx, req.ID); err != nil {
		return fail(err)
	}
	return handler.Empty()
}
