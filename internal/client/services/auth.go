// Package services contains the application services behind the SocietyHub
// CLI: authentication on top of the session cache, and page listing that
// combines the REST resources with the persisted page settings.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

// Session is the part of the session cache the services use.
type Session interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context)
	CurrentUser(ctx context.Context) *models.User
	UpdateUser(ctx context.Context, u models.User)
	Guard(ctx context.Context, area session.Area) (session.Decision, *models.User)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login / Logout: start and end a session.
//   - Register: create a resident account, then log in as it.
//   - RefreshProfile: re-read the profile from the server into the session.
//   - UpdateProfile, ChangePassword: profile edits for the current user.
//   - Users: list society users; admins only.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
	RefreshProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p api.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error
	Users(ctx context.Context) ([]models.User, error)
}

type authService struct {
	session Session
	auth    *api.AuthAPI
	log     logging.Logger
}

func NewAuthService(s Session, auth *api.AuthAPI, log logging.Logger) AuthService {
	return &authService{session: s, auth: auth, log: log}
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := a.session.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	a.log.Info(ctx, "logged in", "username", u.Username, "role", u.Role)
	return u, nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
	a.log.Info(ctx, "logged out")
}

// Register creates the account and logs in with the username the server
// derives from the flat number.
func (a *authService) Register(ctx context.Context, req api.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := a.auth.Register(ctx, req); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	u, err := a.session.Login(ctx, req.Username(), req.Password)
	if err != nil {
		return nil, fmt.Errorf("login after registration: %w", err)
	}
	return u, nil
}

func (a *authService) RefreshProfile(ctx context.Context) (*models.User, error) {
	if a.session.CurrentUser(ctx) == nil {
		return nil, common.ErrNotLoggedIn
	}

	u, err := a.auth.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile error: %w", err)
	}
	a.session.UpdateUser(ctx, u)
	return &u, nil
}

func (a *authService) UpdateProfile(ctx context.Context, p api.ProfileUpdate) (*models.User, error) {
	if a.session.CurrentUser(ctx) == nil {
		return nil, common.ErrNotLoggedIn
	}

	u, err := a.auth.UpdateProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("profile update error: %w", err)
	}
	a.session.UpdateUser(ctx, u)
	return &u, nil
}

func (a *authService) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) error {
	if req.NewPassword != req.NewPasswordConfirm {
		return fmt.Errorf("new passwords do not match")
	}
	return a.auth.ChangePassword(ctx, req)
}

func (a *authService) Users(ctx context.Context) ([]models.User, error) {
	d, _ := a.session.Guard(ctx, session.AreaAdmin)
	if !d.Allowed {
		if d.Redirect == session.PathLogin {
			return nil, common.ErrNotLoggedIn
		}
		return nil, common.ErrForbidden
	}
	return a.auth.Users(ctx)
}
