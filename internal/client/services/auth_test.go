package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/client"
	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerReq(flat string) api.RegisterRequest {
	return api.RegisterRequest{
		FlatNumber:      flat,
		Password:        "pw123456",
		PasswordConfirm: "pw123456",
		FirstName:       "Asha",
		Society:         1,
	}
}

func TestAuthService_LoginLogout(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	u, err := s.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NotEmpty(t, s.session.AccessToken(ctx))
	assert.NotEmpty(t, s.session.RefreshToken(ctx))

	s.auth.Logout(ctx)
	assert.Nil(t, s.session.CurrentUser(ctx))
	assert.Empty(t, s.session.AccessToken(ctx))
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, errors.Is(err, client.ErrAuthExpired))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message(), "No active account")
	assert.Nil(t, s.session.CurrentUser(ctx))
}

func TestAuthService_RegisterLogsIn(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	u, err := s.auth.Register(ctx, registerReq("A-101"))
	require.NoError(t, err)
	assert.Equal(t, "a101", u.Username)
	assert.Equal(t, models.RoleResident, u.Role)

	cur := s.session.CurrentUser(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, "a101", cur.Username)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	req := registerReq("A-101")
	req.PasswordConfirm = "other"
	_, err := s.auth.Register(ctx, req)
	require.Error(t, err)
	assert.Nil(t, s.session.CurrentUser(ctx))

	_, err = s.auth.Register(ctx, registerReq("A-101"))
	require.NoError(t, err)
	s.auth.Logout(ctx)

	_, err = s.auth.Register(ctx, registerReq("a 101"))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.FieldErrors, "flat_number")
	assert.Nil(t, s.session.CurrentUser(ctx))
}

func TestAuthService_RefreshAndRetry(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	stale := s.session.AccessToken(ctx)

	s.clock.Advance(2 * time.Minute)

	u, err := s.auth.UpdateProfile(ctx, api.ProfileUpdate{Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", u.Phone)

	assert.NotEqual(t, stale, s.session.AccessToken(ctx))
	cur := s.session.CurrentUser(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, "555-0100", cur.Phone)
}

func TestAuthService_FatalRefreshClearsSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.auth.RefreshProfile(ctx)
	require.ErrorIs(t, err, client.ErrAuthExpired)
	assert.Nil(t, s.session.CurrentUser(ctx))
	assert.Empty(t, s.session.AccessToken(ctx))
	assert.Empty(t, s.session.RefreshToken(ctx))
}

func TestAuthService_RequiresSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.RefreshProfile(ctx)
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
	_, err = s.auth.UpdateProfile(ctx, api.ProfileUpdate{Phone: "1"})
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
	_, err = s.auth.Users(ctx)
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestAuthService_Users(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, registerReq("B-201"))
	require.NoError(t, err)
	_, err = s.auth.Users(ctx)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = s.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	users, err := s.auth.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b201", users[1].Username)
}

func TestAuthService_ChangePassword(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	err = s.auth.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: "admin123", NewPassword: "a", NewPasswordConfirm: "b",
	})
	require.Error(t, err)

	err = s.auth.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: "nope", NewPassword: "n3w", NewPasswordConfirm: "n3w",
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	require.NoError(t, s.auth.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: "admin123", NewPassword: "n3w", NewPasswordConfirm: "n3w",
	}))
	s.auth.Logout(ctx)
	_, err = s.auth.Login(ctx, "admin", "n3w")
	require.NoError(t, err)
}
