package session

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	admin := models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	committee := models.User{ID: 2, Username: "sec", Role: models.RoleCommittee}

	cases := []struct {
		name     string
		user     *models.User
		area     Area
		expected Decision
	}{
		{"anonymous resident area", nil, AreaResident, Decision{Redirect: PathLogin}},
		{"anonymous admin area", nil, AreaAdmin, Decision{Redirect: PathLogin}},
		{"resident in resident area", &models.User{ID: 3, Username: "asha", Role: models.RoleResident}, AreaResident, Decision{Allowed: true}},
		{"committee in admin area", &committee, AreaAdmin, Decision{Redirect: PathDashboard}},
		{"admin in admin area", &admin, AreaAdmin, Decision{Allowed: true}},
		{"admin in resident area", &admin, AreaResident, Decision{Allowed: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			c, _ := newCache(t)
			if tc.user != nil {
				require.NoError(t, c.Save(ctx, models.Session{AccessToken: "A", RefreshToken: "R", User: *tc.user}))
			}

			d, u := c.Guard(ctx, tc.area)
			assert.Equal(t, tc.expected, d)
			if tc.user == nil {
				assert.Nil(t, u)
			} else {
				require.NotNil(t, u)
				assert.Equal(t, tc.user.Role, u.Role)
			}
		})
	}
}

func TestGuard_RereadsRoleEveryCall(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)
	require.NoError(t, c.Save(ctx, models.Session{AccessToken: "A", RefreshToken: "R", User: models.User{ID: 1, Username: "root", Role: models.RoleAdmin}}))

	d, _ := c.Guard(ctx, AreaAdmin)
	assert.True(t, d.Allowed)

	c.UpdateUser(ctx, models.User{ID: 1, Username: "root", Role: models.RoleResident})

	d, _ = c.Guard(ctx, AreaAdmin)
	assert.Equal(t, Decision{Redirect: PathDashboard}, d)

	c.Logout(ctx)
	d, _ = c.Guard(ctx, AreaAdmin)
	assert.Equal(t, Decision{Redirect: PathLogin}, d)
}

func TestGuard_EmptyUserEntryIsLoggedOut(t *testing.T) {
	for _, blob := range []string{"null", "{}"} {
		t.Run(blob, func(t *testing.T) {
			ctx := context.Background()
			c, repo := newCache(t)
			require.NoError(t, repo.SetMany(ctx, map[string][]byte{
				common.KeyAccessToken:  []byte("A"),
				common.KeyRefreshToken: []byte("R"),
				common.KeyUser:         []byte(blob),
			}))

			d, u := c.Guard(ctx, AreaResident)
			assert.Equal(t, Decision{Redirect: PathLogin}, d)
			assert.Nil(t, u)
		})
	}
}
