// Package session is the client-side session cache: the access token, the
// refresh token and the user object of the signed-in user, kept in durable
// storage under the accessToken, refreshToken and user keys.
//
// The three keys are written together and read together. A session missing
// any part, or whose user blob does not parse, is treated as logged out.
// Storage failures are logged and never surface from the read paths.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
}

// ErrNoAuthenticator is returned by Login when no Authenticator was set.
var ErrNoAuthenticator = errors.New("session: no authenticator configured")

var sessionKeys = []string{common.KeyAccessToken, common.KeyRefreshToken, common.KeyUser}

type Cache struct {
	repo kv.Repository
	log  logging.Logger

	mu   sync.Mutex
	auth Authenticator
}

func New(repo kv.Repository, log logging.Logger) *Cache {
	return &Cache{repo: repo, log: log.With("component", "session")}
}

// SetAuthenticator sets the collaborator used by Login. The HTTP facade
// needs the cache as its token store before the auth API exists, hence the
// setter.
func (c *Cache) SetAuthenticator(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

// Login authenticates and stores the resulting session. On failure nothing
// is written and the authenticator's error is returned unchanged.
func (c *Cache) Login(ctx context.Context, username, password string) (*models.User, error) {
	c.mu.Lock()
	auth := c.auth
	c.mu.Unlock()

	if auth == nil {
		return nil, ErrNoAuthenticator
	}

	s, err := auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !s.Complete() {
		return nil, fmt.Errorf("%w: incomplete login response", common.ErrInvalidSession)
	}

	if err := c.Save(ctx, s); err != nil {
		c.log.Error(ctx, "error saving session", "err", err)
	}

	u := s.User
	return &u, nil
}

// Save writes all three session keys in one atomic batch.
func (c *Cache) Save(ctx context.Context, s models.Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.repo.SetMany(ctx, map[string][]byte{
		common.KeyAccessToken:  []byte(s.AccessToken),
		common.KeyRefreshToken: []byte(s.RefreshToken),
		common.KeyUser:         userJSON,
	})
}

// Logout removes the session. Calling it without a session is a no-op.
func (c *Cache) Logout(ctx context.Context) {
	c.Clear(ctx)
}

// Clear deletes all three session keys.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.DeleteMany(ctx, sessionKeys...); err != nil {
		c.log.Error(ctx, "error clearing session", "err", err)
	}
}

// CurrentUser returns the signed-in user, or nil when any part of the
// session is absent. A user entry that fails to parse, or that decodes to
// a user without id, username or known role, is deleted.
func (c *Cache) CurrentUser(ctx context.Context) *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	access := c.get(ctx, common.KeyAccessToken)
	refresh := c.get(ctx, common.KeyRefreshToken)
	raw := c.get(ctx, common.KeyUser)

	if len(raw) == 0 {
		return nil
	}

	var u models.User
	err := json.Unmarshal(raw, &u)
	if err == nil && !u.Valid() {
		err = common.ErrInvalidSession
	}
	if err != nil {
		c.log.Warn(ctx, "discarding corrupt user entry", "err", err)
		if err := c.repo.Delete(ctx, common.KeyUser); err != nil {
			c.log.Error(ctx, "error deleting corrupt user entry", "err", err)
		}
		return nil
	}

	if len(access) == 0 || len(refresh) == 0 {
		return nil
	}
	return &u
}

// UpdateUser replaces the stored user object and leaves the tokens alone.
func (c *Cache) UpdateUser(ctx context.Context, u models.User) {
	if !u.Valid() {
		c.log.Warn(ctx, "ignoring incomplete user", "id", u.ID, "username", u.Username)
		return
	}

	b, err := json.Marshal(u)
	if err != nil {
		c.log.Error(ctx, "error encoding user", "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Set(ctx, common.KeyUser, b); err != nil {
		c.log.Error(ctx, "error saving user", "err", err)
	}
}

func (c *Cache) AccessToken(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.get(ctx, common.KeyAccessToken))
}

func (c *Cache) RefreshToken(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.get(ctx, common.KeyRefreshToken))
}

// SetAccessToken stores a refreshed access token.
func (c *Cache) SetAccessToken(ctx context.Context, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Set(ctx, common.KeyAccessToken, []byte(token)); err != nil {
		c.log.Error(ctx, "error saving access token", "err", err)
	}
}

func (c *Cache) get(ctx context.Context, key string) []byte {
	v, err := c.repo.Get(ctx, key)
	if err != nil {
		c.log.Error(ctx, "error reading session", "key", key, "err", err)
		return nil
	}
	return v
}
