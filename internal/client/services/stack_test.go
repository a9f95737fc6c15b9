package services

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/client"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/client/settings"
	"github.com/dmitrijs2005/societyhub/internal/devserver"
	"github.com/dmitrijs2005/societyhub/internal/logging"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// stack is the client wired against an in-process dev server, the same
// way cmd/cli wires it.
type stack struct {
	clock    *clock
	server   *devserver.Server
	repo     *kv.MemoryRepository
	session  *session.Cache
	http     *client.HTTPClient
	settings *settings.Store
	auth     AuthService
	pages    PageService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	log := logging.NewNop()

	clk := &clock{t: time.Now()}
	srv, err := devserver.New(devserver.Options{
		Secret:        []byte("test"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Now:           clk.Now,
		BcryptCost:    bcrypt.MinCost,
		AdminUsername: "admin",
		AdminPassword: "admin123",
		SeedData:      true,
	}, log)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	repo := kv.NewMemoryRepository()
	sess := session.New(repo, log)
	hc, err := client.New(ts.URL+"/api", sess, log)
	require.NoError(t, err)

	authAPI := api.NewAuthAPI(hc)
	sess.SetAuthenticator(authAPI)

	store := settings.Open(ctx, repo, log)
	t.Cleanup(func() { store.Close(context.Background()) })

	return &stack{
		clock:    clk,
		server:   srv,
		repo:     repo,
		session:  sess,
		http:     hc,
		settings: store,
		auth:     NewAuthService(sess, authAPI, log),
		pages:    NewPageService(api.NewResources(hc), store),
	}
}
