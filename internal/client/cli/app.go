package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/dmitrijs2005/societyhub/internal/client/services"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/client/settings"
	"github.com/dmitrijs2005/societyhub/internal/logging"
)

// Session is the part of the session cache the CLI reads directly.
type Session interface {
	CurrentUser(ctx context.Context) *models.User
	AccessToken(ctx context.Context) string
	Guard(ctx context.Context, area session.Area) (session.Decision, *models.User)
}

// Deps are the collaborators of an App.
type Deps struct {
	Auth     services.AuthService
	Pages    services.PageService
	Settings *settings.Store
	Session  Session
	// Storage backs "reset --all". It may be nil.
	Storage kv.Repository
	Log     logging.Logger
	// SearchDebounce delays search term writes; see settings.Store.SetSearchTermAfter.
	SearchDebounce time.Duration
	In             io.Reader
	Out            io.Writer
}

type App struct {
	auth     services.AuthService
	pages    services.PageService
	settings *settings.Store
	session  Session
	storage  kv.Repository
	log      logging.Logger
	debounce time.Duration
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(d Deps) *App {
	in, out := d.In, d.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		auth:     d.Auth,
		pages:    d.Pages,
		settings: d.Settings,
		session:  d.Session,
		storage:  d.Storage,
		log:      d.Log,
		debounce: d.SearchDebounce,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run greets the user and runs the REPL until exit or EOF. Pending
// settings writes are flushed on return.
func (a *App) Run(ctx context.Context) {
	defer a.settings.Close(context.WithoutCancel(ctx))

	fmt.Fprintln(a.out, "Welcome to SocietyHub CLI (type 'help' for commands)")
	if u := a.session.CurrentUser(ctx); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s\n", u.DisplayName())
	} else {
		fmt.Fprintln(a.out, "Type 'login' or 'register' to start")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser(context.Background()) != nil
}

func (a *App) getStatus() string {
	u := a.session.CurrentUser(context.Background())
	if u == nil {
		return "(guest)"
	}
	return fmt.Sprintf("(%s %s)", u.Username, u.Role)
}
