package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/societyhub/internal/client/client"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     map[string][]string
	fail     map[string]error
}

func newFakeExec() *fakeExec {
	return &fakeExec{args: map[string][]string{}, fail: map[string]error{}}
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	if args != nil {
		f.args[name] = args
	}
	err := f.fail[name]
	delete(f.fail, name)
	return err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	return f.record("register", nil)
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) Whoami(context.Context) error      { return f.record("whoami", nil) }
func (f *fakeExec) Profile(context.Context) error     { return f.record("profile", nil) }
func (f *fakeExec) EditProfile(context.Context) error { return f.record("editprofile", nil) }
func (f *fakeExec) Passwd(context.Context) error      { return f.record("passwd", nil) }
func (f *fakeExec) Users(context.Context) error       { return f.record("users", nil) }
func (f *fakeExec) Pages(context.Context) error       { return f.record("pages", nil) }
func (f *fakeExec) Settings(context.Context) error    { return f.record("settings", nil) }
func (f *fakeExec) List(_ context.Context, a []string) error {
	return f.record("list", a)
}
func (f *fakeExec) Filter(_ context.Context, a []string) error {
	return f.record("filter", a)
}
func (f *fakeExec) Search(_ context.Context, a []string) error {
	return f.record("search", a)
}
func (f *fakeExec) Sort(_ context.Context, a []string) error {
	return f.record("sort", a)
}
func (f *fakeExec) Columns(_ context.Context, a []string) error {
	return f.record("columns", a)
}
func (f *fakeExec) PageSize(_ context.Context, a []string) error {
	return f.record("pagesize", a)
}
func (f *fakeExec) AutoRefresh(_ context.Context, a []string) error {
	return f.record("refresh", a)
}
func (f *fakeExec) Reset(_ context.Context, a []string) error {
	return f.record("reset", a)
}
func (f *fakeExec) Export(_ context.Context, a []string) error {
	return f.record("export", a)
}
func (f *fakeExec) Import(_ context.Context, a []string) error {
	return f.record("import", a)
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	lines := capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"l notices",
		"filter notices priority high",
		"search notices water tank",
		"sort notices title desc",
		"pagesize 10",
		"reset notices",
		"foobar",
		"exit",
		"whoami",
	}, "\n")

	exec := newFakeExec()
	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input))

	assert.Equal(t, []string{"login", "list", "filter", "search", "sort", "pagesize", "reset"}, exec.calls)
	assert.Equal(t, []string{"notices", "water", "tank"}, exec.args["search"])
	assert.Equal(t, []string{"notices", "priority", "high"}, exec.args["filter"])

	assert.Contains(t, *lines, helpGuest)
	assert.Contains(t, *lines, helpUser)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "society (status) >")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrints(t)

	exec := newFakeExec()
	runREPL(context.Background(), exec, func() string { return "" }, rdr("pages\nusers"))

	assert.Equal(t, []string{"pages", "users"}, exec.calls)
}

func TestRunREPL_ExpiredSessionPromptsLogin(t *testing.T) {
	lines := capturePrints(t)

	exec := newFakeExec()
	exec.loggedIn = true
	exec.fail["list"] = fmt.Errorf("%w: refresh rejected", client.ErrAuthExpired)

	runREPL(context.Background(), exec, func() string { return "" }, rdr("list notices\nexit\n"))

	assert.Equal(t, []string{"list", "login"}, exec.calls)
	assert.Contains(t, *lines, "Your session has expired. Please log in again.")
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	lines := capturePrints(t)

	exec := newFakeExec()
	exec.fail["users"] = &client.APIError{StatusCode: http.StatusForbidden, Detail: "You do not have permission to perform this action."}
	exec.fail["pages"] = errors.New("boom")
	exec.fail["whoami"] = &client.NetworkError{Method: http.MethodGet, Path: "/auth/profile/", Err: errors.New("dial tcp: refused")}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("users\npages\nwhoami\n"))

	assert.Contains(t, *lines, "error: You do not have permission to perform this action.")
	assert.Contains(t, *lines, "error: boom")
	assert.Contains(t, *lines, "error: the server could not be reached, check your connection")
}
