package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/societyhub/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Users(ctx context.Context) error
	Pages(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	Columns(ctx context.Context, args []string) error
	PageSize(ctx context.Context, args []string) error
	AutoRefresh(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Settings(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
}

const (
	helpGuest = "Available commands: register, login, exit"
	helpUser  = "Available commands: whoami, profile, editprofile, passwd, users, pages, (l)ist <page>, " +
		"filter <page> [key value|all], search <page> [term], sort <page> [field asc|desc], " +
		"columns <page> [a,b,c], pagesize [n], refresh <page> [seconds], reset [page|--all], " +
		"settings, export <file>, import <file>, logout, exit"
)

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit". The first token is the command, the rest are its arguments.
//
// Errors are printed and the loop continues. When the session has expired
// beyond refresh the user is told so and asked to log in again.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("society %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "editprofile":
			cmdErr = a.EditProfile(ctx)
		case "passwd":
			cmdErr = a.Passwd(ctx)
		case "users":
			cmdErr = a.Users(ctx)
		case "pages":
			cmdErr = a.Pages(ctx)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "filter":
			cmdErr = a.Filter(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "sort":
			cmdErr = a.Sort(ctx, args)
		case "columns":
			cmdErr = a.Columns(ctx, args)
		case "pagesize":
			cmdErr = a.PageSize(ctx, args)
		case "refresh":
			cmdErr = a.AutoRefresh(ctx, args)
		case "reset":
			cmdErr = a.Reset(ctx, args)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "import":
			cmdErr = a.Import(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr == nil {
			continue
		}
		if errors.Is(cmdErr, client.ErrAuthExpired) {
			printlnFn("Your session has expired. Please log in again.")
			if err := a.Login(ctx); err != nil {
				printlnFn("error:", errorMessage(err))
			}
			continue
		}
		printlnFn("error:", errorMessage(cmdErr))
	}
}

// errorMessage renders err for the user, preferring the server's message
// for API errors.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if client.IsNetworkError(err) {
		return "the server could not be reached, check your connection"
	}
	return err.Error()
}
