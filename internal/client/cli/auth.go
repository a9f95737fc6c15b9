package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/session"
	"github.com/dmitrijs2005/societyhub/internal/common"
)

// getSimpleText, getInt and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getInt        = GetInt
	getPassword   = GetPassword
)

// Login prompts for a username and password and starts a session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username (flat number for residents)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", u.DisplayName(), u.Role)
	return nil
}

// Register prompts for a resident registration and logs in as the new user.
func (a *App) Register(ctx context.Context) error {
	var req api.RegisterRequest
	var err error

	prompts := []struct {
		prompt string
		dst    *string
	}{
		{"Enter flat number (e.g. A-101)", &req.FlatNumber},
		{"Enter first name", &req.FirstName},
		{"Enter last name (optional)", &req.LastName},
		{"Enter email (optional)", &req.Email},
		{"Enter phone (optional)", &req.Phone},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.prompt, a.out); err != nil {
			return err
		}
	}
	if req.Society, err = getInt(a.reader, "Enter society id", 0, a.out); err != nil {
		return err
	}
	if req.Password, err = getPassword("Enter password", a.out); err != nil {
		return err
	}
	if req.PasswordConfirm, err = getPassword("Confirm password", a.out); err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered. Your username is %s\n", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami prints the cached user and the access token expiry.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.CurrentUser(ctx)
	if u == nil {
		return common.ErrNotLoggedIn
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "username\t%s\n", u.Username)
	fmt.Fprintf(tw, "name\t%s\n", u.DisplayName())
	fmt.Fprintf(tw, "role\t%s\n", u.Role)
	if u.Society != nil {
		fmt.Fprintf(tw, "society\t%d\n", *u.Society)
	}
	if exp, err := session.TokenExpiry(a.session.AccessToken(ctx)); err == nil {
		fmt.Fprintf(tw, "token expires\t%s\n", exp.Local().Format(time.RFC1123))
	}
	return tw.Flush()
}

// Profile re-reads the profile from the server and prints it.
func (a *App) Profile(ctx context.Context) error {
	if _, err := a.auth.RefreshProfile(ctx); err != nil {
		return err
	}
	return a.Whoami(ctx)
}

// EditProfile prompts for profile fields; empty answers keep the current value.
func (a *App) EditProfile(ctx context.Context) error {
	var p api.ProfileUpdate
	var err error

	prompts := []struct {
		prompt string
		dst    *string
	}{
		{"First name (empty to keep)", &p.FirstName},
		{"Last name (empty to keep)", &p.LastName},
		{"Email (empty to keep)", &p.Email},
		{"Phone (empty to keep)", &p.Phone},
	}
	for _, q := range prompts {
		if *q.dst, err = getSimpleText(a.reader, q.prompt, a.out); err != nil {
			return err
		}
	}

	u, err := a.auth.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated for %s\n", u.DisplayName())
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	var req api.ChangePasswordRequest
	var err error

	if req.OldPassword, err = getPassword("Current password", a.out); err != nil {
		return err
	}
	if req.NewPassword, err = getPassword("New password", a.out); err != nil {
		return err
	}
	if req.NewPasswordConfirm, err = getPassword("Confirm new password", a.out); err != nil {
		return err
	}

	if err := a.auth.ChangePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// Users lists the society's users. Admin only.
func (a *App) Users(ctx context.Context) error {
	users, err := a.auth.Users(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.DisplayName(), u.Role)
	}
	return tw.Flush()
}
