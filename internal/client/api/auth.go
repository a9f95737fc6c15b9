package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
)

// Doer is the request primitive of the HTTP facade.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

const (
	PathLogin          = "/auth/login/"
	PathRegister       = "/auth/register/"
	PathProfile        = "/auth/profile/"
	PathChangePassword = "/auth/change-password/"
	PathUsers          = "/auth/users/"
)

type AuthAPI struct {
	c Doer
}

func NewAuthAPI(c Doer) *AuthAPI {
	return &AuthAPI{c: c}
}

type loginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// Login exchanges credentials for a token pair and the user object.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (models.Session, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := a.c.Do(ctx, http.MethodPost, PathLogin, nil, body, &resp); err != nil {
		return models.Session{}, err
	}
	return models.Session{AccessToken: resp.Access, RefreshToken: resp.Refresh, User: resp.User}, nil
}

// RegisterRequest is a resident self-registration. The backend derives the
// username from the flat number; see Username.
type RegisterRequest struct {
	FlatNumber      string `json:"flat_number"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Society         int    `json:"society"`
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Username returns the login name the backend assigns: the flat number
// with everything but ASCII letters and digits removed, lowercased.
func (r RegisterRequest) Username() string {
	return strings.ToLower(nonAlnum.ReplaceAllString(r.FlatNumber, ""))
}

func (r RegisterRequest) Validate() error {
	switch {
	case r.Username() == "":
		return fmt.Errorf("please enter a valid flat number")
	case r.Password == "":
		return fmt.Errorf("password is required")
	case r.Password != r.PasswordConfirm:
		return fmt.Errorf("passwords do not match")
	case r.FirstName == "":
		return fmt.Errorf("first name is required")
	case r.Society == 0:
		return fmt.Errorf("please select a society")
	}
	return nil
}

func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	var u models.User
	err := a.c.Do(ctx, http.MethodPost, PathRegister, nil, req, &u)
	return u, err
}

func (a *AuthAPI) Profile(ctx context.Context) (models.User, error) {
	var u models.User
	err := a.c.Do(ctx, http.MethodGet, PathProfile, nil, nil, &u)
	return u, err
}

// ProfileUpdate carries the editable profile fields; empty ones are not sent.
type ProfileUpdate struct {
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	Address          string `json:"address,omitempty"`
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, p ProfileUpdate) (models.User, error) {
	var u models.User
	err := a.c.Do(ctx, http.MethodPut, PathProfile, nil, p, &u)
	return u, err
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (a *AuthAPI) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return a.c.Do(ctx, http.MethodPost, PathChangePassword, nil, req, nil)
}

// Users lists all users of the caller's society. Admin only on the server.
func (a *AuthAPI) Users(ctx context.Context) ([]models.User, error) {
	var raw listBody
	if err := a.c.Do(ctx, http.MethodGet, PathUsers, nil, nil, &raw); err != nil {
		return nil, err
	}
	var users []models.User
	if err := raw.decode(&users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (a *AuthAPI) UpdateUser(ctx context.Context, id int, fields map[string]any) (models.User, error) {
	var u models.User
	err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("%s%d/", PathUsers, id), nil, fields, &u)
	return u, err
}
