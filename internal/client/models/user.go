// Package models defines the client-side data model of SocietyHub: the
// authenticated user, the session triple and the persisted UI settings.
package models

import "strings"

// Role is the authorization role of a user as issued by the backend.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCommittee Role = "COMMITTEE"
	RoleResident  Role = "RESIDENT"
	RoleSecurity  Role = "SECURITY"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCommittee, RoleResident, RoleSecurity:
		return true
	}
	return false
}

// User mirrors the user object returned by the auth endpoints.
type User struct {
	ID        int    `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role      Role   `json:"role" yaml:"role"`
	// Society is nil for users not yet attached to a society.
	Society *int `json:"society" yaml:"society"`
}

// Valid reports whether u carries the identity every signed-in user has:
// an id, a username and a known role.
func (u User) Valid() bool {
	return u.ID != 0 && u.Username != "" && u.Role.Valid()
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns "First Last", falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Session is the triple written on login and removed on logout.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// Complete reports whether both tokens and a valid user are present.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && s.User.Valid()
}
