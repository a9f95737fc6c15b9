package session

import (
	"context"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
)

// Area is a protected part of the application.
type Area int

const (
	// AreaResident requires any signed-in user.
	AreaResident Area = iota
	// AreaAdmin requires a signed-in ADMIN.
	AreaAdmin
)

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// Decision is the outcome of a guard check. When Allowed is false, Redirect
// names where the caller should go instead.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard decides whether the current session may enter area. The role is
// read from storage on every call.
func (c *Cache) Guard(ctx context.Context, area Area) (Decision, *models.User) {
	u := c.CurrentUser(ctx)
	if u == nil {
		return Decision{Redirect: PathLogin}, nil
	}

	if area == AreaAdmin && u.Role != models.RoleAdmin {
		return Decision{Redirect: PathDashboard}, u
	}

	return Decision{Allowed: true}, u
}
