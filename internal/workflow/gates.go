// Package workflow holds the product approval/publication state machine and
// the role gates the console applies before asking the server.
package workflow

import (
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// Actor is the signed-in console user as seen by the gates.
type Actor struct {
	Email string
	Role  enums.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdministrator
}

// CanEdit reports whether actor may initiate editor-level actions on p.
// Default users never can; product managers only when listed among the
// product's related users; administrators always.
func CanEdit(actor Actor, p products.Product) bool {
	switch actor.Role {
	case enums.UserRoleAdministrator:
		return true
	case enums.UserRoleProductManager:
		return p.HasRelatedUser(actor.Email)
	default:
		return false
	}
}

// ReadOnly reports whether the content editors are locked for actor: while
// the product awaits approval or is live, or when actor cannot edit it.
func ReadOnly(actor Actor, p products.Product) bool {
	if p.Status == enums.ProductStatusPendingApproval || p.Status == enums.ProductStatusPublished {
		return true
	}
	return !CanEdit(actor, p)
}

// HasBeenPublished reports whether p is live or flagged as published.
func HasBeenPublished(p products.Product) bool {
	return p.Published || p.Status == enums.ProductStatusPublished
}
