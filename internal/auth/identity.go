package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Role is the caller's role on the marketplace
type Role string

const (
	RoleProjectCreator Role = "project_creator"
	RoleCreditBuyer    Role = "credit_buyer"
	RoleVerifier       Role = "verifier"
	RoleAdmin          Role = "admin"
)

// Identity is the resolved caller identity attached to each request
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	Role   Role      `json:"role"`
}

// CanAccessBuyer reports whether the identity may act on the given buyer's
// data: the buyer themselves, or staff with the admin or verifier role.
func (i *Identity) CanAccessBuyer(buyerID uuid.UUID) bool {
	if i == nil {
		return false
	}
	if i.UserID == buyerID {
		return true
	}
	return i.Role == RoleAdmin || i.Role == RoleVerifier
}

const identityContextKey = "auth.identity"

// SetIdentity stores the identity on the gin context
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityContextKey, identity)
}

// IdentityFromContext retrieves the identity set by the middleware.
// The second return is false for unauthenticated requests.
func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok && identity != nil
}
