package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanAccessBuyer(t *testing.T) {
	buyerID := uuid.New()

	self := &Identity{UserID: buyerID, Role: RoleCreditBuyer}
	assert.True(t, self.CanAccessBuyer(buyerID))

	admin := &Identity{UserID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.CanAccessBuyer(buyerID))

	verifier := &Identity{UserID: uuid.New(), Role: RoleVerifier}
	assert.True(t, verifier.CanAccessBuyer(buyerID))

	otherBuyer := &Identity{UserID: uuid.New(), Role: RoleCreditBuyer}
	assert.False(t, otherBuyer.CanAccessBuyer(buyerID))

	creator := &Identity{UserID: uuid.New(), Role: RoleProjectCreator}
	assert.False(t, creator.CanAccessBuyer(buyerID))

	var missing *Identity
	assert.False(t, missing.CanAccessBuyer(buyerID))
}
