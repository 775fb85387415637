package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserOwner(t *testing.T) {
	userID := uuid.New()
	owner := UserOwner(userID)

	assert.True(t, owner.IsUser())
	assert.False(t, owner.IsAnonymous())
	assert.False(t, owner.IsZero())
	assert.Equal(t, userID, owner.UserID())
	assert.Empty(t, owner.Token())
	assert.Equal(t, "user:"+userID.String(), owner.String())
	require.NoError(t, owner.Validate())
}

func TestAnonymousOwner(t *testing.T) {
	owner := AnonymousOwner("  visitor-42  ")

	assert.True(t, owner.IsAnonymous())
	assert.False(t, owner.IsUser())
	assert.Equal(t, "visitor-42", owner.Token())
	assert.Equal(t, uuid.Nil, owner.UserID())
	assert.Equal(t, "anon:visitor-42", owner.String())
	require.NoError(t, owner.Validate())
}

func TestZeroOwnerIsInvalid(t *testing.T) {
	var owner CartOwner

	assert.True(t, owner.IsZero())
	assert.False(t, owner.IsUser())
	assert.False(t, owner.IsAnonymous())
	assert.Equal(t, "none", owner.String())
	require.Error(t, owner.Validate())

	// A blank token collapses to the zero owner.
	require.Error(t, AnonymousOwner("   ").Validate())
}
