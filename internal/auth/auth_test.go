package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticator(t *testing.T) {
	a := NewAuthenticator([]int64{42, 7, 42}, nil)

	assert.True(t, a.IsUserAllowed(42))
	assert.True(t, a.IsUserAllowed(7))
	assert.False(t, a.IsUserAllowed(8))
	assert.Equal(t, 2, a.AllowedUsersCount())
}

func TestAuthenticator_Empty(t *testing.T) {
	a := NewAuthenticator(nil, nil)

	assert.False(t, a.IsUserAllowed(1))
	assert.Zero(t, a.AllowedUsersCount())
}
