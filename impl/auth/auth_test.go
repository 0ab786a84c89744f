package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserByToken(t *testing.T) {
	a := New("secret")

	user, err := a.UserByToken("secret")
	require.NoError(t, err)
	assert.Equal(t, "api", user.Username)

	_, err = a.UserByToken("secre")
	assert.Error(t, err)

	_, err = a.UserByToken("")
	assert.Error(t, err)
}

func TestUserByToken_NotConfigured(t *testing.T) {
	_, err := New("").UserByToken("")
	assert.Error(t, err)
}
