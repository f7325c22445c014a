package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAuthenticator(t *testing.T) {
	a := NewStaticAuthenticator(map[string]Identity{
		"token-1": {UserID: "u-1", Email: "one@example.com"},
	})

	id, err := a.Authenticate(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)

	_, err = a.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	a.AddToken("token-2", Identity{UserID: "u-2"})
	id, err = a.Authenticate(context.Background(), "token-2")
	require.NoError(t, err)
	assert.Equal(t, "u-2", id.UserID)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc123", BearerToken("Bearer abc123"))
	assert.Equal(t, "abc123", BearerToken("bearer abc123"))
	assert.Empty(t, BearerToken(""))
	assert.Empty(t, BearerToken("Basic abc123"))
	assert.Empty(t, BearerToken("Bearer "))
}
