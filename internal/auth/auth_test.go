package auth

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	a, err := New(&Config{JWTSecret: "secret", JWTTTL: "1h"})
	require.NoError(t, err)
	return a
}

func identityFromToken(t *testing.T, a *Auth, token string) (*Identity, error) {
	t.Helper()
	decoded, err := a.JwtAuth.Decode(token)
	require.NoError(t, err)
	ctx := jwtauth.NewContext(context.Background(), decoded, nil)
	return FromContext(ctx)
}

func TestIdentityRoundTrip(t *testing.T) {
	a := newTestAuth(t)

	brandID := 42
	token, err := a.NewToken(Identity{BrandID: &brandID})
	require.NoError(t, err)

	id, err := identityFromToken(t, a, token)
	require.NoError(t, err)
	assert.False(t, id.Admin)
	require.NotNil(t, id.BrandID)
	assert.Equal(t, 42, *id.BrandID)
}

func TestIdentityAdmin(t *testing.T) {
	a := newTestAuth(t)

	token, err := a.NewToken(Identity{Admin: true})
	require.NoError(t, err)

	id, err := identityFromToken(t, a, token)
	require.NoError(t, err)
	assert.True(t, id.Admin)
	assert.Nil(t, id.BrandID)
}

func TestIdentityEmpty(t *testing.T) {
	a := newTestAuth(t)

	token, err := a.NewToken(Identity{})
	require.NoError(t, err)

	id, err := identityFromToken(t, a, token)
	require.NoError(t, err)
	assert.True(t, id.Empty())

	brandID := 7
	assert.False(t, (&Identity{BrandID: &brandID}).Empty())
	assert.False(t, (&Identity{Admin: true}).Empty())
}

func TestFromContextWithoutToken(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.Error(t, err)
}

func TestNewRejectsBadTTL(t *testing.T) {
	_, err := New(&Config{JWTSecret: "secret", JWTTTL: "soon"})
	assert.Error(t, err)
}
