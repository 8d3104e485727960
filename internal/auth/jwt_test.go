package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager("0123456789abcdef0123456789abcdef", time.Minute)

	token, expires, err := mgr.GenerateAccessToken(42, []string{"admin"})
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	claims, err := mgr.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, claims.Roles)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("0123456789abcdef0123456789abcdef", time.Minute)
	verifier := NewJWTManager("fedcba9876543210fedcba9876543210", time.Minute)

	token, _, err := issuer.GenerateAccessToken(1, nil)
	require.NoError(t, err)

	_, err = verifier.ParseAndValidate(token)
	assert.Error(t, err)
}
