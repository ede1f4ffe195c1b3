// ABOUTME: Tests for JWT session token minting and verification
// ABOUTME: Covers round trips, expiry, tampering and wrong-secret rejection

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"))

	token, err := issuer.Generate("guest@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", email)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"))

	token, err := issuer.Generate("guest@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"))
	other := NewJWTIssuer([]byte("different-secret"))

	token, err := issuer.Generate("guest@example.com", time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_Garbage(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"))

	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashSecret_RoundTrip(t *testing.T) {
	hash, err := HashSecret("swordfish")
	require.NoError(t, err)

	assert.True(t, CompareSecret(hash, "swordfish"))
	assert.False(t, CompareSecret(hash, "SWORDFISH"))
	assert.False(t, CompareSecret(hash, ""))
}
