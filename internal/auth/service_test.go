// ABOUTME: Tests for the session issuer service against a real SQLite store
// ABOUTME: Check-in failures are indistinguishable; resolution failures mean anonymous

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gahenax/hotel-gateway/internal/store"
)

func setupService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	issuer := NewJWTIssuer([]byte("test-secret"))
	return NewService(s, issuer, time.Hour), s
}

func registerGuest(t *testing.T, s *store.SQLiteStore, email, secret, role string) *store.Guest {
	t.Helper()

	hash, err := HashSecret(secret)
	require.NoError(t, err)

	g := &store.Guest{
		Email:        email,
		Name:         "Test Guest",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, s.CreateGuest(context.Background(), g))
	return g
}

func TestService_Checkin(t *testing.T) {
	svc, s := setupService(t)
	registerGuest(t, s, "alice@example.com", "opensesame", store.RoleCustomer)

	token, guest, err := svc.Checkin(context.Background(), "alice@example.com", "opensesame")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", guest.Email)
	assert.Equal(t, store.RoleCustomer, guest.Role)
}

func TestService_Checkin_WrongSecret(t *testing.T) {
	svc, s := setupService(t)
	registerGuest(t, s, "alice@example.com", "opensesame", store.RoleCustomer)

	_, _, err := svc.Checkin(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Checkin_UnknownEmail(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.Checkin(context.Background(), "nobody@example.com", "whatever")
	// Same error as a wrong secret: callers cannot probe for registered emails.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Resolve(t *testing.T) {
	svc, s := setupService(t)
	g := registerGuest(t, s, "alice@example.com", "opensesame", store.RoleAdmin)

	token, _, err := svc.Checkin(context.Background(), "alice@example.com", "opensesame")
	require.NoError(t, err)

	id := svc.Resolve(context.Background(), token)
	require.NotNil(t, id)
	assert.Equal(t, g.ID, id.GuestID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.True(t, id.IsAdmin())
}

func TestService_Resolve_BadToken(t *testing.T) {
	svc, _ := setupService(t)

	assert.Nil(t, svc.Resolve(context.Background(), ""))
	assert.Nil(t, svc.Resolve(context.Background(), "garbage"))
}

func TestService_Resolve_ExpiredToken(t *testing.T) {
	svc, s := setupService(t)
	registerGuest(t, s, "alice@example.com", "opensesame", store.RoleCustomer)

	issuer := NewJWTIssuer([]byte("test-secret"))
	token, err := issuer.Generate("alice@example.com", -time.Minute)
	require.NoError(t, err)

	assert.Nil(t, svc.Resolve(context.Background(), token))
}

func TestService_Resolve_GuestGone(t *testing.T) {
	svc, _ := setupService(t)

	// Valid token for an email no guest holds resolves to anonymous.
	issuer := NewJWTIssuer([]byte("test-secret"))
	token, err := issuer.Generate("ghost@example.com", time.Hour)
	require.NoError(t, err)

	assert.Nil(t, svc.Resolve(context.Background(), token))
}

func TestNewService_DefaultLifetime(t *testing.T) {
	_, s := setupService(t)

	svc := NewService(s, NewJWTIssuer([]byte("x")), 0)
	assert.Equal(t, DefaultTokenLifetime, svc.TokenLifetime())
}
