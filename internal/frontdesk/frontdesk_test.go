// ABOUTME: Tests for key issue and revoke administration
// ABOUTME: Issue never supersedes existing keys; revoke is idempotent

package frontdesk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gahenax/hotel-gateway/internal/store"
)

func setupDesk(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return New(s, s, s), s
}

func seedGuestAndRoom(t *testing.T, s *store.SQLiteStore) (*store.Guest, *store.Room) {
	t.Helper()

	g := &store.Guest{
		Email:        "guest@example.com",
		Name:         "Guest",
		Role:         store.RoleCustomer,
		PasswordHash: "x",
	}
	require.NoError(t, s.CreateGuest(context.Background(), g))

	r := &store.Room{Slug: "suite-101", Name: "Suite 101", AllowedPlans: []string{"pro"}}
	require.NoError(t, s.CreateRoom(context.Background(), r))
	return g, r
}

func TestIssue(t *testing.T) {
	svc, s := setupDesk(t)
	g, r := seedGuestAndRoom(t, s)

	key, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, g.ID, key.GuestID)
	assert.Equal(t, r.ID, key.RoomID)
	assert.Equal(t, "pro", key.Plan)
	assert.Equal(t, store.KeyStatusActive, key.Status)
	assert.True(t, key.ExpiresAt.After(key.IssuedAt))
}

func TestIssue_UnknownGuest(t *testing.T) {
	svc, s := setupDesk(t)
	seedGuestAndRoom(t, s)

	_, err := svc.Issue(context.Background(), "nobody@example.com", "suite-101", "pro", time.Hour)
	assert.ErrorIs(t, err, ErrGuestNotFound)
}

func TestIssue_UnknownRoom(t *testing.T) {
	svc, s := setupDesk(t)
	g, _ := seedGuestAndRoom(t, s)

	_, err := svc.Issue(context.Background(), g.Email, "no-such-room", "pro", time.Hour)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestIssue_BadDuration(t *testing.T) {
	svc, s := setupDesk(t)
	g, r := seedGuestAndRoom(t, s)

	_, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", 0)
	assert.ErrorIs(t, err, ErrBadDuration)

	_, err = svc.Issue(context.Background(), g.Email, r.Slug, "pro", -time.Hour)
	assert.ErrorIs(t, err, ErrBadDuration)
}

func TestIssue_DoesNotSupersede(t *testing.T) {
	svc, s := setupDesk(t)
	g, r := seedGuestAndRoom(t, s)

	k1, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", time.Hour)
	require.NoError(t, err)
	k2, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", 2*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, k1.ID, k2.ID)

	// Both rows stay active and independently usable.
	usable, err := s.FindUsableKeys(context.Background(), g.ID, r.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, usable, 2)
}

func TestRevoke(t *testing.T) {
	svc, s := setupDesk(t)
	g, r := seedGuestAndRoom(t, s)

	key, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), key.ID))

	got, err := s.GetKey(context.Background(), key.ID)
	require.NoError(t, err)
	assert.Equal(t, store.KeyStatusRevoked, got.Status)
	require.NotNil(t, got.RevokedAt)
}

func TestRevoke_Idempotent(t *testing.T) {
	svc, s := setupDesk(t)
	g, r := seedGuestAndRoom(t, s)

	key, err := svc.Issue(context.Background(), g.Email, r.Slug, "pro", time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), key.ID))
	first, err := s.GetKey(context.Background(), key.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), key.ID))
	second, err := s.GetKey(context.Background(), key.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RevokedAt, second.RevokedAt)
}

func TestRevoke_Unknown(t *testing.T) {
	svc, _ := setupDesk(t)

	err := svc.Revoke(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
