// ABOUTME: Tests for access ledger store operations
// ABOUTME: Covers append defaults, filtering by room/guest/allow and limits

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryLog_Append(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	g := createTestGuest(t, s, RoleCustomer)
	r := createTestRoom(t, s, "suite", "pro")

	e := &EntryLogEntry{
		GuestID:   &g.ID,
		RoomID:    r.ID,
		Allow:     false,
		Reason:    "no_key",
		IP:        "203.0.113.9",
		UserAgent: "curl/8.0",
	}
	require.NoError(t, s.AppendEntryLog(ctx, e))

	// Generated defaults
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EntryActionEnterAttempt, e.Action)
}

func TestEntryLog_Append_AnonymousGuest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := createTestRoom(t, s, "suite", "pro")

	e := &EntryLogEntry{
		GuestID: nil, // unauthenticated attempt
		RoomID:  r.ID,
		Allow:   false,
		Reason:  "no_auth",
	}
	require.NoError(t, s.AppendEntryLog(ctx, e))

	entries, err := s.ListEntryLog(ctx, EntryLogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].GuestID)
}

func TestEntryLog_List_Filtering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	g := createTestGuest(t, s, RoleCustomer)
	r1 := createTestRoom(t, s, "alpha", "pro")
	r2 := createTestRoom(t, s, "beta", "pro")

	rows := []struct {
		guestID *string
		roomID  string
		allow   bool
		reason  string
	}{
		{&g.ID, r1.ID, true, "success"},
		{&g.ID, r2.ID, false, "no_key"},
		{nil, r1.ID, false, "no_auth"},
	}
	for i, row := range rows {
		e := &EntryLogEntry{
			GuestID:   row.guestID,
			RoomID:    row.roomID,
			Allow:     row.allow,
			Reason:    row.reason,
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.AppendEntryLog(ctx, e))
	}

	// By room
	entries, err := s.ListEntryLog(ctx, EntryLogFilter{RoomID: &r1.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// By guest
	entries, err = s.ListEntryLog(ctx, EntryLogFilter{GuestID: &g.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// By allow
	allowed := true
	entries, err = s.ListEntryLog(ctx, EntryLogFilter{Allow: &allowed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "success", entries[0].Reason)

	denied := false
	entries, err = s.ListEntryLog(ctx, EntryLogFilter{Allow: &denied})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEntryLog_List_NewestFirstAndLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := createTestRoom(t, s, "suite", "pro")
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		e := &EntryLogEntry{
			RoomID:    r.ID,
			Allow:     false,
			Reason:    "no_auth",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.AppendEntryLog(ctx, e))
	}

	entries, err := s.ListEntryLog(ctx, EntryLogFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
}
