// ABOUTME: Tests for case mutations and their change capture rows
// ABOUTME: CREATE snapshots, per-field UPDATE rows, bare DELETE rows, no-op updates

package casefile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gahenax/hotel-gateway/internal/store"
)

func setupCasefile(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return New(s), s
}

func newCase(number string) *store.CaseRecord {
	return &store.CaseRecord{
		ID:         uuid.New().String(),
		CaseNumber: number,
		FiledOn:    "2026-03-15",
		Status:     "open",
		Parties:    "Smith v. Jones",
		Notes:      "initial filing",
	}
}

func changesFor(t *testing.T, s *store.SQLiteStore, entityID string) []*store.ChangeEntry {
	t.Helper()

	rows, err := s.ListChangeLog(context.Background(), store.ChangeLogFilter{EntityID: &entityID})
	require.NoError(t, err)
	return rows
}

func TestCreate_WritesSnapshot(t *testing.T) {
	svc, s := setupCasefile(t)
	c := newCase("2026-CV-001")

	require.NoError(t, svc.Create(context.Background(), "clerk@example.com", c))

	rows := changesFor(t, s, c.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, store.ChangeActionCreate, rows[0].Action)
	assert.Equal(t, "clerk@example.com", rows[0].Actor)
	assert.Equal(t, EntityCase, rows[0].Entity)
	assert.Nil(t, rows[0].Field)

	require.NotNil(t, rows[0].NewValue)
	var snapshot map[string]string
	require.NoError(t, json.Unmarshal([]byte(*rows[0].NewValue), &snapshot))
	assert.Equal(t, "2026-CV-001", snapshot["case_number"])
	assert.Equal(t, "open", snapshot["status"])
}

func TestCreate_BlankActorBecomesAnonymous(t *testing.T) {
	svc, s := setupCasefile(t)
	c := newCase("2026-CV-002")

	require.NoError(t, svc.Create(context.Background(), "", c))

	rows := changesFor(t, s, c.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, AnonymousActor, rows[0].Actor)
}

func TestCreate_DuplicateNumber(t *testing.T) {
	svc, s := setupCasefile(t)

	require.NoError(t, svc.Create(context.Background(), "clerk", newCase("2026-CV-003")))
	err := svc.Create(context.Background(), "clerk", newCase("2026-CV-003"))
	assert.ErrorIs(t, err, store.ErrDuplicateCase)

	// The failed insert must not leave a stray change row behind.
	all, listErr := s.ListChangeLog(context.Background(), store.ChangeLogFilter{})
	require.NoError(t, listErr)
	assert.Len(t, all, 1)
}

func TestUpdate_OneRowPerChangedField(t *testing.T) {
	svc, s := setupCasefile(t)
	c := newCase("2026-CV-004")
	require.NoError(t, svc.Create(context.Background(), "clerk", c))

	newStatus := "closed"
	newNotes := "settled out of court"
	updated, err := svc.Update(context.Background(), "judge@example.com", c.ID, Changes{
		Status: &newStatus,
		Notes:  &newNotes,
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", updated.Status)
	assert.Equal(t, "settled out of court", updated.Notes)

	action := store.ChangeActionUpdate
	rows, err := s.ListChangeLog(context.Background(), store.ChangeLogFilter{EntityID: &c.ID, Action: &action})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byField := map[string]*store.ChangeEntry{}
	for _, r := range rows {
		require.NotNil(t, r.Field)
		byField[*r.Field] = r
	}
	require.Contains(t, byField, "status")
	assert.Equal(t, "open", *byField["status"].OldValue)
	assert.Equal(t, "closed", *byField["status"].NewValue)
	require.Contains(t, byField, "notes")
	assert.Equal(t, "initial filing", *byField["notes"].OldValue)
}

func TestUpdate_UnchangedValueWritesNothing(t *testing.T) {
	svc, s := setupCasefile(t)
	c := newCase("2026-CV-005")
	require.NoError(t, svc.Create(context.Background(), "clerk", c))

	sameStatus := "open"
	got, err := svc.Update(context.Background(), "clerk", c.ID, Changes{Status: &sameStatus})
	require.NoError(t, err)
	assert.Equal(t, "open", got.Status)

	action := store.ChangeActionUpdate
	rows, err := s.ListChangeLog(context.Background(), store.ChangeLogFilter{EntityID: &c.ID, Action: &action})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdate_AbsentFieldsUntouched(t *testing.T) {
	svc, _ := setupCasefile(t)
	c := newCase("2026-CV-006")
	require.NoError(t, svc.Create(context.Background(), "clerk", c))

	newStatus := "stayed"
	updated, err := svc.Update(context.Background(), "clerk", c.ID, Changes{Status: &newStatus})
	require.NoError(t, err)
	assert.Equal(t, "stayed", updated.Status)
	assert.Equal(t, "Smith v. Jones", updated.Parties)
	assert.Equal(t, "initial filing", updated.Notes)
}

func TestUpdate_Unknown(t *testing.T) {
	svc, _ := setupCasefile(t)

	st := "closed"
	_, err := svc.Update(context.Background(), "clerk", "no-such-case", Changes{Status: &st})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete_SoftDeleteWithBareRow(t *testing.T) {
	svc, s := setupCasefile(t)
	c := newCase("2026-CV-007")
	require.NoError(t, svc.Create(context.Background(), "clerk", c))

	require.NoError(t, svc.Delete(context.Background(), "judge@example.com", c.ID))

	// Row survives with DeletedAt set.
	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)

	action := store.ChangeActionDelete
	rows, err := s.ListChangeLog(context.Background(), store.ChangeLogFilter{EntityID: &c.ID, Action: &action})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "judge@example.com", rows[0].Actor)
	assert.Nil(t, rows[0].Field)
	assert.Nil(t, rows[0].OldValue)
	assert.Nil(t, rows[0].NewValue)
}

func TestDelete_ThenUpdateFails(t *testing.T) {
	svc, _ := setupCasefile(t)
	c := newCase("2026-CV-008")
	require.NoError(t, svc.Create(context.Background(), "clerk", c))
	require.NoError(t, svc.Delete(context.Background(), "clerk", c.ID))

	st := "reopened"
	_, err := svc.Update(context.Background(), "clerk", c.ID, Changes{Status: &st})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestList_ExcludesDeletedByDefault(t *testing.T) {
	svc, _ := setupCasefile(t)
	a := newCase("2026-CV-009")
	b := newCase("2026-CV-010")
	require.NoError(t, svc.Create(context.Background(), "clerk", a))
	require.NoError(t, svc.Create(context.Background(), "clerk", b))
	require.NoError(t, svc.Delete(context.Background(), "clerk", b.ID))

	visible, err := svc.List(context.Background(), false, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, a.ID, visible[0].ID)

	all, err := svc.List(context.Background(), true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
