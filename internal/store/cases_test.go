// ABOUTME: Tests for case record and change log store operations
// ABOUTME: Covers transactional writes, soft delete and change log filtering

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCase(t *testing.T, s *SQLiteStore, number string) *CaseRecord {
	t.Helper()

	c := &CaseRecord{
		CaseNumber: number,
		FiledOn:    "2026-01-15",
		Status:     "ACTIVO",
		Parties:    "Perez v. Gomez",
	}
	require.NoError(t, s.WithTx(context.Background(), func(tx *sql.Tx) error {
		return s.CreateCaseTx(context.Background(), tx, c)
	}))
	return c
}

func TestCaseStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := createTestCase(t, s, "11001-2026-00042")
	assert.NotEmpty(t, c.ID)

	got, err := s.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "11001-2026-00042", got.CaseNumber)
	assert.Nil(t, got.DeletedAt)
}

func TestCaseStore_DuplicateNumber(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestCase(t, s, "11001-2026-00042")

	dup := &CaseRecord{CaseNumber: "11001-2026-00042", FiledOn: "2026-02-01", Status: "ACTIVO", Parties: "X v. Y"}
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.CreateCaseTx(ctx, tx, dup)
	})
	assert.ErrorIs(t, err, ErrDuplicateCase)
}

func TestCaseStore_UpdateAndSoftDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := createTestCase(t, s, "11001-2026-00042")

	c.Status = "ARCHIVADO"
	c.Notes = "closed by settlement"
	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.UpdateCaseTx(ctx, tx, c)
	}))

	got, err := s.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ARCHIVADO", got.Status)
	assert.Equal(t, "closed by settlement", got.Notes)

	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.SoftDeleteCaseTx(ctx, tx, c.ID, time.Now().UTC())
	}))

	// Row stays, deleted_at set
	got, err = s.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	// Updating a deleted record fails
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.UpdateCaseTx(ctx, tx, c)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaseStore_ListExcludesDeleted(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	kept := createTestCase(t, s, "11001-2026-00001")
	gone := createTestCase(t, s, "11001-2026-00002")

	require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.SoftDeleteCaseTx(ctx, tx, gone.ID, time.Now().UTC())
	}))

	cases, err := s.ListCases(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, kept.ID, cases[0].ID)

	cases, err = s.ListCases(ctx, true, 0)
	require.NoError(t, err)
	assert.Len(t, cases, 2)
}

func TestCaseStore_WithTx_RollsBackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	c := &CaseRecord{CaseNumber: "11001-2026-00099", FiledOn: "2026-03-01", Status: "ACTIVO", Parties: "A v. B"}

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.CreateCaseTx(ctx, tx, c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing committed
	_, err = s.GetCase(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeLog_AppendTx_RequiresActor(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.AppendChangeEntryTx(ctx, tx, &ChangeEntry{
			Action:   ChangeActionCreate,
			Entity:   "CASE",
			EntityID: "some-id",
		})
	})
	assert.Error(t, err)
}

func TestChangeLog_AppendAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	field := "status"
	oldVal := "ACTIVO"
	newVal := "ARCHIVADO"

	entries := []*ChangeEntry{
		{Actor: "Maria", Action: ChangeActionCreate, Entity: "CASE", EntityID: "case-1", NewValue: &newVal},
		{Actor: "Maria", Action: ChangeActionUpdate, Entity: "CASE", EntityID: "case-1", Field: &field, OldValue: &oldVal, NewValue: &newVal},
		{Actor: "anonymous", Action: ChangeActionDelete, Entity: "CASE", EntityID: "case-2"},
	}
	for i, e := range entries {
		e.Timestamp = time.Now().UTC().Add(time.Duration(i) * time.Second)
		require.NoError(t, s.WithTx(ctx, func(tx *sql.Tx) error {
			return s.AppendChangeEntryTx(ctx, tx, e)
		}))
	}

	all, err := s.ListChangeLog(ctx, ChangeLogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Newest first
	assert.Equal(t, ChangeActionDelete, all[0].Action)

	// By entity id
	entityID := "case-1"
	got, err := s.ListChangeLog(ctx, ChangeLogFilter{EntityID: &entityID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// By action
	action := ChangeActionUpdate
	got, err = s.ListChangeLog(ctx, ChangeLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Field)
	assert.Equal(t, "status", *got[0].Field)
	assert.Equal(t, "ACTIVO", *got[0].OldValue)
	assert.Equal(t, "ARCHIVADO", *got[0].NewValue)
}
