// ABOUTME: Change capture log store methods, append-only before/after records
// ABOUTME: Tx variant lets a mutation and its audit rows commit atomically

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendChangeEntryTx appends a change entry within the given transaction.
// Generates ID and Timestamp if not set. An empty actor is rejected: the
// capture must always attribute a mutation, using "anonymous" when no actor
// is known rather than a blank value.
func (s *SQLiteStore) AppendChangeEntryTx(ctx context.Context, tx *sql.Tx, e *ChangeEntry) error {
	if e.Actor == "" {
		return fmt.Errorf("change entry actor must not be empty")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO change_log (id, actor, action, entity, entity_id, field, old_value, new_value, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		e.ID,
		e.Actor,
		e.Action,
		e.Entity,
		e.EntityID,
		e.Field,
		e.OldValue,
		e.NewValue,
		e.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting change entry: %w", err)
	}

	s.logger.Debug("appended change entry",
		"id", e.ID,
		"actor", e.Actor,
		"action", e.Action,
		"entity", e.Entity+"/"+e.EntityID,
	)
	return nil
}

const changeLogQuery = `
	SELECT id, actor, action, entity, entity_id, field, old_value, new_value, ts
	FROM change_log
	WHERE (? IS NULL OR entity_id = ?)
	  AND (? IS NULL OR action = ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListChangeLog returns change entries matching the filter criteria,
// newest first.
func (s *SQLiteStore) ListChangeLog(ctx context.Context, f ChangeLogFilter) ([]*ChangeEntry, error) {
	limit := normalizeLogLimit(f.Limit)

	rows, err := s.db.QueryContext(ctx, changeLogQuery,
		f.EntityID, f.EntityID,
		f.Action, f.Action,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying change log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*ChangeEntry
	for rows.Next() {
		var e ChangeEntry
		var tsStr string

		if err := rows.Scan(
			&e.ID,
			&e.Actor,
			&e.Action,
			&e.Entity,
			&e.EntityID,
			&e.Field,
			&e.OldValue,
			&e.NewValue,
			&tsStr,
		); err != nil {
			return nil, fmt.Errorf("scanning change entry: %w", err)
		}

		e.Timestamp, err = time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing ts: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change entries: %w", err)
	}

	if entries == nil {
		entries = []*ChangeEntry{}
	}
	return entries, nil
}
