// ABOUTME: Case record store methods for the monitored legal-case entity
// ABOUTME: Mutations run on a caller-supplied transaction shared with the change capture

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateCaseTx inserts a new case record within the given transaction.
// Generates ID and timestamps if not set.
// Returns ErrDuplicateCase if the case number is taken.
func (s *SQLiteStore) CreateCaseTx(ctx context.Context, tx *sql.Tx, c *CaseRecord) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	query := `
		INSERT INTO case_records (id, case_number, filed_on, status, parties, notes, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err := tx.ExecContext(ctx, query,
		c.ID,
		c.CaseNumber,
		c.FiledOn,
		c.Status,
		c.Parties,
		nullString(c.Notes),
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateCase
		}
		return fmt.Errorf("inserting case record: %w", err)
	}

	s.logger.Debug("created case record", "id", c.ID, "number", c.CaseNumber)
	return nil
}

const caseColumns = `id, case_number, filed_on, status, parties, notes, created_at, updated_at, deleted_at`

// scanCase scans a row into a CaseRecord.
func scanCase(scanner interface{ Scan(dest ...any) error }) (*CaseRecord, error) {
	var c CaseRecord
	var notes, deletedAtStr *string
	var createdAtStr, updatedAtStr string

	if err := scanner.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.FiledOn,
		&c.Status,
		&c.Parties,
		&notes,
		&createdAtStr,
		&updatedAtStr,
		&deletedAtStr,
	); err != nil {
		return nil, err
	}

	if notes != nil {
		c.Notes = *notes
	}

	var err error
	c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if deletedAtStr != nil {
		t, err := time.Parse(time.RFC3339, *deletedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing deleted_at: %w", err)
		}
		c.DeletedAt = &t
	}
	return &c, nil
}

// GetCase retrieves a case record by ID, including soft-deleted ones.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) GetCase(ctx context.Context, id string) (*CaseRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM case_records WHERE id = ?`, id)

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying case record: %w", err)
	}
	return c, nil
}

// ListCases returns case records, newest first. Soft-deleted records are
// excluded unless includeDeleted is set.
func (s *SQLiteStore) ListCases(ctx context.Context, includeDeleted bool, limit int) ([]*CaseRecord, error) {
	limit = normalizeLogLimit(limit)

	query := `SELECT ` + caseColumns + ` FROM case_records`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying case records: %w", err)
	}
	defer rows.Close()

	var cases []*CaseRecord
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating case rows: %w", err)
	}

	if cases == nil {
		cases = []*CaseRecord{}
	}
	return cases, nil
}

// UpdateCaseTx writes the mutable fields of a case record within the given
// transaction and bumps updated_at. Returns ErrNotFound if the record
// doesn't exist or has been soft-deleted.
func (s *SQLiteStore) UpdateCaseTx(ctx context.Context, tx *sql.Tx, c *CaseRecord) error {
	c.UpdatedAt = time.Now().UTC()

	result, err := tx.ExecContext(ctx, `
		UPDATE case_records
		SET filed_on = ?, status = ?, parties = ?, notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`,
		c.FiledOn,
		c.Status,
		c.Parties,
		nullString(c.Notes),
		c.UpdatedAt.UTC().Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating case record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated case record", "id", c.ID)
	return nil
}

// SoftDeleteCaseTx marks a case record deleted within the given transaction.
// The row stays; deleted_at is set. Returns ErrNotFound if the record
// doesn't exist or is already deleted.
func (s *SQLiteStore) SoftDeleteCaseTx(ctx context.Context, tx *sql.Tx, id string, at time.Time) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE case_records
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("soft-deleting case record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("soft-deleted case record", "id", id)
	return nil
}
