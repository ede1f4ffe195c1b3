// ABOUTME: Guest store methods for the credential store
// ABOUTME: Guests are created at registration/seeding; only role changes afterwards

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateGuest creates a new guest. Generates ID and CreatedAt if not set.
// Returns ErrDuplicateGuest if the email is already registered.
func (s *SQLiteStore) CreateGuest(ctx context.Context, g *Guest) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO guests (id, email, name, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		g.ID,
		g.Email,
		g.Name,
		g.Role,
		g.PasswordHash,
		g.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateGuest
		}
		return fmt.Errorf("inserting guest: %w", err)
	}

	s.logger.Debug("created guest", "id", g.ID, "email", g.Email, "role", g.Role)
	return nil
}

// scanGuest scans a row into a Guest.
func scanGuest(scanner interface{ Scan(dest ...any) error }) (*Guest, error) {
	var g Guest
	var createdAtStr string

	if err := scanner.Scan(
		&g.ID,
		&g.Email,
		&g.Name,
		&g.Role,
		&g.PasswordHash,
		&createdAtStr,
	); err != nil {
		return nil, err
	}

	var err error
	g.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &g, nil
}

const guestColumns = `id, email, name, role, password_hash, created_at`

// GetGuest retrieves a guest by ID.
// Returns ErrNotFound if the guest doesn't exist.
func (s *SQLiteStore) GetGuest(ctx context.Context, id string) (*Guest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = ?`, id)

	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying guest: %w", err)
	}
	return g, nil
}

// GetGuestByEmail retrieves a guest by email.
// Returns ErrNotFound if no guest is registered under that email.
func (s *SQLiteStore) GetGuestByEmail(ctx context.Context, email string) (*Guest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE email = ?`, email)

	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying guest by email: %w", err)
	}
	return g, nil
}

// UpdateGuestRole changes a guest's role. This is the only mutation guests
// support after creation. Returns ErrNotFound if the guest doesn't exist.
func (s *SQLiteStore) UpdateGuestRole(ctx context.Context, id, role string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE guests SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("updating guest role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("updated guest role", "id", id, "role", role)
	return nil
}

// CountGuests returns the total number of registered guests.
func (s *SQLiteStore) CountGuests(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting guests: %w", err)
	}
	return count, nil
}
