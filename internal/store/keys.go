// ABOUTME: Room key store methods for the entitlement store
// ABOUTME: Keys are written by administration only; expiry is a read-time condition

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrKeyNotUsable is returned when a key invariant is violated at insert time.
var ErrKeyNotUsable = errors.New("key expiry must be after issue time")

// CreateKey inserts a new room key. Generates ID if not set and defaults
// status to active. Enforces the expires_at > issued_at invariant. Never
// checks for or supersedes existing keys for the same (guest, room) pair.
func (s *SQLiteStore) CreateKey(ctx context.Context, k *RoomKey) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	if k.Status == "" {
		k.Status = KeyStatusActive
	}
	if !k.ExpiresAt.After(k.IssuedAt) {
		return ErrKeyNotUsable
	}

	query := `
		INSERT INTO room_keys (id, guest_id, room_id, plan, status, issued_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var revokedAt any
	if k.RevokedAt != nil {
		revokedAt = k.RevokedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		k.ID,
		k.GuestID,
		k.RoomID,
		k.Plan,
		k.Status,
		k.IssuedAt.UTC().Format(time.RFC3339),
		k.ExpiresAt.UTC().Format(time.RFC3339),
		revokedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting room key: %w", err)
	}

	s.logger.Debug("created room key", "id", k.ID, "guest", k.GuestID, "room", k.RoomID, "plan", k.Plan)
	return nil
}

const keyColumns = `id, guest_id, room_id, plan, status, issued_at, expires_at, revoked_at`

// scanKey scans a row into a RoomKey.
func scanKey(scanner interface{ Scan(dest ...any) error }) (*RoomKey, error) {
	var k RoomKey
	var issuedAtStr, expiresAtStr string
	var revokedAtStr *string

	if err := scanner.Scan(
		&k.ID,
		&k.GuestID,
		&k.RoomID,
		&k.Plan,
		&k.Status,
		&issuedAtStr,
		&expiresAtStr,
		&revokedAtStr,
	); err != nil {
		return nil, err
	}

	var err error
	k.IssuedAt, err = time.Parse(time.RFC3339, issuedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing issued_at: %w", err)
	}
	k.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}
	if revokedAtStr != nil {
		t, err := time.Parse(time.RFC3339, *revokedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing revoked_at: %w", err)
		}
		k.RevokedAt = &t
	}
	return &k, nil
}

// GetKey retrieves a room key by ID.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStore) GetKey(ctx context.Context, id string) (*RoomKey, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+keyColumns+` FROM room_keys WHERE id = ?`, id)

	k, err := scanKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying room key: %w", err)
	}
	return k, nil
}

// RevokeKey sets status=revoked and revoked_at on a key. Idempotent: revoking
// an already-revoked key is a no-op and keeps the original revoked_at.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStore) RevokeKey(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE room_keys
		SET status = ?, revoked_at = ?
		WHERE id = ? AND status != ?
	`, KeyStatusRevoked, at.UTC().Format(time.RFC3339), id, KeyStatusRevoked)
	if err != nil {
		return fmt.Errorf("revoking room key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either missing or already revoked; only the former is an error.
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM room_keys WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking room key: %w", err)
		}
		return nil
	}

	s.logger.Info("revoked room key", "id", id)
	return nil
}

// ListKeysByGuest returns all keys held by a guest, newest first.
func (s *SQLiteStore) ListKeysByGuest(ctx context.Context, guestID string) ([]*RoomKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+keyColumns+`
		FROM room_keys
		WHERE guest_id = ?
		ORDER BY issued_at DESC
	`, guestID)
	if err != nil {
		return nil, fmt.Errorf("querying keys by guest: %w", err)
	}
	defer rows.Close()

	var keys []*RoomKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning key row: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating key rows: %w", err)
	}

	if keys == nil {
		keys = []*RoomKey{}
	}
	return keys, nil
}

// FindUsableKeys returns the keys a guest holds for a room that are usable
// right now: status=active AND expires_at > now. Revoked keys and keys past
// expiry fall out of this query regardless of their stored status, which is
// why a revoked or expired key denies as "absent" rather than by its status.
func (s *SQLiteStore) FindUsableKeys(ctx context.Context, guestID, roomID string, now time.Time) ([]*RoomKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+keyColumns+`
		FROM room_keys
		WHERE guest_id = ? AND room_id = ? AND status = ? AND expires_at > ?
		ORDER BY expires_at DESC
	`, guestID, roomID, KeyStatusActive, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying usable keys: %w", err)
	}
	defer rows.Close()

	var keys []*RoomKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning key row: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating key rows: %w", err)
	}
	return keys, nil
}
