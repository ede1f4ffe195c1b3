// ABOUTME: Room catalog store methods
// ABOUTME: Rooms carry display metadata plus the allowed-plan access policy

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateRoom creates a new room. Generates ID and CreatedAt if not set and
// defaults status to active. Returns ErrDuplicateRoom on a slug collision.
func (s *SQLiteStore) CreateRoom(ctx context.Context, r *Room) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = RoomStatusActive
	}

	tagsJSON, err := marshalStrings(r.Tags)
	if err != nil {
		return err
	}
	plansJSON, err := marshalStrings(r.AllowedPlans)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rooms (id, slug, name, floor, type, tagline, desc_short, desc_long, tags_json, allowed_plans, web_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.Slug,
		r.Name,
		r.Floor,
		nullString(r.Type),
		nullString(r.Tagline),
		nullString(r.DescShort),
		nullString(r.DescLong),
		tagsJSON,
		plansJSON,
		nullString(r.WebURL),
		r.Status,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateRoom
		}
		return fmt.Errorf("inserting room: %w", err)
	}

	s.logger.Debug("created room", "id", r.ID, "slug", r.Slug)
	return nil
}

const roomColumns = `id, slug, name, floor, type, tagline, desc_short, desc_long, tags_json, allowed_plans, web_url, status, created_at`

// scanRoom scans a row into a Room.
func scanRoom(scanner interface{ Scan(dest ...any) error }) (*Room, error) {
	var r Room
	var roomType, tagline, descShort, descLong, tagsJSON, webURL *string
	var plansJSON, createdAtStr string

	if err := scanner.Scan(
		&r.ID,
		&r.Slug,
		&r.Name,
		&r.Floor,
		&roomType,
		&tagline,
		&descShort,
		&descLong,
		&tagsJSON,
		&plansJSON,
		&webURL,
		&r.Status,
		&createdAtStr,
	); err != nil {
		return nil, err
	}

	if roomType != nil {
		r.Type = *roomType
	}
	if tagline != nil {
		r.Tagline = *tagline
	}
	if descShort != nil {
		r.DescShort = *descShort
	}
	if descLong != nil {
		r.DescLong = *descLong
	}
	if webURL != nil {
		r.WebURL = *webURL
	}

	var err error
	r.Tags, err = unmarshalStrings(tagsJSON)
	if err != nil {
		return nil, err
	}
	r.AllowedPlans, err = unmarshalStrings(&plansJSON)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &r, nil
}

// GetRoomBySlug retrieves a room by its unique slug.
// Returns ErrNotFound if no room has that slug.
func (s *SQLiteStore) GetRoomBySlug(ctx context.Context, slug string) (*Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE slug = ?`, slug)

	r, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying room by slug: %w", err)
	}
	return r, nil
}

// ListActiveRooms returns all rooms with status=active ordered by floor then slug.
// Hidden rooms are excluded from the public catalog.
func (s *SQLiteStore) ListActiveRooms(ctx context.Context) ([]*Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE status = ? ORDER BY floor, slug`,
		RoomStatusActive)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}

	if rooms == nil {
		rooms = []*Room{}
	}
	return rooms, nil
}

// UpdateRoomPolicy replaces a room's allowed-plan set. Administrative edit;
// the rest of the room record is immutable after creation.
// Returns ErrNotFound if the room doesn't exist.
func (s *SQLiteStore) UpdateRoomPolicy(ctx context.Context, id string, allowedPlans []string) error {
	plansJSON, err := marshalStrings(allowedPlans)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET allowed_plans = ? WHERE id = ?`, plansJSON, id)
	if err != nil {
		return fmt.Errorf("updating room policy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("updated room policy", "id", id, "allowed_plans", allowedPlans)
	return nil
}
