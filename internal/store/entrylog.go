// ABOUTME: Access ledger store methods, append-only log of gate decisions
// ABOUTME: Records who attempted which room, the verdict and the reason code

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryAction is the single action name the gatekeeper logs today.
const EntryActionEnterAttempt = "enter_attempt"

// AppendEntryLog appends a new row to the access ledger.
// Generates ID and Timestamp if not set. Rows are never updated or deleted.
func (s *SQLiteStore) AppendEntryLog(ctx context.Context, e *EntryLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Action == "" {
		e.Action = EntryActionEnterAttempt
	}

	query := `
		INSERT INTO entry_logs (id, guest_id, room_id, action, allow, reason, ip, user_agent, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.GuestID,
		e.RoomID,
		e.Action,
		e.Allow,
		e.Reason,
		nullString(e.IP),
		nullString(e.UserAgent),
		e.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting entry log: %w", err)
	}

	s.logger.Debug("appended entry log",
		"id", e.ID,
		"room", e.RoomID,
		"allow", e.Allow,
		"reason", e.Reason,
	)
	return nil
}

// normalizeLogLimit applies default (100) and cap (1000) to list limits.
func normalizeLogLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

const entryLogQuery = `
	SELECT id, guest_id, room_id, action, allow, reason, ip, user_agent, ts
	FROM entry_logs
	WHERE (? IS NULL OR room_id = ?)
	  AND (? IS NULL OR guest_id = ?)
	  AND (? IS NULL OR allow = ?)
	  AND (? IS NULL OR ts >= ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListEntryLog returns ledger rows matching the filter criteria.
// Results are returned newest first.
func (s *SQLiteStore) ListEntryLog(ctx context.Context, f EntryLogFilter) ([]*EntryLogEntry, error) {
	limit := normalizeLogLimit(f.Limit)

	var allowInt *int
	if f.Allow != nil {
		v := 0
		if *f.Allow {
			v = 1
		}
		allowInt = &v
	}
	var sinceStr *string
	if f.Since != nil {
		str := f.Since.UTC().Format(time.RFC3339)
		sinceStr = &str
	}

	rows, err := s.db.QueryContext(ctx, entryLogQuery,
		f.RoomID, f.RoomID,
		f.GuestID, f.GuestID,
		allowInt, allowInt,
		sinceStr, sinceStr,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entry log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*EntryLogEntry
	for rows.Next() {
		var e EntryLogEntry
		var ip, userAgent *string
		var tsStr string

		if err := rows.Scan(
			&e.ID,
			&e.GuestID,
			&e.RoomID,
			&e.Action,
			&e.Allow,
			&e.Reason,
			&ip,
			&userAgent,
			&tsStr,
		); err != nil {
			return nil, fmt.Errorf("scanning entry log row: %w", err)
		}

		if ip != nil {
			e.IP = *ip
		}
		if userAgent != nil {
			e.UserAgent = *userAgent
		}
		e.Timestamp, err = time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing ts: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry log rows: %w", err)
	}

	if entries == nil {
		entries = []*EntryLogEntry{}
	}
	return entries, nil
}
