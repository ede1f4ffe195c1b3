// ABOUTME: Entitlement administration: issues and revokes room keys
// ABOUTME: The only writer to the key store; admin gating happens at the API layer

package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gahenax/hotel-gateway/internal/store"
)

// Service errors.
var (
	ErrGuestNotFound = errors.New("guest not found")
	ErrRoomNotFound  = errors.New("room not found")
	ErrKeyNotFound   = errors.New("key not found")
	ErrBadDuration   = errors.New("duration must be positive")
)

// Service issues and revokes room keys.
type Service struct {
	guests store.GuestStore
	rooms  store.RoomStore
	keys   store.KeyStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a front desk service over the given stores.
func New(guests store.GuestStore, rooms store.RoomStore, keys store.KeyStore) *Service {
	return &Service{
		guests: guests,
		rooms:  rooms,
		keys:   keys,
		logger: slog.Default().With("component", "frontdesk"),
		now:    time.Now,
	}
}

// Issue creates a new active key for the guest on the room under the plan,
// expiring after the given duration. Issuing never checks for or supersedes
// existing keys: two issues produce two independently-valid rows.
func (s *Service) Issue(ctx context.Context, guestEmail, roomSlug, plan string, duration time.Duration) (*store.RoomKey, error) {
	if duration <= 0 {
		return nil, ErrBadDuration
	}

	guest, err := s.guests.GetGuestByEmail(ctx, guestEmail)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up guest: %w", err)
	}

	room, err := s.rooms.GetRoomBySlug(ctx, roomSlug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up room: %w", err)
	}

	now := s.now().UTC()
	key := &store.RoomKey{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		Plan:      plan,
		Status:    store.KeyStatusActive,
		IssuedAt:  now,
		ExpiresAt: now.Add(duration),
	}
	if err := s.keys.CreateKey(ctx, key); err != nil {
		return nil, fmt.Errorf("creating key: %w", err)
	}

	s.logger.Info("issued key",
		"guest", guest.Email,
		"room", room.Slug,
		"plan", plan,
		"expires_at", key.ExpiresAt,
	)
	return key, nil
}

// Revoke marks a key revoked. Idempotent: revoking an already-revoked key
// succeeds without changing its revocation time.
func (s *Service) Revoke(ctx context.Context, keyID string) error {
	err := s.keys.RevokeKey(ctx, keyID, s.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("revoking key: %w", err)
	}
	return nil
}
