// ABOUTME: Session issuer service: authenticates credentials and mints tokens
// ABOUTME: Missing guest and wrong secret return the same generic error

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gahenax/hotel-gateway/internal/store"
)

// ErrInvalidCredentials is returned for any authentication failure. It is
// deliberately generic: callers cannot tell an unknown email from a wrong
// secret.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "gahenax_session"

// Service authenticates guests and mints session tokens.
type Service struct {
	guests   store.GuestStore
	issuer   TokenIssuer
	lifetime time.Duration
	logger   *slog.Logger
}

// NewService creates a session issuer over the given guest store.
// A non-positive lifetime falls back to DefaultTokenLifetime.
func NewService(guests store.GuestStore, issuer TokenIssuer, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &Service{
		guests:   guests,
		issuer:   issuer,
		lifetime: lifetime,
		logger:   slog.Default().With("component", "auth"),
	}
}

// TokenLifetime returns the configured session length.
func (s *Service) TokenLifetime() time.Duration {
	return s.lifetime
}

// Checkin authenticates a guest by email and secret and mints a session token.
// Returns ErrInvalidCredentials for both unknown email and wrong secret, with
// a dummy bcrypt comparison in the former case to keep timing constant.
func (s *Service) Checkin(ctx context.Context, email, secret string) (string, *store.Guest, error) {
	guest, err := s.guests.GetGuestByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		dummyCompare(secret)
		s.logger.Info("checkin failed", "email", email)
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("looking up guest: %w", err)
	}

	if !CompareSecret(guest.PasswordHash, secret) {
		s.logger.Info("checkin failed", "email", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(guest.Email, s.lifetime)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("guest checked in", "email", guest.Email, "role", guest.Role)
	return token, guest, nil
}

// Resolve recovers the guest identity behind a session token. Any failure
// (bad signature, expiry, missing claim, unknown guest) yields a nil identity
// and no error: an unusable token means anonymous, not a hard failure.
func (s *Service) Resolve(ctx context.Context, token string) *Identity {
	if token == "" {
		return nil
	}

	email, err := s.issuer.Verify(token)
	if err != nil {
		return nil
	}

	guest, err := s.guests.GetGuestByEmail(ctx, email)
	if err != nil {
		return nil
	}

	return &Identity{
		GuestID: guest.ID,
		Email:   guest.Email,
		Name:    guest.Name,
		Role:    guest.Role,
	}
}
