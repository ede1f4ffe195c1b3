// ABOUTME: Reception endpoints: check-in, current identity, own keys
// ABOUTME: Check-in sets the HTTP-only session cookie and returns the token

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/store"
)

type checkinRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type guestResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type checkinResponse struct {
	Token string        `json:"token"`
	Guest guestResponse `json:"guest"`
}

// handleCheckin authenticates a guest and mints a session. The token is
// returned in the body and also set as an HTTP-only cookie so browser
// clients stay signed in without holding the token themselves.
func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Secret == "" {
		s.sendJSONError(w, http.StatusBadRequest, "email and secret are required")
		return
	}

	token, guest, err := s.sessions.Checkin(r.Context(), req.Email, req.Secret)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.logger.Error("checkin failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.collector != nil {
		s.collector.RecordCheckin()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TokenLifetime()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.sendJSON(w, http.StatusOK, checkinResponse{
		Token: token,
		Guest: guestResponse{
			ID:    guest.ID,
			Email: guest.Email,
			Name:  guest.Name,
			Role:  guest.Role,
		},
	})
}

// handleMe returns the caller's resolved identity.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := auth.FromContext(r.Context())
	s.sendJSON(w, http.StatusOK, guestResponse{
		ID:    id.GuestID,
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
	})
}

type keyResponse struct {
	ID        string     `json:"id"`
	GuestID   string     `json:"guest_id"`
	RoomID    string     `json:"room_id"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func toKeyResponse(k *store.RoomKey) keyResponse {
	return keyResponse{
		ID:        k.ID,
		GuestID:   k.GuestID,
		RoomID:    k.RoomID,
		Plan:      k.Plan,
		Status:    k.Status,
		IssuedAt:  k.IssuedAt,
		ExpiresAt: k.ExpiresAt,
		RevokedAt: k.RevokedAt,
	}
}

// handleMyKeys lists the caller's own keys, all statuses included. Scoped to
// the verified identity: there is no way to ask for another guest's keys here.
func (s *Server) handleMyKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := auth.FromContext(r.Context())
	keys, err := s.keys.ListKeysByGuest(r.Context(), id.GuestID)
	if err != nil {
		s.logger.Error("listing keys", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyResponse(k))
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"keys": out})
}
