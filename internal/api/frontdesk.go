// ABOUTME: Admin endpoints: key issue/revoke, access ledger, cases, change log
// ABOUTME: All routes here sit behind the admin role gate

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/casefile"
	"github.com/gahenax/hotel-gateway/internal/frontdesk"
	"github.com/gahenax/hotel-gateway/internal/store"
)

type issueKeyRequest struct {
	GuestEmail string `json:"guest_email"`
	RoomSlug   string `json:"room_slug"`
	Plan       string `json:"plan"`
	Duration   string `json:"duration"` // Go duration string, e.g. "720h"
}

// handleIssueKey issues a new room key for a guest.
func (s *Server) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req issueKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GuestEmail == "" || req.RoomSlug == "" || req.Plan == "" {
		s.sendJSONError(w, http.StatusBadRequest, "guest_email, room_slug and plan are required")
		return
	}

	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid duration")
		return
	}

	key, err := s.frontdesk.Issue(r.Context(), req.GuestEmail, req.RoomSlug, req.Plan, duration)
	switch {
	case errors.Is(err, frontdesk.ErrGuestNotFound):
		s.sendJSONError(w, http.StatusNotFound, "guest not found")
		return
	case errors.Is(err, frontdesk.ErrRoomNotFound):
		s.sendJSONError(w, http.StatusNotFound, "room not found")
		return
	case errors.Is(err, frontdesk.ErrBadDuration):
		s.sendJSONError(w, http.StatusBadRequest, "duration must be positive")
		return
	case err != nil:
		s.logger.Error("issuing key", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.sendJSON(w, http.StatusCreated, toKeyResponse(key))
}

type revokeKeyRequest struct {
	KeyID string `json:"key_id"`
}

// handleRevokeKey revokes a key by id. Revoking twice is not an error.
func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req revokeKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.KeyID == "" {
		s.sendJSONError(w, http.StatusBadRequest, "key_id is required")
		return
	}

	err := s.frontdesk.Revoke(r.Context(), req.KeyID)
	if errors.Is(err, frontdesk.ErrKeyNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "key not found")
		return
	}
	if err != nil {
		s.logger.Error("revoking key", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

type entryLogResponse struct {
	ID        string    `json:"id"`
	GuestID   *string   `json:"guest_id"`
	RoomID    string    `json:"room_id"`
	Action    string    `json:"action"`
	Allow     bool      `json:"allow"`
	Reason    string    `json:"reason"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// handleEvents lists access ledger rows, newest first, with optional filters:
// room (slug), guest (email), allow (true/false), since (RFC3339), limit.
// A room or guest that doesn't exist matches nothing.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var filter store.EntryLogFilter
	q := r.URL.Query()

	if v := q.Get("room"); v != "" {
		room, err := s.rooms.GetRoomBySlug(r.Context(), v)
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSON(w, http.StatusOK, map[string]any{"events": []entryLogResponse{}})
			return
		}
		if err != nil {
			s.logger.Error("resolving room filter", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		filter.RoomID = &room.ID
	}
	if v := q.Get("guest"); v != "" {
		guest, err := s.guests.GetGuestByEmail(r.Context(), v)
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSON(w, http.StatusOK, map[string]any{"events": []entryLogResponse{}})
			return
		}
		if err != nil {
			s.logger.Error("resolving guest filter", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		filter.GuestID = &guest.ID
	}
	if v := q.Get("allow"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid allow filter")
			return
		}
		filter.Allow = &allow
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		filter.Since = &since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	entries, err := s.ledger.ListEntryLog(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing entry log", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]entryLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryLogResponse{
			ID:        e.ID,
			GuestID:   e.GuestID,
			RoomID:    e.RoomID,
			Action:    e.Action,
			Allow:     e.Allow,
			Reason:    e.Reason,
			IP:        e.IP,
			UserAgent: e.UserAgent,
			Timestamp: e.Timestamp,
		})
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"events": out})
}

type caseRequest struct {
	CaseNumber string `json:"case_number"`
	FiledOn    string `json:"filed_on"`
	Status     string `json:"status"`
	Parties    string `json:"parties"`
	Notes      string `json:"notes"`
}

type caseUpdateRequest struct {
	FiledOn *string `json:"filed_on"`
	Status  *string `json:"status"`
	Parties *string `json:"parties"`
	Notes   *string `json:"notes"`
}

type caseResponse struct {
	ID         string     `json:"id"`
	CaseNumber string     `json:"case_number"`
	FiledOn    string     `json:"filed_on"`
	Status     string     `json:"status"`
	Parties    string     `json:"parties"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func toCaseResponse(c *store.CaseRecord) caseResponse {
	return caseResponse{
		ID:         c.ID,
		CaseNumber: c.CaseNumber,
		FiledOn:    c.FiledOn,
		Status:     c.Status,
		Parties:    c.Parties,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

// actorFromRequest names the acting admin for change capture. Falls back to
// the anonymous marker only when no identity is present, which the admin gate
// should make impossible.
func actorFromRequest(r *http.Request) string {
	if id := auth.FromContext(r.Context()); id != nil {
		return id.Email
	}
	return ""
}

// handleCases serves POST (create) and GET (list) on /api/frontdesk/cases.
func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateCase(w, r)
	case http.MethodGet:
		s.handleListCases(w, r)
	default:
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CaseNumber == "" || req.FiledOn == "" || req.Status == "" || req.Parties == "" {
		s.sendJSONError(w, http.StatusBadRequest, "case_number, filed_on, status and parties are required")
		return
	}

	record := &store.CaseRecord{
		ID:         uuid.New().String(),
		CaseNumber: req.CaseNumber,
		FiledOn:    req.FiledOn,
		Status:     req.Status,
		Parties:    req.Parties,
		Notes:      req.Notes,
	}

	err := s.cases.Create(r.Context(), actorFromRequest(r), record)
	if errors.Is(err, store.ErrDuplicateCase) {
		s.sendJSONError(w, http.StatusConflict, "case number already exists")
		return
	}
	if err != nil {
		s.logger.Error("creating case", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.sendJSON(w, http.StatusCreated, toCaseResponse(record))
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeDeleted, _ := strconv.ParseBool(q.Get("include_deleted"))

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.cases.List(r.Context(), includeDeleted, limit)
	if err != nil {
		s.logger.Error("listing cases", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]caseResponse, 0, len(records))
	for _, c := range records {
		out = append(out, toCaseResponse(c))
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"cases": out})
}

// handleCaseRoutes dispatches /api/frontdesk/cases/{id}.
func (s *Server) handleCaseRoutes(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/frontdesk/cases/"), "/")
	if id == "" || strings.Contains(id, "/") {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetCase(w, r, id)
	case http.MethodPatch:
		s.handleUpdateCase(w, r, id)
	case http.MethodDelete:
		s.handleDeleteCase(w, r, id)
	default:
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.cases.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "case not found")
		return
	}
	if err != nil {
		s.logger.Error("fetching case", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.sendJSON(w, http.StatusOK, toCaseResponse(record))
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request, id string) {
	var req caseUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.cases.Update(r.Context(), actorFromRequest(r), id, casefileChanges(req))
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "case not found")
		return
	}
	if err != nil {
		s.logger.Error("updating case", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.sendJSON(w, http.StatusOK, toCaseResponse(record))
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request, id string) {
	err := s.cases.Delete(r.Context(), actorFromRequest(r), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "case not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting case", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func casefileChanges(req caseUpdateRequest) casefile.Changes {
	return casefile.Changes{
		FiledOn: req.FiledOn,
		Status:  req.Status,
		Parties: req.Parties,
		Notes:   req.Notes,
	}
}

type changeEntryResponse struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Field     *string   `json:"field,omitempty"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// handleChanges lists change capture rows, newest first, with optional
// entity_id, action and limit filters.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var filter store.ChangeLogFilter
	q := r.URL.Query()

	if v := q.Get("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	entries, err := s.changes.ListChangeLog(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing change log", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]changeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, changeEntryResponse{
			ID:        e.ID,
			Actor:     e.Actor,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Field:     e.Field,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			Timestamp: e.Timestamp,
		})
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"changes": out})
}
