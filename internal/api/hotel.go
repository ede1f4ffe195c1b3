// ABOUTME: Hotel catalog and door endpoints: room list, room detail, enter
// ABOUTME: Enter delegates the verdict entirely to the gatekeeper

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/gate"
	"github.com/gahenax/hotel-gateway/internal/store"
)

type roomResponse struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Floor        int      `json:"floor"`
	Type         string   `json:"type,omitempty"`
	Tagline      string   `json:"tagline,omitempty"`
	DescShort    string   `json:"desc_short,omitempty"`
	DescLong     string   `json:"desc_long,omitempty"`
	Tags         []string `json:"tags"`
	AllowedPlans []string `json:"allowed_plans"`
	DoorState    string   `json:"door_state,omitempty"`
}

func toRoomResponse(r *store.Room) roomResponse {
	return roomResponse{
		ID:           r.ID,
		Slug:         r.Slug,
		Name:         r.Name,
		Floor:        r.Floor,
		Type:         r.Type,
		Tagline:      r.Tagline,
		DescShort:    r.DescShort,
		DescLong:     r.DescLong,
		Tags:         r.Tags,
		AllowedPlans: r.AllowedPlans,
	}
}

// handleListRooms returns the public catalog of active rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rooms, err := s.rooms.ListActiveRooms(r.Context())
	if err != nil {
		s.logger.Error("listing rooms", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomResponse(room))
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

// handleRoomRoutes dispatches /api/hotel/rooms/{slug} and
// /api/hotel/rooms/{slug}/enter by parsing the path remainder.
func (s *Server) handleRoomRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/hotel/rooms/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleRoomDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "enter":
		s.handleEnterRoom(w, r, parts[0])
	default:
		s.sendJSONError(w, http.StatusNotFound, "not found")
	}
}

// handleRoomDetail returns a room plus the caller's door state. Requires an
// identity so the door state always refers to a concrete guest.
func (s *Server) handleRoomDetail(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := auth.FromContext(r.Context())
	if id == nil {
		s.sendJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	room, err := s.rooms.GetRoomBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		s.logger.Error("fetching room", "slug", slug, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	state, err := s.gatekeeper.DoorState(r.Context(), id, room)
	if err != nil {
		s.logger.Error("computing door state", "slug", slug, "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "access backend unavailable")
		return
	}

	resp := toRoomResponse(room)
	resp.DoorState = state
	s.sendJSON(w, http.StatusOK, resp)
}

type enterResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Target  string `json:"target,omitempty"`
	Plan    string `json:"plan,omitempty"`
}

// handleEnterRoom asks the gatekeeper for a verdict. Status mapping:
// unknown slug is 404, no_auth is 401, other denials are 403 with the reason,
// allow is 200 with the destination. A store fault is 502 with a neutral
// message; the verdict taxonomy never absorbs it.
func (s *Server) handleEnterRoom(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := auth.FromContext(r.Context())
	verdict, err := s.gatekeeper.Decide(r.Context(), id, slug, requestInfo(r))
	if errors.Is(err, gate.ErrRoomNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		s.logger.Error("gate decision failed", "slug", slug, "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "access backend unavailable")
		return
	}

	if s.collector != nil {
		s.collector.RecordDecision(verdict.Reason)
	}

	if !verdict.Allowed {
		status := http.StatusForbidden
		if verdict.Reason == gate.ReasonNoAuth {
			status = http.StatusUnauthorized
		}
		s.sendJSON(w, status, enterResponse{Allowed: false, Reason: verdict.Reason})
		return
	}

	target := verdict.Room.WebURL
	if target == "" {
		target = "/rooms/" + verdict.Room.Slug
	}
	s.sendJSON(w, http.StatusOK, enterResponse{
		Allowed: true,
		Target:  target,
		Plan:    verdict.Plan,
	})
}
