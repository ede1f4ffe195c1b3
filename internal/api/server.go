// ABOUTME: HTTP JSON API server wiring for hotel-gateway
// ABOUTME: Assembles routes, identity middleware and admin gating over the services

package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/casefile"
	"github.com/gahenax/hotel-gateway/internal/frontdesk"
	"github.com/gahenax/hotel-gateway/internal/gate"
	"github.com/gahenax/hotel-gateway/internal/metrics"
	"github.com/gahenax/hotel-gateway/internal/store"
)

// Server exposes the hotel-gateway HTTP API.
type Server struct {
	sessions   *auth.Service
	gatekeeper *gate.Gatekeeper
	frontdesk  *frontdesk.Service
	cases      *casefile.Service
	rooms      store.RoomStore
	keys       store.KeyStore
	ledger     store.EntryLogStore
	changes    store.ChangeLogStore
	guests     store.GuestStore
	collector  *metrics.Collector
	logger     *slog.Logger
}

// NewServer creates an API server over the given services and stores.
func NewServer(
	sessions *auth.Service,
	gatekeeper *gate.Gatekeeper,
	fd *frontdesk.Service,
	cases *casefile.Service,
	s *store.SQLiteStore,
	collector *metrics.Collector,
) *Server {
	return &Server{
		sessions:   sessions,
		gatekeeper: gatekeeper,
		frontdesk:  fd,
		cases:      cases,
		rooms:      s,
		keys:       s,
		ledger:     s,
		changes:    s,
		guests:     s,
		collector:  collector,
		logger:     slog.Default().With("component", "api"),
	}
}

// Routes builds the HTTP handler with all endpoints and middleware attached.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	resolve := auth.ResolveMiddleware(s.sessions)
	requireIdentity := auth.RequireIdentity()
	requireAdmin := auth.RequireAdmin()

	mux.HandleFunc("/health", s.handleHealth)

	// Reception
	mux.Handle("/api/reception/checkin", http.HandlerFunc(s.handleCheckin))
	mux.Handle("/api/reception/me", requireIdentity(http.HandlerFunc(s.handleMe)))
	mux.Handle("/api/reception/keys/mine", requireIdentity(http.HandlerFunc(s.handleMyKeys)))

	// Hotel catalog and doors. The rooms list is public; room details need
	// identity; enter is left open so the gatekeeper itself produces the
	// no_auth denial and its ledger row.
	mux.Handle("/api/hotel/rooms", http.HandlerFunc(s.handleListRooms))
	mux.Handle("/api/hotel/rooms/", http.HandlerFunc(s.handleRoomRoutes))

	// Front desk (admin only)
	mux.Handle("/api/frontdesk/keys/issue", requireAdmin(http.HandlerFunc(s.handleIssueKey)))
	mux.Handle("/api/frontdesk/keys/revoke", requireAdmin(http.HandlerFunc(s.handleRevokeKey)))
	mux.Handle("/api/frontdesk/events", requireAdmin(http.HandlerFunc(s.handleEvents)))
	mux.Handle("/api/frontdesk/cases", requireAdmin(http.HandlerFunc(s.handleCases)))
	mux.Handle("/api/frontdesk/cases/", requireAdmin(http.HandlerFunc(s.handleCaseRoutes)))
	mux.Handle("/api/frontdesk/changes", requireAdmin(http.HandlerFunc(s.handleChanges)))

	return resolve(mux)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// sendJSONError writes a JSON error response. Messages are caller-facing:
// store error text never goes through here.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

// requestInfo extracts ledger attribution from the request.
func requestInfo(r *http.Request) gate.RequestInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return gate.RequestInfo{
		IP:        ip,
		UserAgent: r.UserAgent(),
	}
}
