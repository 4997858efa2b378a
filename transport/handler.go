package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"chat-room/domain"
	"chat-room/observability"
	"chat-room/services"
)

// RoomReader is the read-only view the HTTP surface needs from the
// coordinator.
type RoomReader interface {
	Presence() []domain.Identity
	Size() int
	Stats() observability.RoomStats
}

// Server exposes the websocket endpoint and the observation endpoints.
type Server struct {
	log      *slog.Logger
	service  services.IRoomService
	room     RoomReader
	cfg      ConnConfig
	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, service services.IRoomService, room RoomReader,
	cfg ConnConfig, allowedOrigins []string) *Server {
	checker := newOriginChecker(allowedOrigins)
	return &Server{
		log:     log,
		service: service,
		room:    room,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checker.check,
		},
	}
}

// Router wires every route. The websocket endpoint lives at /ws; the rest
// is plain HTTP for probes and tooling.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWs).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/presence", s.handlePresence).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	return r
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := NewConn(ws, s.log, s.service, s.cfg)
	// Serve blocks for the lifetime of the connection; the handler's
	// goroutine is the connection's goroutine.
	conn.Serve(r.Context())
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":    "ok",
		"room_size": s.room.Size(),
	})
}

func (s *Server) handlePresence(w http.ResponseWriter, _ *http.Request) {
	users := lo.Map(s.room.Presence(), func(id domain.Identity, _ int) string {
		return id.String()
	})
	s.writeJSON(w, map[string]any{"users": users})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.room.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}
