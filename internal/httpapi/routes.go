// Package httpapi wires the two public routes — room creation and room
// join — to the registry and transport layers.
package httpapi

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/scaredginger/secret-hitler/internal/registry"
	"github.com/scaredginger/secret-hitler/internal/session"
	"github.com/scaredginger/secret-hitler/internal/transport"
	"github.com/scaredginger/secret-hitler/internal/wire"
)

// Server holds the dependencies shared by both routes: the room registry
// and the websocket upgrade handler.
type Server struct {
	rooms  *registry.SlotMap
	ws     *transport.Handler
	logger zerolog.Logger
}

// NewServer builds a Server.
func NewServer(rooms *registry.SlotMap, ws *transport.Handler, logger zerolog.Logger) *Server {
	return &Server{rooms: rooms, ws: ws, logger: logger}
}

// Routes returns the mux for the two room endpoints plus a health check.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /create", s.handleCreate)
	mux.HandleFunc("GET /join/{game}", s.handleJoin)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleCreate allocates a fresh room, upgrades the caller into it, and
// sends the creator the room's key.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var coord *session.Coordinator
	key, _ := s.rooms.GetSlot(func(k uint32, deleter func()) registry.Room {
		coord = session.New(k, deleter, s.logger, cryptoSeed)
		return coord
	})

	clientID, ok := s.ws.Serve(w, r, coord)
	if !ok {
		s.rooms.Reclaim(key)
		return
	}
	coord.SendToClient(clientID, wire.GameKey(key))
}

// handleJoin resolves the {game} letter key to a room and upgrades the
// caller into it. On a malformed key or a miss (expired/unknown room) the
// upgrade still completes and the connection is immediately closed with
// CloseJoinRefused — join failure is reported as a WebSocket close code,
// never an HTTP status.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	key, ok := registry.DecodeKey(r.PathValue("game"))
	if !ok {
		s.ws.Reject(w, r, transport.CloseJoinRefused, "no such game")
		return
	}
	room, ok := s.rooms.Lookup(key)
	if !ok {
		s.ws.Reject(w, r, transport.CloseJoinRefused, "no such game")
		return
	}
	coord, ok := room.(*session.Coordinator)
	if !ok {
		s.ws.Reject(w, r, transport.CloseJoinRefused, "no such game")
		return
	}
	s.ws.Serve(w, r, coord)
}

// cryptoSeed produces an Engine RNG seed from crypto/rand, falling back to
// a clock-derived value if the system entropy source ever errors.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(buf[:]))
}
