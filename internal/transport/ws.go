package transport

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocket close codes used by the protocol.
const (
	CloseNormal       = 4000
	CloseMidGameForce = 4001
	CloseJoinRefused  = 4500
)

const (
	// maxFrameBytes is the protocol's largest outbound binary frame: a
	// one-byte header plus the longest possible name payload (255 bytes).
	// It sizes the upgrader's I/O buffers; frames are not checked against
	// it here.
	maxFrameBytes = 256
	// maxInboundBytes is deliberately looser than the protocol's own
	// 256-byte frame bound: oversized inbound frames are tolerated by the
	// transport and rejected at the decode layer (overlong names) or
	// simply read for their first byte (control frames), not punished with
	// a connection close.
	maxInboundBytes = 4096
	sendQueueDepth  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxFrameBytes,
	WriteBufferSize: maxFrameBytes,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Room is the subset of internal/session.Coordinator the transport layer
// drives. Defined here (rather than depending on the session package) so
// the two packages never import each other.
type Room interface {
	AddClient(socket Socket) (clientID int, ok bool)
	HandleFrame(clientID int, frame []byte)
	RemoveClient(clientID int, closeCode int)
}

// wsSocket adapts one *websocket.Conn to the Socket interface. Writes
// happen only from writePump's goroutine, per gorilla/websocket's
// single-writer requirement; TryWrite hands frames to it over a buffered
// channel and reports backpressure via the channel-full case.
type wsSocket struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	// id is the client id inbound frames are attributed to. The
	// coordinator rewrites it during roster compaction (from its own
	// goroutine), so readPump loads it fresh for every frame.
	id atomic.Int32
	// closeCode is set from the peer's close frame, if any. It is only
	// ever written and read from the connection's own readPump goroutine.
	closeCode int
}

func newWSSocket(conn *websocket.Conn) *wsSocket {
	s := &wsSocket{conn: conn, send: make(chan []byte, sendQueueDepth)}
	conn.SetCloseHandler(func(code int, text string) error {
		s.closeCode = code
		return nil
	})
	return s
}

func (s *wsSocket) SetID(id int) {
	s.id.Store(int32(id))
}

func (s *wsSocket) TryWrite(frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *wsSocket) Close(code int, reason string) {
	s.closeOnce.Do(func() {
		// WriteControl, not WriteMessage: writePump may be mid-write on its
		// own goroutine, and control frames are the one write
		// gorilla/websocket allows concurrently.
		msg := websocket.FormatCloseMessage(code, reason)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		close(s.send)
		_ = s.conn.Close()
	})
}

// teardown releases the socket's writePump without emitting a close frame,
// for connections the peer already closed.
func (s *wsSocket) teardown() {
	s.closeOnce.Do(func() {
		close(s.send)
		_ = s.conn.Close()
	})
}

// Handler upgrades HTTP connections and wires each one into a Room. The
// protocol has no timeouts, so there is no ping ticker or read/write
// deadline here; Room.HandleFrame is the only thing that needs to run
// exclusively (see session.Coordinator's own locking).
type Handler struct {
	logger zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Serve upgrades the request and registers the new connection with room.
// If the room refuses the client (full room), the socket is closed with
// CloseJoinRefused and nothing further happens. The returned clientID is
// only meaningful when ok is true; callers (the /create route) use it to
// push a message to the newly joined client before any frame arrives from
// it.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, room Room) (clientID int, ok bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return -1, false
	}

	sock := newWSSocket(conn)
	clientID, ok = room.AddClient(sock)
	if !ok {
		sock.Close(CloseJoinRefused, "room full")
		return -1, false
	}

	sock.conn.SetReadLimit(maxInboundBytes)

	go h.writePump(sock)
	go h.readPump(sock, room)
	return clientID, true
}

// Reject upgrades the request only to immediately close it with the given
// code and reason. The close code is a WebSocket-level concept, so a room
// miss ("no such game key") still has to complete the handshake before it
// can be reported — there is no HTTP-level failure path for /join.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request, code int, reason string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	sock := newWSSocket(conn)
	sock.Close(code, reason)
}

func (h *Handler) writePump(sock *wsSocket) {
	for frame := range sock.send {
		if err := sock.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

func (h *Handler) readPump(sock *wsSocket, room Room) {
	defer func() {
		room.RemoveClient(int(sock.id.Load()), sock.closeCode)
		sock.teardown()
	}()

	for {
		msgType, data, err := sock.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		room.HandleFrame(int(sock.id.Load()), data)
	}
}
