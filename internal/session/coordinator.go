// Package session implements the per-room session coordinator: socket
// ingress demultiplexing, state-based authorization, roster management,
// and the bridge between wire frames and the game engine.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/scaredginger/secret-hitler/internal/transport"
	"github.com/scaredginger/secret-hitler/internal/wire"
	"github.com/scaredginger/secret-hitler/pkg/hitler"
)

const (
	maxClients        = 10
	minClientsToStart = 5
	// maxQueuedFrameBytes bounds a single backpressure-queue entry;
	// anything longer is truncated.
	maxQueuedFrameBytes = 256
)

// client is one roster seat.
type client struct {
	socket transport.Socket // nil once disconnected
	name   []byte
	ready  bool
	queue  [][]byte
}

// Coordinator owns one room: the client roster, the game engine, and the
// outbound framer. All its public entry points (AddClient, RemoveClient,
// HandleFrame) take the same mutex, which is what lets many goroutines —
// one readPump per connection — drive a single logically single-threaded
// room without the engine or roster ever observing concurrent access.
type Coordinator struct {
	mu     sync.Mutex
	logger zerolog.Logger

	key     uint32
	deleter func()

	clients     [maxClients]*client
	clientCount int
	// destroyed guards the registry deleter: the room must request
	// reclamation exactly once, even though every departing connection's
	// readPump re-enters RemoveClient on its way out.
	destroyed bool

	engine *hitler.Engine

	nextSeed func() int64
}

// New builds a Coordinator for a freshly allocated room. nextSeed produces
// the engine's RNG seed at game start; production wiring supplies one
// backed by crypto/rand, tests supply a fixed sequence.
func New(key uint32, deleter func(), logger zerolog.Logger, nextSeed func() int64) *Coordinator {
	return &Coordinator{
		key:      key,
		deleter:  deleter,
		logger:   logger.With().Uint32("roomKey", key).Logger(),
		nextSeed: nextSeed,
	}
}

// AddClient implements transport.Room. It refuses new joins once the game
// has started or the roster is full.
func (c *Coordinator) AddClient(socket transport.Socket) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || c.engine != nil {
		return -1, false
	}

	idx := -1
	for i := 0; i < maxClients; i++ {
		if c.clients[i] == nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		return -1, false
	}

	socket.SetID(idx)
	cl := &client{socket: socket}
	c.clients[idx] = cl
	c.clientCount++

	// Replay: the joining client learns its own id (an empty-named NAME
	// frame) and every other connected client's current name.
	c.safeSendLocked(cl, wire.Name(idx, nil))
	for i, other := range c.clients {
		if i == idx || other == nil || len(other.name) == 0 {
			continue
		}
		c.safeSendLocked(cl, wire.Name(i, other.name))
	}

	c.logger.Debug().Int("clientId", idx).Int("clientCount", c.clientCount).Msg("client joined")
	return idx, true
}

// RemoveClient implements transport.Room. A close code of CloseJoinRefused
// or anything >= 4000 means the coordinator already initiated the
// teardown itself; anything else is an unsolicited disconnect.
func (c *Coordinator) RemoveClient(clientID int, closeCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	if closeCode == transport.CloseJoinRefused || closeCode >= 4000 {
		return
	}
	if clientID < 0 || clientID >= maxClients {
		return
	}
	cl := c.clients[clientID]
	if cl == nil {
		return
	}
	cl.socket = nil

	preGameOrOver := c.engine == nil || c.engine.Phase.Terminal()
	c.broadcastLocked(wire.Disconnect(clientID))

	if preGameOrOver {
		c.clients[clientID] = nil
		c.clientCount--
		if c.clientCount == 0 {
			c.destroyed = true
			c.deleter()
		}
		return
	}

	// Mid-game disconnect is a fatal room event.
	c.logger.Warn().Int("clientId", clientID).Msg("mid-game disconnect, destroying room")
	for _, other := range c.clients {
		if other != nil && other.socket != nil {
			other.socket.Close(transport.CloseMidGameForce, "player disconnected")
			other.socket = nil
		}
	}
	c.destroyed = true
	c.deleter()
}

// HandleFrame implements transport.Room.
func (c *Coordinator) HandleFrame(clientID int, frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || clientID < 0 || clientID >= maxClients || c.clients[clientID] == nil {
		return
	}
	in := wire.Decode(frame)

	switch in.Action {
	case wire.ActionSetName:
		c.handleSetName(clientID, in.Name)
	case wire.ActionMarkReady:
		c.handleReadyToggle(clientID, true)
	case wire.ActionMarkNotReady:
		c.handleReadyToggle(clientID, false)
	case wire.ActionSelectChancellor:
		c.dispatchSelectChancellor(clientID, in.Arg)
	case wire.ActionEliminatePolicy:
		c.dispatchEliminatePolicy(clientID, in.Arg)
	case wire.ActionReveal:
		c.dispatchReveal(clientID, in.Arg)
	case wire.ActionKill:
		c.dispatchKill(clientID, in.Arg)
	case wire.ActionSelectSpecialPresident:
		c.dispatchSelectSpecialPresident(clientID, in.Arg)
	case wire.ActionVoteJa:
		c.dispatchVote(clientID, hitler.Ja)
	case wire.ActionVoteNein:
		c.dispatchVote(clientID, hitler.Nein)
	case wire.ActionAcceptVeto:
		c.dispatchVetoResponse(clientID, true)
	case wire.ActionRejectVeto:
		c.dispatchVetoResponse(clientID, false)
	default:
		// malformed or out-of-context input: dropped silently
	}
}

func (c *Coordinator) handleSetName(clientID int, name []byte) {
	if c.engine != nil {
		return
	}
	cl := c.clients[clientID]
	cl.name = append([]byte(nil), name...)
	c.broadcastLocked(wire.Name(clientID, cl.name))
}

func (c *Coordinator) handleReadyToggle(clientID int, ready bool) {
	if c.engine != nil {
		return
	}
	cl := c.clients[clientID]
	if cl.ready == ready {
		return
	}
	cl.ready = ready
	if ready {
		c.broadcastLocked(wire.ReadyToStart(clientID))
		c.maybeStartLocked()
	} else {
		c.broadcastLocked(wire.NotReady(clientID))
	}
}

// maybeStartLocked begins the game once at least minClientsToStart clients
// are connected and every connected client is ready.
func (c *Coordinator) maybeStartLocked() {
	if c.clientCount < minClientsToStart {
		return
	}
	for _, cl := range c.clients {
		if cl != nil && !cl.ready {
			return
		}
	}

	c.compactRosterLocked()

	n := c.clientCount
	c.logger.Info().Int("players", n).Msg("all clients ready, starting game")
	c.engine = hitler.NewEngine(n, c)
	c.engine.Init(c.nextSeed())
	c.engine.Start()
}

// compactRosterLocked is the two-pointer Removenulls sweep: it produces a
// contiguous [0, clientCount) range, broadcasting a REASSIGN event for
// every slot it moves. It only ever runs once, at game start.
func (c *Coordinator) compactRosterLocked() {
	i, j := 0, maxClients-1
	for {
		for i < maxClients && c.clients[i] != nil {
			i++
		}
		for j >= 0 && c.clients[j] == nil {
			j--
		}
		if i >= j || i >= maxClients || j < 0 {
			return
		}
		c.clients[i] = c.clients[j]
		c.clients[j] = nil
		// Rewrite the socket's routing id too: the transport keeps
		// attributing this connection's frames to the old slot otherwise,
		// muting the moved player for the rest of the game.
		if c.clients[i].socket != nil {
			c.clients[i].socket.SetID(i)
		}
		c.broadcastLocked(wire.Reassign(j, i))
		i++
		j--
	}
}
