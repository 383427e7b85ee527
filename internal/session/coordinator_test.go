package session

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/scaredginger/secret-hitler/internal/transport"
	"github.com/scaredginger/secret-hitler/internal/wire"
	"github.com/scaredginger/secret-hitler/pkg/hitler"
)

type fakeSocket struct {
	// id mirrors the routing id the transport would attribute inbound
	// frames to; the coordinator rewrites it via SetID.
	id          int
	sent        [][]byte
	closed      bool
	closeCode   int
	rejectWrite bool
}

func (f *fakeSocket) TryWrite(frame []byte) bool {
	if f.rejectWrite {
		return false
	}
	f.sent = append(f.sent, append([]byte(nil), frame...))
	return true
}

func (f *fakeSocket) Close(code int, reason string) {
	f.closed = true
	f.closeCode = code
}

func (f *fakeSocket) SetID(id int) {
	f.id = id
}

func fixedSeed(n int64) func() int64 {
	return func() int64 { return n }
}

func newTestCoordinator() *Coordinator {
	return New(1, func() {}, zerolog.Nop(), fixedSeed(42))
}

func addReadyClient(t *testing.T, c *Coordinator) (int, *fakeSocket) {
	t.Helper()
	sock := &fakeSocket{}
	id, ok := c.AddClient(sock)
	if !ok {
		t.Fatal("AddClient rejected a join with room capacity available")
	}
	return id, sock
}

func TestGameStartsAtFiveReadyClients(t *testing.T) {
	c := newTestCoordinator()
	var socks []*fakeSocket
	var ids []int
	for i := 0; i < 5; i++ {
		id, sock := addReadyClient(t, c)
		ids = append(ids, id)
		socks = append(socks, sock)
	}

	for _, id := range ids {
		readyFrame := (5 << 3) | 7 // mod==7, sub==5 (mark ready)
		c.HandleFrame(id, []byte{byte(readyFrame)})
	}

	if c.engine == nil {
		t.Fatal("engine did not start once 5 clients were all ready")
	}
	// Every client should have received exactly one TEAM frame among its
	// sent messages (own-id NAME replay plus READY_TO_START broadcasts
	// precede it).
	for i, sock := range socks {
		teamFrames := 0
		for _, frame := range sock.sent {
			if frame[0]&0x0F == wire.CodeTeam {
				teamFrames++
			}
		}
		if teamFrames != 1 {
			t.Errorf("client %d received %d TEAM frames, want 1", i, teamFrames)
		}
	}
}

func TestRoomRejectsAnEleventhClient(t *testing.T) {
	c := newTestCoordinator()
	for i := 0; i < 10; i++ {
		if _, ok := c.AddClient(&fakeSocket{}); !ok {
			t.Fatalf("client %d unexpectedly rejected", i)
		}
	}
	if _, ok := c.AddClient(&fakeSocket{}); ok {
		t.Fatal("an 11th client should have been rejected")
	}
}

func TestPreGameDisconnectDecrementsRoster(t *testing.T) {
	reclaimed := false
	c := New(1, func() { reclaimed = true }, zerolog.Nop(), fixedSeed(1))
	id, _ := addReadyClient(t, c)

	c.RemoveClient(id, 0)
	if c.clientCount != 0 {
		t.Fatalf("clientCount = %d, want 0", c.clientCount)
	}
	if !reclaimed {
		t.Fatal("last client leaving pre-game should trigger self-deletion")
	}
}

func TestMidGameDisconnectForceClosesEveryone(t *testing.T) {
	reclaimed := false
	c := New(1, func() { reclaimed = true }, zerolog.Nop(), fixedSeed(7))
	var socks []*fakeSocket
	var ids []int
	for i := 0; i < 5; i++ {
		id, sock := addReadyClient(t, c)
		ids = append(ids, id)
		socks = append(socks, sock)
	}
	for _, id := range ids {
		c.HandleFrame(id, []byte{byte((5 << 3) | 7)})
	}
	if c.engine == nil {
		t.Fatal("game did not start")
	}

	c.RemoveClient(ids[2], 0)

	if !reclaimed {
		t.Fatal("mid-game disconnect should self-destruct the room")
	}
	for i, sock := range socks {
		if i == 2 {
			continue
		}
		if !sock.closed || sock.closeCode != transport.CloseMidGameForce {
			t.Errorf("client %d not force-closed with %d: closed=%v code=%d", i, transport.CloseMidGameForce, sock.closed, sock.closeCode)
		}
	}
}

func TestRemoveClientIgnoresServerInitiatedCodes(t *testing.T) {
	c := newTestCoordinator()
	id, _ := addReadyClient(t, c)
	before := c.clientCount
	c.RemoveClient(id, transport.CloseJoinRefused)
	if c.clientCount != before {
		t.Fatal("a server-initiated close code must not re-trigger teardown logic")
	}
}

func TestNominationAndVoteFlow(t *testing.T) {
	c := newTestCoordinator()
	var ids []int
	for i := 0; i < 5; i++ {
		id, _ := addReadyClient(t, c)
		ids = append(ids, id)
	}
	for _, id := range ids {
		c.HandleFrame(id, []byte{byte((5 << 3) | 7)})
	}

	president := c.engine.PresidentID
	// find an eligible candidate
	candidate := -1
	for i := 0; i < 5; i++ {
		if i != president {
			candidate = i
			break
		}
	}
	// select-chancellor: mod==0, arg = candidate
	c.HandleFrame(president, []byte{byte(candidate << 3)})
	if c.engine.ChancellorID != candidate {
		t.Fatalf("nomination from the president did not take effect: chancellorID=%d", c.engine.ChancellorID)
	}

	// a non-president trying to nominate is ignored
	other := (president + 1) % 5
	if other == candidate {
		other = (other + 1) % 5
	}
	c.HandleFrame(other, []byte{byte((candidate << 3))})
	if c.engine.ChancellorID != candidate {
		t.Fatal("a non-president nomination must be dropped silently")
	}

	for i := 0; i < 5; i++ {
		// everyone votes JA: mod==7, sub==0
		c.HandleFrame(i, []byte{byte(7)})
	}
	if c.engine.ElectionTracker != 0 {
		t.Fatalf("a unanimous JA election should succeed, tracker=%d", c.engine.ElectionTracker)
	}
}

func TestCompactionReassignsHighestSlotIntoHole(t *testing.T) {
	c := newTestCoordinator()
	var socks []*fakeSocket
	for i := 0; i < 6; i++ {
		_, sock := addReadyClient(t, c)
		socks = append(socks, sock)
	}

	// Client 2 leaves pre-game, leaving a hole in the roster.
	c.RemoveClient(2, 0)

	for _, id := range []int{0, 1, 3, 4, 5} {
		c.HandleFrame(id, []byte{byte((5 << 3) | 7)})
	}

	if c.engine == nil {
		t.Fatal("game did not start with 5 ready clients after a pre-game leave")
	}
	if c.clients[2] == nil || c.clients[5] != nil {
		t.Fatal("compaction did not move slot 5 into the hole at slot 2")
	}

	want := wire.Reassign(5, 2)
	found := false
	for _, frame := range socks[5].sent {
		if len(frame) == len(want) && frame[0] == want[0] && frame[1] == want[1] {
			found = true
		}
	}
	if !found {
		t.Fatal("no REASSIGN(5->2) frame was broadcast during compaction")
	}
}

func TestRepeatedReadyToggleBroadcastsOnce(t *testing.T) {
	c := newTestCoordinator()
	id, _ := addReadyClient(t, c)
	_, observer := addReadyClient(t, c)

	ready := []byte{byte((5 << 3) | 7)}
	c.HandleFrame(id, ready)
	c.HandleFrame(id, ready)
	c.HandleFrame(id, ready)

	count := 0
	for _, frame := range observer.sent {
		if frame[0]&0x0F == wire.CodeReadyToStart {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("observer saw %d READY_TO_START frames, want 1", count)
	}
}

func TestCompactionRemapsInboundRouting(t *testing.T) {
	c := newTestCoordinator()
	var socks []*fakeSocket
	for i := 0; i < 6; i++ {
		_, sock := addReadyClient(t, c)
		socks = append(socks, sock)
	}

	c.RemoveClient(2, 0)

	for _, id := range []int{0, 1, 3, 4, 5} {
		c.HandleFrame(id, []byte{byte((5 << 3) | 7)})
	}
	if c.engine == nil {
		t.Fatal("game did not start")
	}
	if socks[5].id != 2 {
		t.Fatalf("moved socket routing id = %d, want 2", socks[5].id)
	}

	// Drive a full election attributing each frame to its socket's own
	// routing id, the way the transport does. The moved player must be
	// able to act, or the election can never complete.
	bySeat := map[int]*fakeSocket{}
	for _, s := range []*fakeSocket{socks[0], socks[1], socks[3], socks[4], socks[5]} {
		bySeat[s.id] = s
	}
	president := c.engine.PresidentID
	candidate := (president + 1) % 5
	c.HandleFrame(bySeat[president].id, []byte{byte(candidate << 3)})
	if c.engine.ChancellorID != candidate {
		t.Fatalf("nomination via routing id did not take effect: chancellorID=%d", c.engine.ChancellorID)
	}
	for seat := 0; seat < 5; seat++ {
		c.HandleFrame(bySeat[seat].id, []byte{7}) // vote JA
	}
	if c.engine.Phase != hitler.PhaseAwaitingPresidentPolicy {
		t.Fatalf("election did not complete: phase=%v", c.engine.Phase)
	}
}

func TestBackpressureQueueIsFIFOAndTruncates(t *testing.T) {
	c := newTestCoordinator()
	id, sock := addReadyClient(t, c)

	sock.rejectWrite = true
	c.SendToClient(id, []byte{0xAA})
	big := make([]byte, 300)
	c.SendToClient(id, big)

	if got := len(c.clients[id].queue); got != 2 {
		t.Fatalf("queue depth = %d, want 2", got)
	}
	if got := len(c.clients[id].queue[1]); got != maxQueuedFrameBytes {
		t.Fatalf("oversized queued frame = %d bytes, want truncation to %d", got, maxQueuedFrameBytes)
	}

	sock.rejectWrite = false
	sentBefore := len(sock.sent)
	c.SendToClient(id, []byte{0xBB})

	if len(sock.sent) != sentBefore+3 {
		t.Fatalf("drain did not flush the backlog: sent %d frames", len(sock.sent)-sentBefore)
	}
	flushed := sock.sent[sentBefore:]
	if flushed[0][0] != 0xAA || flushed[2][0] != 0xBB {
		t.Fatal("backlog not drained in FIFO order before the new frame")
	}
}

func TestJoinRejectedAfterGameStarts(t *testing.T) {
	c := newTestCoordinator()
	var ids []int
	for i := 0; i < 5; i++ {
		id, _ := addReadyClient(t, c)
		ids = append(ids, id)
	}
	for _, id := range ids {
		c.HandleFrame(id, []byte{byte((5 << 3) | 7)})
	}
	if _, ok := c.AddClient(&fakeSocket{}); ok {
		t.Fatal("a join after game start must be rejected even with seats free")
	}
}
