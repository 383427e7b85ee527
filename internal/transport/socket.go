// Package transport adapts gorilla/websocket connections to the narrow
// Socket contract the session coordinator depends on: a readPump/writePump
// goroutine pair per connection carrying the fixed binary protocol.
package transport

// Socket is the coordinator's view of one client connection. It never
// blocks: TryWrite reports whether the frame was handed to the transport
// for delivery, so the coordinator's own backpressure queue only holds
// what the transport couldn't immediately accept.
type Socket interface {
	// TryWrite attempts a non-blocking send of one binary frame. It
	// reports false if the transport's internal buffer is full.
	TryWrite(frame []byte) bool

	// Close closes the connection with the given WebSocket close code.
	Close(code int, reason string)

	// SetID rewrites the client id the transport attributes inbound
	// frames to. The coordinator calls it when a client joins and again
	// for any client it moves during roster compaction, so a reassigned
	// player's frames keep routing to their new slot.
	SetID(id int)
}
