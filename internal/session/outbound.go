package session

// safeSendLocked is the only path any code in this package uses to write
// to a client: it drains whatever is already queued, then tries the new
// frame, and only falls back to the queue if the transport still reports
// backpressure. A disconnected client (nil socket) is a silent drop —
// there is no such thing as a send failing loudly.
func (c *Coordinator) safeSendLocked(cl *client, frame []byte) {
	if cl.socket == nil {
		return
	}
	c.drainLocked(cl)
	if len(cl.queue) == 0 && cl.socket.TryWrite(frame) {
		return
	}
	c.enqueueLocked(cl, frame)
}

// drainLocked flushes as much of cl's backlog as the transport will
// currently accept, stopping at the first frame it still can't take.
func (c *Coordinator) drainLocked(cl *client) {
	for len(cl.queue) > 0 {
		if !cl.socket.TryWrite(cl.queue[0]) {
			return
		}
		cl.queue = cl.queue[1:]
	}
}

// enqueueLocked appends frame to cl's backlog, truncating to
// maxQueuedFrameBytes — messages larger than that are truncated by design.
func (c *Coordinator) enqueueLocked(cl *client, frame []byte) {
	if len(frame) > maxQueuedFrameBytes {
		frame = frame[:maxQueuedFrameBytes]
	}
	cl.queue = append(cl.queue, frame)
	c.logger.Warn().Int("depth", len(cl.queue)).Msg("socket backpressure, frame queued")
}

func (c *Coordinator) broadcastLocked(frame []byte) {
	for _, cl := range c.clients {
		if cl != nil {
			c.safeSendLocked(cl, frame)
		}
	}
}

// SendToClient pushes frame to one client by id. It is the one public send
// entry point, used by the HTTP layer right after AddClient succeeds (the
// /create route's GAME_KEY frame) — everything else goes through the
// engine's event callbacks instead.
func (c *Coordinator) SendToClient(clientID int, frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendToLocked(clientID, frame)
}

func (c *Coordinator) sendToLocked(clientID int, frame []byte) {
	if clientID < 0 || clientID >= maxClients {
		return
	}
	cl := c.clients[clientID]
	if cl == nil {
		return
	}
	c.safeSendLocked(cl, frame)
}
