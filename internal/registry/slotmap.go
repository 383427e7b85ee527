package registry

import "sync"

// pageSize is the minor-index width: each page holds at most this many
// slots before a new page is grown.
const pageSize = 65536

// Room is whatever a SlotMap stores — opaque to the registry itself. In
// this server it is always a *session.Coordinator, but the registry has no
// reason to import that package.
type Room interface{}

// Factory constructs a Room once its key and self-destruct closure are
// known. Calling deleter reclaims the slot the room occupies; a room must
// never call it more than once.
type Factory func(key uint32, deleter func()) Room

type slotEntry struct {
	room       Room
	generation uint8
	occupied   bool
}

type page struct {
	entries []slotEntry
	free    []uint16
}

// SlotMap is the process-wide two-tier generational room registry: an
// outer vector of pages, each holding up to pageSize slots with its own
// free list, and a generation counter per slot that invalidates
// outstanding keys on reclaim.
//
// Each connection's callbacks arrive on their own goroutine, so
// GetSlot/Reclaim/Lookup serialize under one mutex.
type SlotMap struct {
	mu    sync.Mutex
	pages []*page
}

func pack(generation, major uint8, minor uint16) uint32 {
	return uint32(generation)<<24 | uint32(major)<<16 | uint32(minor)
}

func unpack(key uint32) (generation, major uint8, minor uint16) {
	return uint8(key >> 24), uint8(key >> 16), uint16(key)
}

// GetSlot allocates a slot, constructs its Room via f, and returns the new
// key alongside the constructed Room.
func (sm *SlotMap) GetSlot(f Factory) (uint32, Room) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	majorIdx := -1
	for i, p := range sm.pages {
		if len(p.free) > 0 || len(p.entries) < pageSize {
			majorIdx = i
			break
		}
	}
	if majorIdx == -1 {
		if len(sm.pages) >= 256 {
			panic("registry: room capacity exhausted")
		}
		sm.pages = append(sm.pages, &page{})
		majorIdx = len(sm.pages) - 1
	}

	p := sm.pages[majorIdx]

	var minorIdx int
	var generation uint8
	if n := len(p.free); n > 0 {
		minorIdx = int(p.free[n-1])
		p.free = p.free[:n-1]
		generation = p.entries[minorIdx].generation
	} else {
		minorIdx = len(p.entries)
		p.entries = append(p.entries, slotEntry{})
		generation = 0
	}

	key := pack(generation, uint8(majorIdx), uint16(minorIdx))
	deleter := func() { sm.Reclaim(key) }
	room := f(key, deleter)
	p.entries[minorIdx] = slotEntry{room: room, generation: generation, occupied: true}
	return key, room
}

// Reclaim invalidates key, bumping its slot's generation and returning it
// to the owning page's free list. Reclaiming a stale or already-reclaimed
// key is a silent no-op — the deleter closure a room holds must be safe to
// call at most once, but Reclaim itself tolerates being called from inside
// the room's own destruction path without any re-entrant surprises.
func (sm *SlotMap) Reclaim(key uint32) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	generation, major, minor := unpack(key)
	if int(major) >= len(sm.pages) {
		return
	}
	p := sm.pages[major]
	if int(minor) >= len(p.entries) {
		return
	}
	e := &p.entries[minor]
	if !e.occupied || e.generation != generation {
		return
	}
	e.room = nil
	e.occupied = false
	e.generation++
	p.free = append(p.free, minor)
}

// Lookup resolves key to its Room, or reports a miss if the key is
// out-of-range, unoccupied, or stale (generation mismatch).
func (sm *SlotMap) Lookup(key uint32) (Room, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	generation, major, minor := unpack(key)
	if int(major) >= len(sm.pages) {
		return nil, false
	}
	p := sm.pages[major]
	if int(minor) >= len(p.entries) {
		return nil, false
	}
	e := p.entries[minor]
	if !e.occupied || e.generation != generation {
		return nil, false
	}
	return e.room, true
}
