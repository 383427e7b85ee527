package registry

import "testing"

type fakeRoom struct {
	key     uint32
	deleter func()
}

func newFakeRoom(key uint32, deleter func()) Room {
	return &fakeRoom{key: key, deleter: deleter}
}

func TestGetSlotAndLookup(t *testing.T) {
	var sm SlotMap
	key, room := sm.GetSlot(newFakeRoom)
	got, ok := sm.Lookup(key)
	if !ok {
		t.Fatal("Lookup missed a freshly allocated key")
	}
	if got != room {
		t.Fatal("Lookup returned a different room than GetSlot constructed")
	}
}

func TestReclaimInvalidatesKey(t *testing.T) {
	var sm SlotMap
	key, room := sm.GetSlot(newFakeRoom)
	fr := room.(*fakeRoom)
	fr.deleter()

	if _, ok := sm.Lookup(key); ok {
		t.Fatal("Lookup succeeded on a reclaimed key")
	}
}

func TestReclaimedSlotIsReused(t *testing.T) {
	var sm SlotMap
	key1, room1 := sm.GetSlot(newFakeRoom)
	room1.(*fakeRoom).deleter()

	key2, _ := sm.GetSlot(newFakeRoom)

	gen1, major1, minor1 := unpack(key1)
	gen2, major2, minor2 := unpack(key2)
	if major1 != major2 || minor1 != minor2 {
		t.Fatalf("expected slot reuse: key1=%d key2=%d", key1, key2)
	}
	if gen2 != gen1+1 {
		t.Fatalf("generation = %d, want %d", gen2, gen1+1)
	}
	if key1 == key2 {
		t.Fatal("reused slot must still produce a distinct key (generation bump)")
	}
}

func TestReclaimTolaratesDoubleCall(t *testing.T) {
	var sm SlotMap
	key, _ := sm.GetSlot(newFakeRoom)
	sm.Reclaim(key)
	sm.Reclaim(key) // must not panic or corrupt the free list
	if _, ok := sm.Lookup(key); ok {
		t.Fatal("double-reclaimed key should still miss")
	}
}

func TestLookupMissOnUnknownKey(t *testing.T) {
	var sm SlotMap
	if _, ok := sm.Lookup(0xFFFFFFFF); ok {
		t.Fatal("Lookup hit on a key never allocated")
	}
}

func TestFirstPageAllocatesSequentialMinors(t *testing.T) {
	var sm SlotMap
	// Forcing a second page would take 65536 fake rooms (pageSize is a
	// const), so this only confirms that fresh allocations stay on the first
	// page with sequential minor indices before any reclaim.
	var lastMinor uint16
	for i := 0; i < 10; i++ {
		key, _ := sm.GetSlot(newFakeRoom)
		_, major, minor := unpack(key)
		if major != 0 {
			t.Fatalf("unexpected page growth at i=%d", i)
		}
		if i > 0 && minor != lastMinor+1 {
			t.Fatalf("minor indices not sequential: %d -> %d", lastMinor, minor)
		}
		lastMinor = minor
	}
}

func TestKeyRoundTrip(t *testing.T) {
	cases := []struct {
		key uint32
		s   string
	}{
		{0x00000000, "a"},
		{0x0000000F, "p"},
		{0x00000010, "aa"},
	}
	for _, c := range cases {
		if got := EncodeKey(c.key); got != c.s {
			t.Errorf("EncodeKey(%#x) = %q, want %q", c.key, got, c.s)
		}
		got, ok := DecodeKey(c.s)
		if !ok || got != c.key {
			t.Errorf("DecodeKey(%q) = (%#x,%v), want (%#x,true)", c.s, got, ok, c.key)
		}
	}
}

func TestKeyRoundTripRandomSample(t *testing.T) {
	for _, key := range []uint32{1, 255, 256, 4095, 4096, 65535, 65536, 1 << 20, 1 << 28} {
		s := EncodeKey(key)
		got, ok := DecodeKey(s)
		if !ok || got != key {
			t.Errorf("round trip failed for %#x: encoded %q, decoded (%#x,%v)", key, s, got, ok)
		}
	}
}

func TestDecodeKeyRejectsInvalidAlphabet(t *testing.T) {
	if _, ok := DecodeKey("az9"); ok {
		t.Fatal("DecodeKey accepted a non-alphabet character")
	}
	if _, ok := DecodeKey(""); ok {
		t.Fatal("DecodeKey accepted an empty string")
	}
}
