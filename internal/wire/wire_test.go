package wire

import (
	"testing"

	"github.com/scaredginger/secret-hitler/pkg/hitler"
)

func TestDecodeTargetedActions(t *testing.T) {
	cases := []struct {
		first  byte
		action Action
		arg    int
	}{
		{0, ActionSelectChancellor, 0},
		{8, ActionSelectChancellor, 1},     // (1<<3)|0
		{1, ActionEliminatePolicy, 0},
		{17, ActionEliminatePolicy, 2},     // (2<<3)|1
		{2, ActionReveal, 0},
		{3, ActionKill, 0},
		{4, ActionSelectSpecialPresident, 0},
		{(9 << 3) | 4, ActionSelectSpecialPresident, 9},
	}
	for _, c := range cases {
		got := Decode([]byte{c.first})
		if got.Action != c.action || got.Arg != c.arg {
			t.Errorf("Decode(%08b) = %+v, want action=%v arg=%d", c.first, got, c.action, c.arg)
		}
	}
}

func TestDecodeExtendedActions(t *testing.T) {
	cases := []struct {
		sub    byte
		action Action
	}{
		{0, ActionVoteJa},
		{1, ActionVoteNein},
		{2, ActionAcceptVeto},
		{3, ActionRejectVeto},
		{5, ActionMarkReady},
		{6, ActionMarkNotReady},
	}
	for _, c := range cases {
		first := (c.sub << 3) | 7
		got := Decode([]byte{first})
		if got.Action != c.action {
			t.Errorf("Decode extended sub=%d: action=%v, want %v", c.sub, got.Action, c.action)
		}
	}
}

func TestDecodeSetName(t *testing.T) {
	first := byte((4 << 3) | 7)
	frame := append([]byte{first}, []byte("alice")...)
	got := Decode(frame)
	if got.Action != ActionSetName || string(got.Name) != "alice" {
		t.Fatalf("Decode(set name) = %+v", got)
	}

	longName := make([]byte, 256)
	frame = append([]byte{first}, longName...)
	got = Decode(frame)
	if got.Action != ActionNone {
		t.Fatalf("names over 255 bytes must be rejected, got %+v", got)
	}
}

func TestDecodeUnknownModsIgnored(t *testing.T) {
	for _, mod := range []byte{5, 6} {
		got := Decode([]byte{mod})
		if got.Action != ActionNone {
			t.Errorf("mod=%d should be ignored, got %+v", mod, got)
		}
	}
}

func TestDecodeEmptyFrame(t *testing.T) {
	if got := Decode(nil); got.Action != ActionNone {
		t.Fatalf("Decode(nil) = %+v", got)
	}
}

func TestBitmap10RoundTrip(t *testing.T) {
	for _, bm := range []uint16{0, 1, 0x3FF, 0x155, 0x2AA} {
		frame := RequestInvestigation(bm)
		if len(frame) != 2 {
			t.Fatalf("bitmap frame must be 2 bytes, got %d", len(frame))
		}
		nibble := frame[0] >> 4
		low2 := uint16(nibble>>2) & 0x3
		got := low2 | uint16(frame[1])<<2
		if got != bm {
			t.Errorf("bitmap %#x round-tripped as %#x", bm, got)
		}
	}
}

func TestBallotEncoding(t *testing.T) {
	frame := Ballot(true, 0x3FF)
	if frame[0]&0x0F != CodeBallot {
		t.Fatalf("ballot frame has wrong code")
	}
	if (frame[0]>>4)&1 != 1 {
		t.Fatalf("ballot success bit not set")
	}
}

func TestRequestChancellorNominationLayout(t *testing.T) {
	frame := RequestChancellorNomination(5, 0x2AA)
	if len(frame) != 3 {
		t.Fatalf("expected 3-byte frame, got %d", len(frame))
	}
	if frame[0]&0x0F != CodeExtended {
		t.Fatalf("wrong code byte")
	}
	sub := frame[0] >> 4
	if sub != SubRequestChancellorNomination {
		t.Fatalf("sub = %d, want %d", sub, SubRequestChancellorNomination)
	}
	presidentID := int(frame[1] & 0x3F)
	if presidentID != 5 {
		t.Fatalf("presidentID = %d, want 5", presidentID)
	}
}

func TestGameKeyBigEndian(t *testing.T) {
	frame := GameKey(0x01020304)
	if len(frame) != 5 {
		t.Fatalf("expected 5-byte frame, got %d", len(frame))
	}
	if frame[1] != 0x01 || frame[2] != 0x02 || frame[3] != 0x03 || frame[4] != 0x04 {
		t.Fatalf("key not big-endian: %v", frame[1:])
	}
}

func TestTeamFascistOrdinal(t *testing.T) {
	// fascists at 1, 4, 7; Hitler at 4 -> ordinal 1 (one fascist id below it).
	var bm uint16
	bm |= 1 << 1
	bm |= 1 << 4
	bm |= 1 << 7
	frame := TeamFascist(4, bm)
	ordinal := frame[0] >> 4 & 0x3
	if ordinal != 1 {
		t.Fatalf("ordinal = %d, want 1", ordinal)
	}
}

func TestTeamHitlerVariants(t *testing.T) {
	known := TeamHitlerKnown(3)
	if known[0]>>4 != 4 {
		t.Fatalf("TeamHitlerKnown nibble = %d, want 4 (fascId+1)", known[0]>>4)
	}
	blind := TeamHitlerBlind()
	if blind[0]>>4 != 15 {
		t.Fatalf("TeamHitlerBlind nibble = %d, want 15", blind[0]>>4)
	}
}

func TestRequestPresidentPolicyChoiceBits(t *testing.T) {
	frame := RequestPresidentPolicyChoice(hitler.Fascist, hitler.Liberal, hitler.Fascist)
	nibble := frame[0] >> 4
	if nibble&0x1 != 0 {
		t.Fatalf("bit4 must stay 0 for this code")
	}
	if (nibble>>1)&1 != 1 || (nibble>>2)&1 != 0 || (nibble>>3)&1 != 1 {
		t.Fatalf("team bits wrong: nibble=%04b", nibble)
	}
}
