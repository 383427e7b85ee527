package registry

// Package registry implements the room registry: a two-tier generational
// slot map (see SlotMap) plus the base-16 "letter" key encoding used on the
// /join/:game URL.
//
// A room key is logically (generation:8, major:8, minor:16) packed into a
// 32-bit integer (see pack / unpack in slotmap.go); this file only deals with the
// string representation of that 32-bit value.

const keyAlphabet = "abcdefghijklmnop"

// pow16 returns 16^e for small e (at most 8, since a uint32 never needs
// more than 8 base-16 digits).
func pow16(e int) uint64 {
	v := uint64(1)
	for i := 0; i < e; i++ {
		v *= 16
	}
	return v
}

// residue is the offset subtracted from a key before it is written in L
// base-16 digits: 16*(16^(L-1)-1)/15. It is what makes the encoding dense
// (every string over the alphabet decodes to exactly one key, and every
// key has exactly one minimal-length encoding).
func residue(length int) uint64 {
	if length <= 0 {
		return 0
	}
	return 16 * (pow16(length-1) - 1) / 15
}

// EncodeKey renders a 32-bit key as a variable-length string over 'a'..'p'.
func EncodeKey(key uint32) string {
	v := uint64(key)
	for length := 1; length <= 9; length++ {
		r := residue(length)
		if v < r {
			continue
		}
		rem := v - r
		if rem < pow16(length) {
			buf := make([]byte, length)
			for i := 0; i < length; i++ {
				buf[i] = keyAlphabet[rem%16]
				rem /= 16
			}
			return string(buf)
		}
	}
	// unreachable for any actual uint32 value
	return ""
}

// DecodeKey parses a letter-encoded key, returning ok=false for any byte
// outside 'a'..'p' or a value that overflows uint32.
func DecodeKey(s string) (uint32, bool) {
	// Every uint32 encodes in at most 8 digits; longer strings would also
	// overflow the uint64 accumulator below.
	if len(s) == 0 || len(s) > 8 {
		return 0, false
	}
	var v uint64
	mul := uint64(1)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'p' {
			return 0, false
		}
		v += uint64(c-'a') * mul
		mul *= 16
	}
	v += residue(len(s))
	if v > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(v), true
}
