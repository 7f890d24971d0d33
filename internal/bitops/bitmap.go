package bitops

import "github.com/bits-and-blooms/bitset"

// Bitmap256 is a 256-bit presence set indexed by byte value, backed by
// bits-and-blooms/bitset. POP and FULL nodes use it both as a membership
// test (does a child exist for byte c) and, for POP nodes, as the rank
// index mapping a byte value to its storage slot in the node's compacted
// child/value array.
//
// The bitset is pre-sized to 256 bits at construction and never grown or
// shrunk, so Rank/Select/Count never pay for a resize on the hot path.
type Bitmap256 struct {
	bits *bitset.BitSet
}

// NewBitmap256 returns an empty 256-bit bitmap.
func NewBitmap256() Bitmap256 {
	return Bitmap256{bits: bitset.New(256)}
}

// Test reports whether c is a member.
func (b Bitmap256) Test(c byte) bool {
	return b.bits.Test(uint(c))
}

// Set marks c as a member.
func (b Bitmap256) Set(c byte) {
	b.bits.Set(uint(c))
}

// Clear removes c from the set.
func (b Bitmap256) Clear(c byte) {
	b.bits.Clear(uint(c))
}

// Count returns the number of members.
func (b Bitmap256) Count() int {
	return int(b.bits.Count())
}

// FirstSet returns the smallest member, or (0, false) if empty.
func (b Bitmap256) FirstSet() (byte, bool) {
	idx, ok := b.bits.NextSet(0)
	if !ok || idx > 255 {
		return 0, false
	}
	return byte(idx), true
}

// NextSet returns the smallest member strictly greater than c, or
// (0, false) if none exists.
func (b Bitmap256) NextSet(c byte) (byte, bool) {
	if c == 255 {
		return 0, false
	}
	idx, ok := b.bits.NextSet(uint(c) + 1)
	if !ok || idx > 255 {
		return 0, false
	}
	return byte(idx), true
}

// Rank returns the number of members strictly below c — the storage slot a
// POP node keeps the child/value for byte c at, once Test(c) is true.
func (b Bitmap256) Rank(c byte) int {
	if c == 0 {
		return 0
	}
	// Rank(i) in bits-and-blooms/bitset counts set bits in [0, i], inclusive.
	// We want the count strictly below c, i.e. Rank(c-1).
	return int(b.bits.Rank(uint(c) - 1))
}

// Select returns the i-th (0-indexed) member in ascending order, i.e. the
// inverse of Rank: Select(Rank(c)) == c whenever Test(c) is true.
func (b Bitmap256) Select(i int) (byte, bool) {
	if i < 0 || i >= b.Count() {
		return 0, false
	}
	idx := b.bits.Select(uint(i))
	if idx > 255 {
		return 0, false
	}
	return byte(idx), true
}

// Clone returns an independent copy of the bitmap.
func (b Bitmap256) Clone() Bitmap256 {
	return Bitmap256{bits: b.bits.Clone()}
}
