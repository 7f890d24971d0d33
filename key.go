// Package triecore implements a concurrent, ordered, in-memory associative
// container keyed by byte strings: a path-compressed radix trie with
// adaptive node layouts, copy-on-write mutation, and epoch-based memory
// reclamation. See internal/node for the node model and mutation engine
// and internal/epoch for the reclamation protocol.
package triecore

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Key is a byte-string trie key. Use the constructors below to build Keys
// from primitive types or normalized strings rather than converting by
// hand, so that integer and text keys compare in the order callers expect.
//
// Integer encoding policy
// -----------------------
// All integer constructors produce an 8-byte big-endian representation
// (most-significant byte first). Signed constructors first convert the
// value to int64 and add an offset of `1<<63` before encoding, flipping
// the sign bit so that negative values sort below non-negative ones in
// byte order. Unsigned constructors encode the value directly with no
// offset: big-endian bytes of an unsigned integer already compare in
// numeric order.
//
// This mapping has two useful properties:
//   - Lexicographic byte-wise comparison of Keys corresponds to numeric
//     ordering of the original values (taking signedness into account).
//   - Values produced from different source widths are comparable within
//     the same signedness: KeyFromInt32(x) equals KeyFromInt64(x), and
//     KeyFromUint16(x) equals KeyFromUint64(uint64(x)).
//
// Because the two schemes differ, signed- and unsigned-derived Keys do
// not interleave in numeric order; a single trie should stick to one
// signedness for its integer keys.
type Key []byte

const int64Offset = uint64(1) << 63

// KeyFromBytes returns a copy of b as a Key. A nil b yields an empty
// (zero-length, non-nil) Key.
func KeyFromBytes(b []byte) Key {
	if b == nil {
		return []byte{}
	}
	kb := make([]byte, len(b))
	copy(kb, b)
	return Key(kb)
}

// KeyFromString returns a Key built from the UTF-8 encoding of s after
// normalizing it to Unicode NFC, so that visually identical strings with
// different combining-character decompositions compare equal as Keys.
func KeyFromString(s string) Key {
	return KeyFromBytes([]byte(norm.NFC.String(s)))
}

// KeyFromInt converts an int to an order-preserving 8-byte Key.
func KeyFromInt(i int) Key { return KeyFromInt64(int64(i)) }

// KeyFromInt64 converts an int64 to an order-preserving 8-byte Key.
func KeyFromInt64(i int64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i)+int64Offset)
	return Key(b[:])
}

// KeyFromInt32 converts an int32 to an order-preserving 8-byte Key.
func KeyFromInt32(i int32) Key { return KeyFromInt64(int64(i)) }

// KeyFromInt16 converts an int16 to an order-preserving 8-byte Key.
func KeyFromInt16(i int16) Key { return KeyFromInt64(int64(i)) }

// KeyFromInt8 converts an int8 to an order-preserving 8-byte Key.
func KeyFromInt8(i int8) Key { return KeyFromInt64(int64(i)) }

// KeyFromUint converts a uint to an order-preserving 8-byte Key.
func KeyFromUint(u uint) Key { return KeyFromUint64(uint64(u)) }

// KeyFromUint64 converts a uint64 to an order-preserving 8-byte Key.
func KeyFromUint64(u uint64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	return Key(b[:])
}

// KeyFromUint32 converts a uint32 to an order-preserving 8-byte Key.
func KeyFromUint32(u uint32) Key { return KeyFromUint64(uint64(u)) }

// KeyFromUint16 converts a uint16 to an order-preserving 8-byte Key.
func KeyFromUint16(u uint16) Key { return KeyFromUint64(uint64(u)) }

// KeyFromUint8 converts a uint8 to an order-preserving 8-byte Key.
func KeyFromUint8(u uint8) Key { return KeyFromUint64(uint64(u)) }

// KeyFromRune converts a rune to its UTF-8 encoding as a Key.
func KeyFromRune(r rune) Key {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return KeyFromBytes(buf[:n])
}

// Bytes returns a copy of k as a byte slice.
func (k Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	b := make([]byte, len(k))
	copy(b, k)
	return b
}

// Clone returns an independent copy of k. Clone(nil) is nil.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	return Key(k.Bytes())
}

// String renders k as uppercase hex byte tuples, e.g. "[01,AB,00]".
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i, b := range k {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether k and other hold the same bytes.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// LessThan reports whether k sorts strictly before other in byte-lex order.
func (k Key) LessThan(other Key) bool {
	for i := 0; i < len(k) && i < len(other); i++ {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return len(k) < len(other)
}

// IsEmpty reports whether k is the empty key.
func (k Key) IsEmpty() bool { return len(k) == 0 }
