package node

import "github.com/tktrie/core/internal/bitops"

// Node is the single physical representation backing every node kind: a
// header word, an optional skip string, optional EOS/SKIP_EOS value
// cells, and — only when HasBranch() is set — a branch table whose
// concrete layout is selected by Shape().
//
// A from-scratch design in C or C++ might give every band its own
// exactly-sized struct and cast between them with a raw pointer. Go
// offers no control over struct layout to make that packing pay off, so
// every band lives in one struct instead, and header-bit dispatch is
// expressed as ordinary switch statements over Shape() rather than
// pointer aliasing between monomorphized types.
type Node[T any] struct {
	Header

	Skip    []byte
	EOS     cell[T]
	SkipEOS cell[T]

	// Branch table. Exactly one of these is populated, selected by
	// Shape(), and only when HasBranch() is true.
	small  bitops.SmallList // ShapeList
	bitmap bitops.Bitmap256 // ShapePop, ShapeFull

	binKeys  [2]byte // ShapeBinary
	binCount uint8

	// Interior nodes hold child pointers; LEAF nodes (HasBranch && IsLeaf)
	// hold value cells directly in the same slots instead. Exactly one of
	// children/values is populated.
	//
	// ShapePop and ShapeBinary/ShapeList are rank/position-compacted
	// (length == EntryCount()); ShapeFull is direct-indexed by character
	// (length == 256, nil/empty entries at absent characters) so that an
	// append to an empty slot is genuinely in-place.
	children []*Node[T]
	values   []cell[T]
}

// EntryCount returns the number of live branch-table entries. Meaningful
// only when HasBranch() is true.
func (n *Node[T]) EntryCount() int {
	switch n.Shape() {
	case ShapeBinary:
		return int(n.binCount)
	case ShapeList:
		return n.small.Count()
	case ShapePop, ShapeFull:
		return n.bitmap.Count()
	default:
		return 0
	}
}

// FindSlot returns the branch-table slot index for character c, using the
// layout-appropriate search: BINARY linear scan, LIST SmallList.Find, POP
// bitmap test+rank, FULL direct index.
func (n *Node[T]) FindSlot(c byte) (idx int, ok bool) {
	switch n.Shape() {
	case ShapeBinary:
		for i := 0; i < int(n.binCount); i++ {
			if n.binKeys[i] == c {
				return i, true
			}
		}
		return -1, false
	case ShapeList:
		idx := n.small.Find(c)
		return idx, idx >= 0
	case ShapePop:
		if !n.bitmap.Test(c) {
			return -1, false
		}
		return n.bitmap.Rank(c), true
	case ShapeFull:
		if !n.bitmap.Test(c) {
			return -1, false
		}
		return int(c), true
	default:
		return -1, false
	}
}

// Child returns the child pointer at slot idx (interior nodes only).
func (n *Node[T]) Child(idx int) *Node[T] {
	return n.children[idx]
}

// ValueCell returns the value cell at slot idx (LEAF nodes only).
func (n *Node[T]) ValueCell(idx int) *cell[T] {
	return &n.values[idx]
}

// ForEachChild calls fn for every (character, child) pair in strictly
// ascending byte order. Interior nodes only.
func (n *Node[T]) ForEachChild(fn func(c byte, child *Node[T])) {
	switch n.Shape() {
	case ShapeBinary:
		for i := 0; i < int(n.binCount); i++ {
			fn(n.binKeys[i], n.children[i])
		}
	case ShapeList:
		for i := 0; i < n.small.Count(); i++ {
			fn(n.small.CharAt(i), n.children[i])
		}
	case ShapePop:
		for i := 0; i < n.bitmap.Count(); i++ {
			c, _ := n.bitmap.Select(i)
			fn(c, n.children[i])
		}
	case ShapeFull:
		c, ok := n.bitmap.FirstSet()
		for ok {
			fn(c, n.children[c])
			c, ok = n.bitmap.NextSet(c)
		}
	}
}

// ForEachValue calls fn for every (character, value cell) pair in
// ascending order. LEAF nodes only.
func (n *Node[T]) ForEachValue(fn func(c byte, v *cell[T])) {
	switch n.Shape() {
	case ShapeBinary:
		for i := 0; i < int(n.binCount); i++ {
			fn(n.binKeys[i], &n.values[i])
		}
	case ShapeList:
		for i := 0; i < n.small.Count(); i++ {
			fn(n.small.CharAt(i), &n.values[i])
		}
	case ShapePop:
		for i := 0; i < n.bitmap.Count(); i++ {
			c, _ := n.bitmap.Select(i)
			fn(c, &n.values[i])
		}
	case ShapeFull:
		c, ok := n.bitmap.FirstSet()
		for ok {
			fn(c, &n.values[c])
			c, ok = n.bitmap.NextSet(c)
		}
	}
}

// FirstChar returns the smallest character present in the branch table.
func (n *Node[T]) FirstChar() (byte, bool) {
	switch n.Shape() {
	case ShapeBinary:
		if n.binCount == 0 {
			return 0, false
		}
		return n.binKeys[0], true
	case ShapeList:
		if n.small.Count() == 0 {
			return 0, false
		}
		return n.small.CharAt(0), true
	case ShapePop, ShapeFull:
		return n.bitmap.FirstSet()
	default:
		return 0, false
	}
}

// NextChar returns the smallest character strictly greater than c.
func (n *Node[T]) NextChar(c byte) (byte, bool) {
	switch n.Shape() {
	case ShapeBinary:
		for i := 0; i < int(n.binCount); i++ {
			if n.binKeys[i] > c {
				return n.binKeys[i], true
			}
		}
		return 0, false
	case ShapeList:
		for i := 0; i < n.small.Count(); i++ {
			if ch := n.small.CharAt(i); ch > c {
				return ch, true
			}
		}
		return 0, false
	case ShapePop, ShapeFull:
		return n.bitmap.NextSet(c)
	default:
		return 0, false
	}
}

// BandFor returns the shape whose live-entry band contains count.
func BandFor(count int) Shape {
	switch {
	case count <= BinaryMax:
		return ShapeBinary
	case count <= ListMax:
		return ShapeList
	case count <= PopMax:
		return ShapePop
	default:
		return ShapeFull
	}
}
