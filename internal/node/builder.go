package node

import "github.com/tktrie/core/internal/bitops"

// NewSkipLeaf builds a standalone pure SKIP leaf: a single value cell
// reached by matching skip, with no branch table. skip must be non-empty.
func NewSkipLeaf[T any](skip []byte, value T) *Node[T] {
	n := &Node[T]{Header: Init(false, true, false, true, false, ShapeBinary)}
	n.Skip = append([]byte(nil), skip...)
	n.SkipEOS.Set(value)
	n.Unpoison()
	return n
}

// NewEOSLeaf builds a node holding a value for the empty key: no skip, no
// branch table, used when the very first key inserted into an empty tree
// is itself empty.
func NewEOSLeaf[T any](value T) *Node[T] {
	n := &Node[T]{Header: Init(false, false, true, false, false, ShapeBinary)}
	n.EOS.Set(value)
	n.Unpoison()
	return n
}

// NewBinary builds an empty interior BINARY node with the given skip
// (skip may be empty/nil).
func NewBinary[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(false, len(skip) > 0, false, false, true, ShapeBinary)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.children = make([]*Node[T], 0, BinaryMax)
	return n
}

// NewBinaryLeaf builds an empty LEAF-band BINARY node: the terminal band
// for fixed-length keys, where the branch table stores values directly.
func NewBinaryLeaf[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(true, len(skip) > 0, false, false, true, ShapeBinary)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.values = make([]cell[T], 0, BinaryMax)
	return n
}

// NewList/NewPop/NewFull mirror NewBinary for the remaining interior
// bands; NewListLeaf/NewPopLeaf/NewFullLeaf mirror NewBinaryLeaf.

func NewList[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(false, len(skip) > 0, false, false, true, ShapeList)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.children = make([]*Node[T], 0, ListMax)
	return n
}

func NewListLeaf[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(true, len(skip) > 0, false, false, true, ShapeList)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.values = make([]cell[T], 0, ListMax)
	return n
}

func NewPop[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(false, len(skip) > 0, false, false, true, ShapePop)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.bitmap = bitops.NewBitmap256()
	n.children = make([]*Node[T], 0, PopMax)
	return n
}

func NewPopLeaf[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(true, len(skip) > 0, false, false, true, ShapePop)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.bitmap = bitops.NewBitmap256()
	n.values = make([]cell[T], 0, PopMax)
	return n
}

func NewFull[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(false, len(skip) > 0, false, false, true, ShapeFull)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.bitmap = bitops.NewBitmap256()
	n.children = make([]*Node[T], FullMax)
	return n
}

func NewFullLeaf[T any](skip []byte) *Node[T] {
	n := &Node[T]{Header: Init(true, len(skip) > 0, false, false, true, ShapeFull)}
	if len(skip) > 0 {
		n.Skip = append([]byte(nil), skip...)
	}
	n.bitmap = bitops.NewBitmap256()
	n.values = make([]cell[T], FullMax)
	return n
}

// newBranchOfShape allocates an empty interior or leaf node of the given
// shape, carrying skip and (for interior nodes) no EOS cell yet.
func newBranchOfShape[T any](shape Shape, leaf bool, skip []byte) *Node[T] {
	switch shape {
	case ShapeBinary:
		if leaf {
			return NewBinaryLeaf[T](skip)
		}
		return NewBinary[T](skip)
	case ShapeList:
		if leaf {
			return NewListLeaf[T](skip)
		}
		return NewList[T](skip)
	case ShapePop:
		if leaf {
			return NewPopLeaf[T](skip)
		}
		return NewPop[T](skip)
	default:
		if leaf {
			return NewFullLeaf[T](skip)
		}
		return NewFull[T](skip)
	}
}

// AddChildCOW returns a new node of the same or promoted shape with child
// added at character c (interior nodes only).
func AddChildCOW[T any](n *Node[T], c byte, child *Node[T]) *Node[T] {
	count := n.EntryCount()
	shape := n.Shape()
	if count+1 > bandCeiling(shape) {
		shape = BandFor(count + 1)
	}
	out := newBranchOfShape[T](shape, false, n.Skip)
	carryEOS(out, n)
	inserted := false
	n.ForEachChild(func(ch byte, cp *Node[T]) {
		if !inserted && ch > c {
			appendChild(out, c, child)
			inserted = true
		}
		appendChild(out, ch, cp)
	})
	if !inserted {
		appendChild(out, c, child)
	}
	out.Unpoison()
	return out
}

// RemoveChildCOW returns a new node with the child at character c removed
// (interior nodes only).
func RemoveChildCOW[T any](n *Node[T], c byte) *Node[T] {
	count := n.EntryCount() - 1
	shape := BandFor(max(count, 1))
	out := newBranchOfShape[T](shape, false, n.Skip)
	carryEOS(out, n)
	n.ForEachChild(func(ch byte, cp *Node[T]) {
		if ch == c {
			return
		}
		appendChild(out, ch, cp)
	})
	out.Unpoison()
	return out
}

// AddValueCOW returns a new node of the same or promoted shape with value
// v stored directly at character c (LEAF nodes only: a fixed-length key
// terminates at this slot instead of continuing into a child node).
func AddValueCOW[T any](n *Node[T], c byte, v T) *Node[T] {
	count := n.EntryCount()
	shape := n.Shape()
	if count+1 > bandCeiling(shape) {
		shape = BandFor(count + 1)
	}
	out := newBranchOfShape[T](shape, true, n.Skip)
	carryEOS(out, n)
	inserted := false
	n.ForEachValue(func(ch byte, cell *cell[T]) {
		if !inserted && ch > c {
			appendValue(out, c, v)
			inserted = true
		}
		appendValue(out, ch, readCell(cell))
	})
	if !inserted {
		appendValue(out, c, v)
	}
	out.Unpoison()
	return out
}

// RemoveValueCOW returns a new node with the value at character c removed
// (LEAF nodes only).
func RemoveValueCOW[T any](n *Node[T], c byte) *Node[T] {
	count := n.EntryCount() - 1
	shape := BandFor(max(count, 1))
	out := newBranchOfShape[T](shape, true, n.Skip)
	carryEOS(out, n)
	n.ForEachValue(func(ch byte, cell *cell[T]) {
		if ch == c {
			return
		}
		appendValue(out, ch, readCell(cell))
	})
	out.Unpoison()
	return out
}

// readCell blocks briefly until it observes a consistent value, for use
// when copying a cell's value during a rebuild driven by the writer
// itself (no concurrent writer can be touching the same cell).
func readCell[T any](c *cell[T]) T {
	for {
		if v, _, ok := c.TryRead(); ok {
			return v
		}
	}
}

// SetChildCOW returns a new node identical to n except the child at
// character c is replaced by newChild. Used when a recursive insert or
// erase rebuilds an ancestor on the spine without adding or removing a
// character.
func SetChildCOW[T any](n *Node[T], c byte, newChild *Node[T]) *Node[T] {
	out := newBranchOfShape[T](n.Shape(), false, n.Skip)
	carryEOS(out, n)
	n.ForEachChild(func(ch byte, cp *Node[T]) {
		if ch == c {
			appendChild(out, ch, newChild)
		} else {
			appendChild(out, ch, cp)
		}
	})
	out.Unpoison()
	return out
}

// carryEOS copies n's EOS and SKIP_EOS cells onto out, if present. Both
// cells can appear on any node regardless of shape or skip, so every COW
// rebuild that preserves n's entry position needs to carry both.
func carryEOS[T any](out, n *Node[T]) {
	if n.HasEOS() {
		out.EOS.CopyFrom(&n.EOS)
		out.SetEOS(true)
	}
	if n.HasSkipEOS() {
		out.SkipEOS.CopyFrom(&n.SkipEOS)
		out.SetSkipEOS(true)
	}
}

// Rekey rebuilds n with the same shape, leaf-ness, and entries but a new
// skip string, selectively carrying over n's own EOS and SKIP_EOS cells.
// Used by skip splits, where an old node's entry point moves and its two
// termination cells may need to land on different replacement nodes.
func Rekey[T any](n *Node[T], newSkip []byte, carryEOS, carrySkipEOS bool) *Node[T] {
	var out *Node[T]
	if !n.HasBranch() {
		out = &Node[T]{Header: Init(false, len(newSkip) > 0, false, false, false, ShapeBinary)}
		if len(newSkip) > 0 {
			out.Skip = append([]byte(nil), newSkip...)
		}
	} else {
		out = newBranchOfShape[T](n.Shape(), n.IsLeaf(), newSkip)
	}
	if carryEOS && n.HasEOS() {
		out.EOS.CopyFrom(&n.EOS)
		out.SetEOS(true)
	}
	if carrySkipEOS && n.HasSkipEOS() {
		if len(newSkip) == 0 {
			// SKIP_EOS marks "terminates at the end of the skip"; with no
			// skip left, that position coincides with the node's own
			// entry, so the carried value becomes EOS instead.
			out.EOS.CopyFrom(&n.SkipEOS)
			out.SetEOS(true)
		} else {
			out.SkipEOS.CopyFrom(&n.SkipEOS)
			out.SetSkipEOS(true)
		}
	}
	if n.HasBranch() {
		if n.IsLeaf() {
			n.ForEachValue(func(c byte, cell *cell[T]) {
				appendValue(out, c, readCell(cell))
			})
		} else {
			n.ForEachChild(func(c byte, child *Node[T]) {
				appendChild(out, c, child)
			})
		}
	}
	out.Unpoison()
	return out
}

// ChangeShapeCOW rebuilds n into the given target shape, preserving its
// skip, EOS/SKIP_EOS cells, and all entries. Used to downgrade a node
// whose live-entry count has dropped below its current band's floor.
func ChangeShapeCOW[T any](n *Node[T], target Shape) *Node[T] {
	out := newBranchOfShape[T](target, n.IsLeaf(), n.Skip)
	carryEOS(out, n)
	if n.IsLeaf() {
		n.ForEachValue(func(c byte, cell *cell[T]) {
			appendValue(out, c, readCell(cell))
		})
	} else {
		n.ForEachChild(func(c byte, child *Node[T]) {
			appendChild(out, c, child)
		})
	}
	out.Unpoison()
	return out
}

// appendChild appends a (char, child) pair to out's branch table, assuming
// out is being built by ascending-order traversal (builder-only helper,
// never used on a live/published node).
func appendChild[T any](out *Node[T], c byte, child *Node[T]) {
	switch out.Shape() {
	case ShapeBinary:
		out.binKeys[out.binCount] = c
		out.binCount++
		out.children = append(out.children, child)
	case ShapeList:
		out.small, _ = out.small.Insert(c)
		out.children = append(out.children, child)
	case ShapePop:
		out.bitmap.Set(c)
		out.children = append(out.children, child)
	case ShapeFull:
		out.bitmap.Set(c)
		out.children[c] = child
	}
}

// appendValue is appendChild's leaf-band counterpart.
func appendValue[T any](out *Node[T], c byte, v T) {
	switch out.Shape() {
	case ShapeBinary:
		out.binKeys[out.binCount] = c
		out.binCount++
		cl := cell[T]{}
		cl.Set(v)
		out.values = append(out.values, cl)
	case ShapeList:
		out.small, _ = out.small.Insert(c)
		cl := cell[T]{}
		cl.Set(v)
		out.values = append(out.values, cl)
	case ShapePop:
		out.bitmap.Set(c)
		cl := cell[T]{}
		cl.Set(v)
		out.values = append(out.values, cl)
	case ShapeFull:
		out.bitmap.Set(c)
		out.values[c].Set(v)
	}
}

func bandCeiling(s Shape) int {
	switch s {
	case ShapeBinary:
		return BinaryMax
	case ShapeList:
		return ListMax
	case ShapePop:
		return PopMax
	default:
		return FullMax
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Reclaim drops every reference this node holds so the garbage collector
// can free the subtree it used to own. Implements epoch.Reclaimable.
//
// Only the node itself is "reclaimed" — its children are not recursively
// cleared, since a retired interior node's children may still be shared
// with the live tree: a copy-on-write rebuild only replaces nodes on the
// modified spine, and untouched children are carried over by reference.
func (n *Node[T]) Reclaim() {
	n.children = nil
	n.values = nil
	n.Skip = nil
}
