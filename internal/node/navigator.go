package node

import "bytes"

// FindDataCell walks from root consuming key bytes, using header tags to
// pick the child-finding algorithm at each node, and returns the data cell
// holding the value for key, or nil if no such key is present.
//
// Callers run this under an epoch guard, so every node visited stays
// allocated for the duration of the call even if it is concurrently
// retired from the live tree.
func FindDataCell[T any](root *Node[T], key []byte) *cell[T] {
	cur := root
	for cur != nil {
		// Step 3 (checked first): key exhausted at the node's entry,
		// before skip is considered at all — this is the EOS position
		// regardless of whether the node carries a skip.
		if len(key) == 0 {
			if cur.HasEOS() {
				return &cur.EOS
			}
			return nil
		}
		if cur.HasSkip() {
			skip := cur.Skip
			if len(key) < len(skip) || !bytes.Equal(key[:len(skip)], skip) {
				return nil
			}
			if len(key) == len(skip) {
				if cur.HasSkipEOS() {
					return &cur.SkipEOS
				}
				return nil
			}
			key = key[len(skip):]
		}
		if !cur.HasBranch() {
			// pure skip/EOS leaf, no further descent possible and key is
			// non-empty past the skip: no value can terminate here.
			return nil
		}
		c := key[0]
		idx, ok := cur.FindSlot(c)
		if !ok {
			return nil
		}
		if cur.IsLeaf() && len(key) == 1 {
			return cur.ValueCell(idx)
		}
		child := cur.Child(idx)
		if child == nil {
			return nil
		}
		cur = child
		key = key[1:]
	}
	return nil
}

// FirstLeaf descends to the data cell holding the smallest key in the
// subtree rooted at n, returning the accumulated key bytes and the cell.
func FirstLeaf[T any](n *Node[T], prefix []byte) ([]byte, *cell[T]) {
	for {
		// EOS sits at the node's entry, before its own skip is appended:
		// any such key is a strict prefix of every other key in this
		// subtree, so it is always the smallest candidate here.
		if n.HasEOS() {
			return prefix, &n.EOS
		}
		if n.HasSkip() {
			prefix = append(prefix, n.Skip...)
		}
		if n.HasSkipEOS() {
			return prefix, &n.SkipEOS
		}
		if !n.HasBranch() {
			return prefix, nil
		}
		c, ok := n.FirstChar()
		if !ok {
			return prefix, nil
		}
		if n.IsLeaf() {
			idx, _ := n.FindSlot(c)
			return append(prefix, c), n.ValueCell(idx)
		}
		idx, _ := n.FindSlot(c)
		child := n.Child(idx)
		prefix = append(prefix, c)
		n = child
	}
}

// NextAfter returns the smallest key strictly greater than after, together
// with its data cell, or (nil, nil) if none exists.
//
// Children are visited in ascending byte order at every level, and any two
// sibling subtrees diverge at the byte that distinguishes them, so the
// first qualifying key this walk finds (depth-first, left-to-right) is
// already the minimal one — there is no need to compare against every
// other candidate in the tree. The search starts fresh from the root on
// every call rather than resuming from a cached node, so an iterator whose
// current key was concurrently erased still advances to the next
// surviving key.
//
// This scans the full subtree for each call rather than following a
// bounded root-to-successor path, trading iteration speed for a walk that
// is easy to verify against the ascending-order invariant by inspection.
func NextAfter[T any](root *Node[T], after []byte) ([]byte, *cell[T]) {
	if root == nil {
		return nil, nil
	}
	var best []byte
	var bestCell *cell[T]
	found := false

	var walk func(n *Node[T], prefix []byte)
	walk = func(n *Node[T], prefix []byte) {
		if found {
			return
		}
		full := append(append([]byte(nil), prefix...), n.Skip...)
		if n.HasEOS() && bytes.Compare(prefix, after) > 0 {
			if !found || bytes.Compare(prefix, best) < 0 {
				best, bestCell, found = append([]byte(nil), prefix...), &n.EOS, true
			}
		}
		if n.HasSkipEOS() && bytes.Compare(full, after) > 0 {
			if !found || bytes.Compare(full, best) < 0 {
				best, bestCell, found = append([]byte(nil), full...), &n.SkipEOS, true
			}
		}
		if !n.HasBranch() {
			return
		}
		if n.IsLeaf() {
			n.ForEachValue(func(c byte, v *cell[T]) {
				k := append(append([]byte(nil), full...), c)
				if bytes.Compare(k, after) > 0 && (!found || bytes.Compare(k, best) < 0) {
					best, bestCell, found = k, v, true
				}
			})
			return
		}
		n.ForEachChild(func(c byte, child *Node[T]) {
			walk(child, append(append([]byte(nil), full...), c))
		})
	}
	walk(root, nil)
	if !found {
		return nil, nil
	}
	return best, bestCell
}

// SeekGE returns the smallest key greater than or equal to from, together
// with its data cell, or (nil, nil) if none exists. It is NextAfter's
// inclusive counterpart, used to seed a prefix-bounded iterator at the
// first key that could possibly carry the prefix.
func SeekGE[T any](root *Node[T], from []byte) ([]byte, *cell[T]) {
	if root == nil {
		return nil, nil
	}
	var best []byte
	var bestCell *cell[T]
	found := false

	var walk func(n *Node[T], prefix []byte)
	walk = func(n *Node[T], prefix []byte) {
		if found {
			return
		}
		full := append(append([]byte(nil), prefix...), n.Skip...)
		if n.HasEOS() && bytes.Compare(prefix, from) >= 0 {
			if !found || bytes.Compare(prefix, best) < 0 {
				best, bestCell, found = append([]byte(nil), prefix...), &n.EOS, true
			}
		}
		if n.HasSkipEOS() && bytes.Compare(full, from) >= 0 {
			if !found || bytes.Compare(full, best) < 0 {
				best, bestCell, found = append([]byte(nil), full...), &n.SkipEOS, true
			}
		}
		if !n.HasBranch() {
			return
		}
		if n.IsLeaf() {
			n.ForEachValue(func(c byte, v *cell[T]) {
				k := append(append([]byte(nil), full...), c)
				if bytes.Compare(k, from) >= 0 && (!found || bytes.Compare(k, best) < 0) {
					best, bestCell, found = k, v, true
				}
			})
			return
		}
		n.ForEachChild(func(c byte, child *Node[T]) {
			walk(child, append(append([]byte(nil), full...), c))
		})
	}
	walk(root, nil)
	if !found {
		return nil, nil
	}
	return best, bestCell
}
