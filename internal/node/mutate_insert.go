package node

// NoFixedLen marks a variable-length key schedule: the general EOS/SKIP_EOS
// termination path is used throughout and no node is ever converted to a
// LEAF band.
const NoFixedLen = -1

const noFixedLen = NoFixedLen

// Insert returns the subtree that results from associating key with value
// in the tree rooted at root. It returns the new root, the set of nodes
// displaced by the operation (for the caller to hand to the epoch
// manager), and whether key was already present (in which case the tree
// is returned unchanged).
//
// remaining is the number of key bytes left to the end of a fixed-length
// key schedule, or noFixedLen for ordinary variable-length keys. A LEAF
// node (values stored directly in branch-table slots) is built only when
// a branch table is added to a node that had none and exactly one
// schedule byte is left. Skip splits and diverges always build interior
// nodes with EOS/SKIP_EOS leaf children, and a node that already has
// interior children keeps receiving interior children, so keys that all
// match the schedule's length are stored as they would be without one.
func Insert[T any](root *Node[T], key []byte, value T, remaining int) (newRoot *Node[T], retired []*Node[T], duplicate bool) {
	if root == nil {
		if len(key) == 0 {
			return NewEOSLeaf[T](value), nil, false
		}
		return NewSkipLeaf[T](key, value), nil, false
	}
	return insertAt(root, key, value, remaining)
}

func insertAt[T any](n *Node[T], key []byte, value T, remaining int) (*Node[T], []*Node[T], bool) {
	if len(key) == 0 && n.HasEOS() {
		// key terminates at n's entry, before any skip, and a value is
		// already there.
		return n, nil, true
	}
	if n.HasSkip() {
		skip := n.Skip
		m := commonPrefixLen(key, skip)
		switch {
		case m < len(skip) && m < len(key):
			return insertDiverge(n, key, value, m)
		case m < len(skip):
			// key exhausted strictly inside the skip (m == len(key))
			return insertPrefixSplit(n, key, value, m)
		default:
			// skip fully consumed
			rest := key[m:]
			if remaining != noFixedLen {
				remaining -= len(skip)
			}
			if len(rest) == 0 {
				if n.HasSkipEOS() {
					return n, nil, true
				}
				out := Rekey(n, n.Skip, true, false)
				out.SkipEOS.Set(value)
				out.SetSkipEOS(true)
				return out, []*Node[T]{n}, false
			}
			return insertBranch(n, rest, value, remaining)
		}
	}
	return insertBranch(n, key, value, remaining)
}

// insertBranch handles insertion once any skip on n has already been
// matched: key is either empty (terminates at n's entry) or its first
// byte selects a branch-table slot.
func insertBranch[T any](n *Node[T], key []byte, value T, remaining int) (*Node[T], []*Node[T], bool) {
	if len(key) == 0 {
		if n.HasEOS() {
			return n, nil, true
		}
		out := Rekey(n, n.Skip, false, true)
		out.EOS.Set(value)
		out.SetEOS(true)
		return out, []*Node[T]{n}, false
	}
	c := key[0]
	rest := key[1:]
	lastByte := remaining == 1

	if !n.HasBranch() {
		base := newBranchOfShape[T](ShapeBinary, lastByte, n.Skip)
		carryEOS(base, n)
		if lastByte {
			base = AddValueCOW(base, c, value)
		} else {
			base = AddChildCOW(base, c, leafChild(rest, value))
		}
		return base, []*Node[T]{n}, false
	}
	if n.IsLeaf() {
		if len(key) != 1 {
			panic("node: LEAF node reached with more than one key byte remaining")
		}
		if _, ok := n.FindSlot(c); ok {
			return n, nil, true
		}
		return AddValueCOW(n, c, value), []*Node[T]{n}, false
	}
	if idx, ok := n.FindSlot(c); ok {
		child := n.Child(idx)
		nextRemaining := remaining
		if nextRemaining != noFixedLen {
			nextRemaining--
		}
		newChild, retired, dup := insertAt(child, rest, value, nextRemaining)
		if dup {
			return n, nil, true
		}
		return SetChildCOW(n, c, newChild), append(retired, n), false
	}
	// n already has interior children: the new slot gets an interior
	// child too, even on the last byte of a fixed-length schedule, since
	// one node never mixes interior and LEAF entries.
	return AddChildCOW(n, c, leafChild(rest, value)), []*Node[T]{n}, false
}

// leafChild builds the node a brand-new branch slot should point to: an
// EOS-leaf if rest is empty (the key ends exactly at this child's entry),
// otherwise a SKIP-leaf holding the remaining bytes.
func leafChild[T any](rest []byte, value T) *Node[T] {
	if len(rest) == 0 {
		return NewEOSLeaf[T](value)
	}
	return NewSkipLeaf[T](rest, value)
}

// insertDiverge handles a mismatch partway through n's skip: key and
// n.Skip share a common prefix of length m, then disagree. n is split
// into a new two-child branching node whose skip is that common prefix.
func insertDiverge[T any](n *Node[T], key []byte, value T, m int) (*Node[T], []*Node[T], bool) {
	skip := n.Skip
	commonSkip := append([]byte(nil), skip[:m]...)
	oldChar := skip[m]
	oldRemainder := skip[m+1:]
	newChar := key[m]
	newRemainder := key[m+1:]

	// n's old EOS sat at n's entry, which is unaffected by splitting
	// inside the skip, so it belongs on the new branching node. n's old
	// SKIP_EOS sat at the end of the full old skip, which is now inside
	// the old subtree's (shortened) skip, so it travels with it.
	oldSub := Rekey(n, oldRemainder, false, true)
	newLeaf := leafChild(newRemainder, value)

	nb := newBranchOfShape[T](ShapeBinary, false, commonSkip)
	if n.HasEOS() {
		nb.EOS.CopyFrom(&n.EOS)
		nb.SetEOS(true)
	}
	if oldChar < newChar {
		nb = AddChildCOW(nb, oldChar, oldSub)
		nb = AddChildCOW(nb, newChar, newLeaf)
	} else {
		nb = AddChildCOW(nb, newChar, newLeaf)
		nb = AddChildCOW(nb, oldChar, oldSub)
	}
	return nb, []*Node[T]{n}, false
}

// insertPrefixSplit handles the key running out exactly inside n's skip
// (at offset m, with m < len(n.Skip)). The common prefix becomes a new
// branching node whose SKIP_EOS holds value (the key terminates exactly
// at the end of that shortened skip); the old subtree becomes its sole
// child.
func insertPrefixSplit[T any](n *Node[T], key []byte, value T, m int) (*Node[T], []*Node[T], bool) {
	skip := n.Skip
	commonSkip := append([]byte(nil), skip[:m]...)
	oldChar := skip[m]
	oldRemainder := skip[m+1:]

	oldSub := Rekey(n, oldRemainder, false, true)

	nb := newBranchOfShape[T](ShapeBinary, false, commonSkip)
	if n.HasEOS() {
		nb.EOS.CopyFrom(&n.EOS)
		nb.SetEOS(true)
	}
	if len(commonSkip) == 0 {
		// m == 0, i.e. the key ran out before the first skip byte: the
		// termination point is the new node's own entry, not the end of a
		// skip it doesn't have.
		nb.EOS.Set(value)
		nb.SetEOS(true)
	} else {
		nb.SkipEOS.Set(value)
		nb.SetSkipEOS(true)
	}
	nb = AddChildCOW(nb, oldChar, oldSub)
	return nb, []*Node[T]{n}, false
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
