package node

import "bytes"

// Erase returns the subtree that results from removing key from the
// tree rooted at root, the nodes displaced by the operation, and
// whether key was present. newRoot is nil both when root was nil and
// when removing key emptied the entire tree; callers distinguish an
// untouched miss (found == false) from an emptied tree (found == true,
// newRoot == nil) using the found flag.
func Erase[T any](root *Node[T], key []byte) (newRoot *Node[T], retired []*Node[T], found bool) {
	if root == nil {
		return nil, nil, false
	}
	return eraseAt(root, key)
}

func eraseAt[T any](n *Node[T], key []byte) (*Node[T], []*Node[T], bool) {
	// key exhausted at n's entry, before any skip: the EOS position.
	if len(key) == 0 {
		if !n.HasEOS() {
			return n, nil, false
		}
		rebuilt := Rekey(n, n.Skip, false, true)
		settled, extra := settleAfterChange(rebuilt)
		return settled, append([]*Node[T]{n}, extra...), true
	}
	if n.HasSkip() {
		skip := n.Skip
		if len(key) < len(skip) || !bytes.Equal(key[:len(skip)], skip) {
			return n, nil, false
		}
		if len(key) == len(skip) {
			if !n.HasSkipEOS() {
				return n, nil, false
			}
			rebuilt := Rekey(n, n.Skip, true, false)
			settled, extra := settleAfterChange(rebuilt)
			return settled, append([]*Node[T]{n}, extra...), true
		}
		key = key[len(skip):]
	}
	if !n.HasBranch() {
		return n, nil, false
	}
	c := key[0]
	idx, ok := n.FindSlot(c)
	if !ok {
		return n, nil, false
	}
	if n.IsLeaf() {
		if len(key) != 1 {
			return n, nil, false
		}
		rebuilt := RemoveValueCOW(n, c)
		settled, extra := settleAfterChange(rebuilt)
		return settled, append([]*Node[T]{n}, extra...), true
	}

	child := n.Child(idx)
	newChild, childRetired, found := eraseAt(child, key[1:])
	if !found {
		return n, nil, false
	}
	var rebuilt *Node[T]
	if newChild == nil {
		rebuilt = RemoveChildCOW(n, c)
	} else {
		rebuilt = SetChildCOW(n, c, newChild)
	}
	settled, extra := settleAfterChange(rebuilt)
	all := append(childRetired, n)
	all = append(all, extra...)
	return settled, all, true
}

// settleAfterChange applies the downgrade, collapse, and empty-removal
// rules to a node immediately after one of its cells or branch-table
// entries changed. It returns the node to install in place of the one
// passed in (nil if the node is now entirely empty) plus any additional
// node retired in the process (the child absorbed by a collapse).
func settleAfterChange[T any](out *Node[T]) (*Node[T], []*Node[T]) {
	if isEmpty(out) {
		return nil, nil
	}
	if !out.HasBranch() {
		return out, nil
	}
	count := out.EntryCount()
	if count == 1 && !out.HasEOS() && !out.HasSkipEOS() {
		if out.IsLeaf() {
			var ch byte
			var val T
			out.ForEachValue(func(c byte, cl *cell[T]) {
				ch, val = c, readCell(cl)
			})
			merged := append(append([]byte(nil), out.Skip...), ch)
			return NewSkipLeaf[T](merged, val), nil
		}
		var ch byte
		var child *Node[T]
		out.ForEachChild(func(c byte, cp *Node[T]) {
			ch, child = c, cp
		})
		// Flattening loses the position "at child's entry, before
		// child's own skip" — safe only when the child has no EOS of
		// its own to place there.
		if !child.HasEOS() {
			merged := append(append([]byte(nil), out.Skip...), ch)
			merged = append(merged, child.Skip...)
			return Rekey(child, merged, false, true), []*Node[T]{child}
		}
	}
	if target := BandFor(count); target != out.Shape() {
		return ChangeShapeCOW(out, target), nil
	}
	return out, nil
}

func isEmpty[T any](n *Node[T]) bool {
	if n.HasEOS() || n.HasSkipEOS() {
		return false
	}
	if n.HasBranch() && n.EntryCount() > 0 {
		return false
	}
	return true
}
