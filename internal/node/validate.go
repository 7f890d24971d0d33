package node

import "fmt"

// Validate walks the subtree rooted at n and checks the structural
// invariants: exactly one shape tag, band membership, non-empty skips, no
// missed collapses, and sorted child arrays. It is the implementation
// behind Config.Validate and is meant for tests and debugging, not the
// hot path.
func Validate[T any](n *Node[T]) error {
	if n == nil {
		return nil
	}
	return validate(n, true)
}

func validate[T any](n *Node[T], isRoot bool) error {
	if n.HasSkip() && len(n.Skip) == 0 {
		return fmt.Errorf("node: SKIP flag set with empty skip string")
	}
	if !n.HasBranch() {
		return nil
	}

	count := n.EntryCount()
	shape := n.Shape()
	lo, hi := bandRange(shape)
	if count < lo || count > hi {
		return fmt.Errorf("node: shape %s holds %d entries, want [%d,%d]", shape, count, lo, hi)
	}

	if count == 1 && !n.HasEOS() && !n.HasSkipEOS() && !n.IsLeaf() {
		var child *Node[T]
		n.ForEachChild(func(_ byte, cp *Node[T]) { child = cp })
		if !child.HasEOS() {
			return fmt.Errorf("node: missed collapse — single child, no EOS/SKIP_EOS, and child has no EOS of its own")
		}
	}

	prev := -1
	var outerErr error
	if n.IsLeaf() {
		n.ForEachValue(func(c byte, _ *cell[T]) {
			if outerErr == nil && int(c) <= prev {
				outerErr = fmt.Errorf("node: LEAF entries not strictly ascending at byte %d", c)
			}
			prev = int(c)
		})
		return outerErr
	}
	n.ForEachChild(func(c byte, child *Node[T]) {
		if outerErr != nil {
			return
		}
		if int(c) <= prev {
			outerErr = fmt.Errorf("node: child entries not strictly ascending at byte %d", c)
			return
		}
		prev = int(c)
		if child == nil {
			outerErr = fmt.Errorf("node: nil child pointer at byte %d", c)
			return
		}
		outerErr = validate(child, false)
	})
	return outerErr
}

func bandRange(s Shape) (lo, hi int) {
	switch s {
	case ShapeBinary:
		return BinaryMin, BinaryMax
	case ShapeList:
		return ListMin, ListMax
	case ShapePop:
		return PopMin, PopMax
	default:
		return FullMin, FullMax
	}
}
