package node

import (
	"fmt"
	"strings"
)

// Dump renders the subtree rooted at n as an indented tree of shape tags,
// skips, and termination markers, for use in tests and debugging.
func Dump[T any](n *Node[T]) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump[T any](sb *strings.Builder, n *Node[T], depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(sb, "%s<nil>\n", indent)
		return
	}
	fmt.Fprintf(sb, "%sshape=%s skip=%q eos=%v skipEOS=%v leaf=%v\n",
		indent, n.Shape(), n.Skip, n.HasEOS(), n.HasSkipEOS(), n.IsLeaf())
	if !n.HasBranch() {
		return
	}
	if n.IsLeaf() {
		n.ForEachValue(func(c byte, _ *cell[T]) {
			fmt.Fprintf(sb, "%s  value@%q\n", indent, c)
		})
		return
	}
	n.ForEachChild(func(c byte, child *Node[T]) {
		fmt.Fprintf(sb, "%s-> %q\n", indent, c)
		dump(sb, child, depth+1)
	})
}
