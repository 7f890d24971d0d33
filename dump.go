package triecore

import "github.com/tktrie/core/internal/node"

// String renders the trie's internal node structure (shapes, skips,
// termination markers) for debugging. Not part of the stable API contract
// — its output format may change between releases.
func (t *Trie[T]) String() string {
	root, release := t.enterRead()
	defer release()
	return node.Dump(root)
}
