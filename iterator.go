package triecore

// Iterator carries a cached (key, value) snapshot and a reference back to
// its owning Trie. Advancing asks the trie for the next key strictly
// greater than the cached one, so an iterator remains usable even if its
// cached key was concurrently erased — it simply resolves to the next
// surviving key.
//
// The zero Iterator is invalid (Valid() reports false); Trie.End returns
// exactly that.
type Iterator[T any] struct {
	trie  *Trie[T]
	key   Key
	value T
	valid bool
}

// Valid reports whether the iterator is currently positioned on an
// element.
func (it Iterator[T]) Valid() bool { return it.valid }

// Key returns a copy of the iterator's cached key. Valid must be true.
func (it Iterator[T]) Key() Key { return it.key.Clone() }

// Value returns the iterator's cached value. Valid must be true.
func (it Iterator[T]) Value() T { return it.value }

// Next advances the iterator to the next-greater surviving key and
// reports whether one was found. A false return leaves the iterator
// invalid, equivalent to reaching End().
func (it *Iterator[T]) Next() bool {
	if it.trie == nil || !it.valid {
		it.valid = false
		return false
	}
	k, v, ok := it.trie.nextAfter(it.key)
	if !ok {
		it.valid = false
		return false
	}
	it.key, it.value, it.valid = Key(k), v, true
	return true
}
