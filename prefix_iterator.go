package triecore

import (
	"bytes"

	"github.com/tktrie/core/internal/node"
)

// PrefixIterator walks every key carrying the given prefix, in ascending
// byte-lex order. It is a derived operation built entirely on the
// navigator's existing skip-matching and successor primitives
// (node.SeekGE, node.NextAfter): no new node code, no new invariants.
type PrefixIterator[T any] struct {
	trie   *Trie[T]
	prefix []byte
	key    Key
	value  T
	valid  bool
}

// PrefixIterator returns an iterator over every key carrying prefix, or an
// invalid iterator if none exists.
func (t *Trie[T]) PrefixIterator(prefix Key) *PrefixIterator[T] {
	pit := &PrefixIterator[T]{trie: t, prefix: prefix.Clone()}
	k, v, ok := pit.seek(prefix)
	if !ok || !bytes.HasPrefix(k, pit.prefix) {
		return pit
	}
	pit.key, pit.value, pit.valid = Key(k), v, true
	return pit
}

func (pit *PrefixIterator[T]) seek(from []byte) ([]byte, T, bool) {
	t := pit.trie
	for {
		root, release := t.enterRead()
		k, c := node.SeekGE(root, from)
		if c == nil {
			release()
			var zero T
			return nil, zero, false
		}
		v, has, valid := c.TryRead()
		release()
		if !valid {
			continue
		}
		if !has {
			from = append(append([]byte(nil), k...), 0)
			continue
		}
		return k, v, true
	}
}

// Valid reports whether the iterator is currently positioned on a key
// carrying the configured prefix.
func (pit *PrefixIterator[T]) Valid() bool { return pit.valid }

// Key returns a copy of the iterator's cached key. Valid must be true.
func (pit *PrefixIterator[T]) Key() Key { return pit.key.Clone() }

// Value returns the iterator's cached value. Valid must be true.
func (pit *PrefixIterator[T]) Value() T { return pit.value }

// Next advances to the next key still carrying the configured prefix.
func (pit *PrefixIterator[T]) Next() bool {
	if !pit.valid {
		return false
	}
	k, v, ok := pit.trie.nextAfter(pit.key)
	if !ok || !bytes.HasPrefix(k, pit.prefix) {
		pit.valid = false
		return false
	}
	pit.key, pit.value, pit.valid = Key(k), v, true
	return true
}
