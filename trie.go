package triecore

import (
	"sync"
	"sync/atomic"

	"github.com/tktrie/core/internal/epoch"
	"github.com/tktrie/core/internal/node"
)

// Trie is a concurrent, ordered, in-memory associative container keyed by
// byte strings: a path-compressed radix trie with adaptive node layouts,
// copy-on-write mutation, and epoch-based memory reclamation. Writes are
// serialized through a single mutex; reads take no locks.
//
// The zero value is not usable; construct with New.
type Trie[T any] struct {
	cfg Config

	root     atomic.Pointer[node.Node[T]]
	size     atomic.Int64
	writerMu sync.Mutex

	epochMgr *epoch.Manager
	slots    sync.Pool
}

// New returns an empty Trie configured by cfg.
func New[T any](cfg Config) *Trie[T] {
	t := &Trie[T]{cfg: cfg}
	if cfg.Threaded {
		t.epochMgr = epoch.NewManager()
		t.slots = sync.Pool{New: func() any { return t.epochMgr.NewSlot() }}
	}
	return t
}

func (t *Trie[T]) fixedLenRemaining() int {
	if t.cfg.FixedLen > 0 {
		return t.cfg.FixedLen
	}
	return node.NoFixedLen
}

// enterRead publishes an epoch guard (when Threaded) and returns the
// current root snapshot plus a release function the caller must invoke
// exactly once. In non-threaded mode this is a plain, lock-free load: no
// reclamation bookkeeping is needed because no concurrent reader could be
// mid-traversal while a write runs.
func (t *Trie[T]) enterRead() (*node.Node[T], func()) {
	if !t.cfg.Threaded {
		return t.root.Load(), func() {}
	}
	slot := t.slots.Get().(*epoch.Slot)
	guard := t.epochMgr.Enter(slot)
	root := t.root.Load()
	return root, func() {
		guard.Exit()
		t.slots.Put(slot)
	}
}

// retireAll hands every node displaced by a mutation to the epoch manager
// (Threaded mode only) and attempts an immediate reclamation pass.
func (t *Trie[T]) retireAll(displaced []*node.Node[T]) {
	if !t.cfg.Threaded || len(displaced) == 0 {
		return
	}
	for _, n := range displaced {
		t.epochMgr.Retire(n)
	}
	t.epochMgr.TryReclaim()
}

// lookup reads the value for key, restarting the whole traversal from the
// root if the data cell's optimistic-read protocol detects it raced a
// concurrent writer.
func (t *Trie[T]) lookup(key []byte) (value T, ok bool) {
	for {
		root, release := t.enterRead()
		c := node.FindDataCell(root, key)
		if c == nil {
			release()
			var zero T
			return zero, false
		}
		v, has, valid := c.TryRead()
		release()
		if !valid {
			continue
		}
		return v, has
	}
}

// Contains reports whether key is present.
func (t *Trie[T]) Contains(key Key) bool {
	_, ok := t.lookup(key)
	return ok
}

// Find returns an iterator positioned on key, or an invalid iterator if
// key is absent.
func (t *Trie[T]) Find(key Key) (Iterator[T], bool) {
	v, ok := t.lookup(key)
	if !ok {
		return Iterator[T]{trie: t}, false
	}
	return Iterator[T]{trie: t, key: key.Clone(), value: v, valid: true}, true
}

// Size returns the number of keys currently stored.
func (t *Trie[T]) Size() int {
	return int(t.size.Load())
}

// Insert associates key with value. It returns an iterator positioned on
// the (possibly pre-existing) element and whether the insertion actually
// happened — false means key was already present and the trie is
// unchanged.
func (t *Trie[T]) Insert(key Key, value T) (Iterator[T], bool) {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()

	oldRoot := t.root.Load()
	newRoot, displaced, duplicate := node.Insert(oldRoot, []byte(key), value, t.fixedLenRemaining())
	if duplicate {
		existing, _ := t.lookup(key)
		return Iterator[T]{trie: t, key: key.Clone(), value: existing, valid: true}, false
	}

	t.root.Store(newRoot)
	t.size.Add(1)
	t.retireAll(displaced)
	t.maybeValidate(newRoot)

	return Iterator[T]{trie: t, key: key.Clone(), value: value, valid: true}, true
}

// Erase removes key, reporting whether it was present.
func (t *Trie[T]) Erase(key Key) bool {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()

	oldRoot := t.root.Load()
	newRoot, displaced, found := node.Erase(oldRoot, []byte(key))
	if !found {
		return false
	}

	t.root.Store(newRoot)
	t.size.Add(-1)
	t.retireAll(displaced)
	t.maybeValidate(newRoot)

	return true
}

// Clear empties the trie.
func (t *Trie[T]) Clear() {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()

	old := t.root.Load()
	t.root.Store(nil)
	t.size.Store(0)
	if old != nil {
		t.retireAll([]*node.Node[T]{old})
	}
}

func (t *Trie[T]) maybeValidate(root *node.Node[T]) {
	if !t.cfg.Validate {
		return
	}
	if err := node.Validate(root); err != nil {
		panic("triecore: " + err.Error())
	}
}

// Begin returns an iterator positioned on the smallest key in the trie, or
// an invalid iterator if the trie is empty.
func (t *Trie[T]) Begin() Iterator[T] {
	root, release := t.enterRead()
	defer release()
	if root == nil {
		return Iterator[T]{trie: t}
	}
	k, v, ok := firstLeafValue(root)
	if !ok {
		return Iterator[T]{trie: t}
	}
	return Iterator[T]{trie: t, key: Key(k), value: v, valid: true}
}

// End returns the invalid end-of-sequence iterator.
func (t *Trie[T]) End() Iterator[T] {
	return Iterator[T]{trie: t}
}

// NextAfter returns an iterator positioned on the smallest key strictly
// greater than after, or an invalid iterator if none exists. An iterator
// whose cached key has since been erased still resolves to the next
// surviving key, because the search always restarts from the root rather
// than resuming from a cached node.
func (t *Trie[T]) NextAfter(after Key) (Iterator[T], bool) {
	k, v, ok := t.nextAfter(after)
	if !ok {
		return Iterator[T]{trie: t}, false
	}
	return Iterator[T]{trie: t, key: Key(k), value: v, valid: true}, true
}

func (t *Trie[T]) nextAfter(after []byte) ([]byte, T, bool) {
	for {
		root, release := t.enterRead()
		k, c := node.NextAfter(root, after)
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
			// the cell was cleared between NextAfter locating it and this
			// read; the walk needs to resume past the same key.
			after = k
			continue
		}
		return k, v, true
	}
}

func firstLeafValue[T any](root *node.Node[T]) ([]byte, T, bool) {
	for {
		k, c := node.FirstLeaf(root, nil)
		if c == nil {
			var zero T
			return nil, zero, false
		}
		v, has, valid := c.TryRead()
		if !valid {
			continue
		}
		if !has {
			var zero T
			return nil, zero, false
		}
		return k, v, true
	}
}
