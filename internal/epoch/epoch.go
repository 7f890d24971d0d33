// Package epoch implements epoch-based memory reclamation: a global epoch
// counter, per-reader slots, and per-epoch retire lists that are freed
// once no active reader could still observe them.
package epoch

import (
	"sync"
	"sync/atomic"
)

const retireThreshold = 64

// Slot is a per-reader epoch participation record. Slots are registered
// via Manager.NewSlot and may be reused for any number of read operations,
// one guard at a time.
//
// Padded to 64 bytes so independent slots never share a cache line under
// concurrent reader traffic.
type Slot struct {
	epoch  atomic.Uint64
	active atomic.Bool
	_      [64 - 12]byte // pad to one cache line: 8-byte epoch + 4-byte active
}

// Guard is returned by Manager.Enter and must be released with Exit once the
// read that required epoch protection has finished.
type Guard struct {
	slot *Slot
}

// Reclaimable is anything that can be freed once it is provably
// unreachable by any active reader. Nodes implement this by dropping their
// own references so the garbage collector can do the actual freeing;
// Reclaim is the hook, not a manual allocator free.
type Reclaimable interface {
	Reclaim()
}

// bucket holds every object retired during a single epoch.
type bucket struct {
	epoch   uint64
	objects []Reclaimable
}

// Manager owns the global epoch, the set of registered reader slots, and
// the retire lists awaiting reclamation.
//
// Retire lists are keyed directly by epoch number rather than a fixed-size
// ring indexed by epoch modulo N: the reclamation guarantee is the same
// either way (an object retired in epoch e is freed once every reader has
// moved past e), and keying by the real epoch number removes any need to
// prove a stale bucket was fully drained before a modulo collision reuses
// its slot. In practice only two or three distinct epochs ever have
// pending retirements at once under steady write traffic, so the bucket
// list stays small.
type Manager struct {
	global  atomic.Uint64
	slotsMu sync.Mutex
	slots   []*Slot

	retireMu sync.Mutex
	buckets  []*bucket // kept sorted by ascending epoch

	// OnReclaim, if set, is invoked with the number of objects freed on
	// every TryReclaim call that actually frees something. Tests use this
	// to assert the reclamation path runs; production callers may wire it
	// to their own metrics without the core needing to pick a metrics
	// library itself.
	OnReclaim func(freed int)
}

// NewManager returns a Manager with the global epoch initialized to 1.
func NewManager() *Manager {
	m := &Manager{}
	m.global.Store(1)
	return m
}

// NewSlot registers and returns a fresh reader slot.
func (m *Manager) NewSlot() *Slot {
	s := &Slot{}
	m.slotsMu.Lock()
	m.slots = append(m.slots, s)
	m.slotsMu.Unlock()
	return s
}

// Enter begins a read-side epoch guard on behalf of s: publish the epoch
// the reader is about to observe the world under, fence, then correct for
// a writer that advanced the epoch in the race window between the store
// and the fence.
func (m *Manager) Enter(s *Slot) Guard {
	e := m.global.Load()
	s.epoch.Store(e)
	s.active.Store(true)
	// sync/atomic operations already carry the sequentially-consistent
	// fence this step calls for; the second read below is the correction
	// the protocol specifies for the interleaving where the writer
	// advanced global between our store and now.
	if e2 := m.global.Load(); e2 != e {
		s.epoch.Store(e2)
	}
	return Guard{slot: s}
}

// Exit ends a reader's epoch participation.
func (g Guard) Exit() {
	g.slot.active.Store(false)
}

// Retire enqueues ptr for deferred reclamation in the current global
// epoch's bucket.
func (m *Manager) Retire(ptr Reclaimable) {
	e := m.global.Load()
	m.retireMu.Lock()
	n := m.bucketFor(e)
	n.objects = append(n.objects, ptr)
	pending := len(n.objects)
	m.retireMu.Unlock()
	if pending >= retireThreshold {
		m.advance()
	}
}

// bucketFor returns the bucket for epoch e, creating it if necessary.
// Caller must hold retireMu.
func (m *Manager) bucketFor(e uint64) *bucket {
	for _, b := range m.buckets {
		if b.epoch == e {
			return b
		}
	}
	b := &bucket{epoch: e}
	m.buckets = append(m.buckets, b)
	return b
}

// advance bumps the global epoch by one. Called by the writer, never by
// readers.
func (m *Manager) advance() {
	m.global.Add(1)
}

// minActiveEpoch computes the minimum of the global epoch and the epoch of
// every currently active slot.
func (m *Manager) minActiveEpoch() uint64 {
	min := m.global.Load()
	m.slotsMu.Lock()
	slots := m.slots
	m.slotsMu.Unlock()
	for _, s := range slots {
		if !s.active.Load() {
			continue
		}
		if e := s.epoch.Load(); e < min {
			min = e
		}
	}
	return min
}

// TryReclaim frees every object retired in an epoch strictly less than the
// minimum active epoch across all readers.
func (m *Manager) TryReclaim() {
	min := m.minActiveEpoch()

	m.retireMu.Lock()
	defer m.retireMu.Unlock()

	freed := 0
	kept := m.buckets[:0]
	for _, b := range m.buckets {
		if b.epoch < min {
			for _, r := range b.objects {
				r.Reclaim()
				freed++
			}
			continue
		}
		kept = append(kept, b)
	}
	m.buckets = kept

	if freed > 0 && m.OnReclaim != nil {
		m.OnReclaim(freed)
	}
}

// PendingCount reports the number of objects awaiting reclamation across
// all epochs; exposed for tests.
func (m *Manager) PendingCount() int {
	m.retireMu.Lock()
	defer m.retireMu.Unlock()
	n := 0
	for _, b := range m.buckets {
		n += len(b.objects)
	}
	return n
}
