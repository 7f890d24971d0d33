package node

import "sync/atomic"

const (
	cellWriteBit = uint32(1) << 0
	cellReadBit  = uint32(1) << 1
	cellHasData  = uint32(1) << 2
)

// cell is an optimistic-read data cell: a value of type T guarded by two
// control bits so a reader can detect it raced a concurrent writer and
// restart, without the writer ever blocking on a reader.
//
// Every value slot (leaf entries and EOS/SKIP_EOS cells) is one of these.
// Small trivially-copyable values could in principle share a single
// atomic word with no READ_BIT at all, but Go generics have no clean way
// to detect that property for an arbitrary T, so every cell uses the same
// two-bit protocol regardless of what T actually is.
type cell[T any] struct {
	ctrl  atomic.Uint32
	value T
}

func (c *cell[T]) setBit(bit uint32) {
	for {
		old := c.ctrl.Load()
		neu := old | bit
		if old == neu || c.ctrl.CompareAndSwap(old, neu) {
			return
		}
	}
}

func (c *cell[T]) clearBit(bit uint32) {
	for {
		old := c.ctrl.Load()
		neu := old &^ bit
		if old == neu || c.ctrl.CompareAndSwap(old, neu) {
			return
		}
	}
}

// Set stores v. Must only be called by the writer holding the container's
// writer mutex: set WRITE_BIT, write the value, clear WRITE_BIT, mark
// HAS_DATA.
func (c *cell[T]) Set(v T) {
	c.setBit(cellWriteBit)
	c.value = v
	for {
		old := c.ctrl.Load()
		neu := (old &^ cellWriteBit) | cellHasData
		if c.ctrl.CompareAndSwap(old, neu) {
			return
		}
	}
}

// Clear removes the value, leaving HAS_DATA unset.
func (c *cell[T]) Clear() {
	var zero T
	c.setBit(cellWriteBit)
	c.value = zero
	for {
		old := c.ctrl.Load()
		neu := old &^ (cellWriteBit | cellHasData)
		if c.ctrl.CompareAndSwap(old, neu) {
			return
		}
	}
}

// TryRead returns the value and whether it is present. ok is false if a
// writer raced this read; the caller must restart its traversal from the
// root.
func (c *cell[T]) TryRead() (v T, hasData bool, ok bool) {
	// spin briefly while a write is in flight
	for c.ctrl.Load()&cellWriteBit != 0 {
		// bounded by the writer holding the mutex only for the instant of
		// Set/Clear; no allocation, no syscalls on this path.
	}

	before := c.ctrl.Load()
	c.setBit(cellReadBit)
	v = c.value
	hasData = before&cellHasData != 0
	c.clearBit(cellReadBit)
	after := c.ctrl.Load()

	const compareMask = ^(cellReadBit)
	if before&compareMask != after&compareMask {
		return v, false, false
	}
	return v, hasData, true
}

// CopyFrom copies the logical value of src into c using the reader
// protocol (spinning on src if necessary). Used when a copy-on-write
// rebuild carries an EOS/SKIP_EOS value from an old node into its
// replacement.
func (c *cell[T]) CopyFrom(src *cell[T]) {
	for {
		v, has, ok := src.TryRead()
		if !ok {
			continue
		}
		if has {
			c.Set(v)
		}
		return
	}
}
