package triecore

// Config selects the compile-time-in-spirit knobs of the trie core: whether
// the concurrency-aware code paths are active, whether structural
// self-checks run after every mutation, and whether keys share one fixed
// length.
type Config struct {
	// Threaded enables the epoch-guarded multi-reader code path. When
	// false, reads skip epoch bookkeeping entirely (plain loads) and
	// retired nodes are simply dropped for the garbage collector to
	// reclaim as soon as nothing references them, since no concurrent
	// reader could still be mid-traversal.
	Threaded bool

	// Validate enables a full structural self-check (Validate) after
	// every Insert/Erase, intended for tests and debugging, not
	// production traffic.
	Validate bool

	// FixedLen, when greater than zero, declares that every key passed to
	// this trie has exactly this many bytes, and Insert tracks how many
	// bytes of that schedule remain. Insert builds a LEAF node (values
	// stored directly in the branch table) only when it adds a branch
	// table to a node that had none with exactly one schedule byte left.
	// Skip splits and diverges build interior nodes, and a node with
	// interior children keeps receiving interior children, so keys that
	// all have FixedLen bytes are stored the same way as with FixedLen
	// zero. Zero means keys may be of any length.
	FixedLen int
}
