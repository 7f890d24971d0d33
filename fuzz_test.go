package triecore

import (
	"sort"
	"testing"
)

// FuzzInsertFindErase round-trips a sequence of byte-string operations
// through a non-threaded trie and a plain Go map acting as an oracle,
// matching gaissmai-bart's fuzz_test.go convention of differential testing
// against a reference structure rather than asserting fixed outputs.
func FuzzInsertFindErase(f *testing.F) {
	f.Add([]byte("hello"), []byte("help"), []byte("hel"))
	f.Add([]byte(""), []byte("a"), []byte("b"))
	f.Add([]byte{0x00}, []byte{0xFF}, []byte{0x00, 0xFF})

	f.Fuzz(func(t *testing.T, a, b, c []byte) {
		tr := New[int](Config{Threaded: false, Validate: true})
		oracle := map[string]int{}

		insert := func(k []byte, v int) {
			_, inserted := tr.Insert(KeyFromBytes(k), v)
			_, existed := oracle[string(k)]
			if inserted == existed {
				t.Fatalf("insert(%q) = inserted:%v, oracle already has it:%v", k, inserted, existed)
			}
			if !existed {
				oracle[string(k)] = v
			}
		}

		insert(a, 1)
		insert(b, 2)
		insert(c, 3)

		for _, k := range [][]byte{a, b, c} {
			wantV, wantOK := oracle[string(k)]
			gotV, gotOK := tr.lookup(k)
			if gotOK != wantOK || (gotOK && gotV != wantV) {
				t.Fatalf("lookup(%q) = (%d, %v), want (%d, %v)", k, gotV, gotOK, wantV, wantOK)
			}
		}

		if got := tr.Size(); got != len(oracle) {
			t.Fatalf("Size() = %d, want %d", got, len(oracle))
		}

		var wantKeys []string
		for k := range oracle {
			wantKeys = append(wantKeys, k)
		}
		sort.Strings(wantKeys)

		var gotKeys []string
		it := tr.Begin()
		for it.Valid() {
			gotKeys = append(gotKeys, string(it.Key().Bytes()))
			it.Next()
		}
		if len(gotKeys) != len(wantKeys) {
			t.Fatalf("iteration produced %d keys, want %d", len(gotKeys), len(wantKeys))
		}
		for i := range wantKeys {
			if gotKeys[i] != wantKeys[i] {
				t.Fatalf("iteration[%d] = %q, want %q", i, gotKeys[i], wantKeys[i])
			}
		}

		if tr.Erase(KeyFromBytes(a)) {
			delete(oracle, string(a))
		}
		if got := tr.Size(); got != len(oracle) {
			t.Fatalf("after erase, Size() = %d, want %d", got, len(oracle))
		}
		if tr.Contains(KeyFromBytes(a)) {
			_, stillThere := oracle[string(a)]
			if !stillThere {
				t.Fatalf("erased key %q still reported present", a)
			}
		}
	})
}

// FuzzKeyIntRoundTrip checks that the integer key encoders preserve
// numeric ordering for arbitrary pairs of int64 values.
func FuzzKeyIntRoundTrip(f *testing.F) {
	f.Add(int64(0), int64(1))
	f.Add(int64(-1), int64(1))
	f.Add(int64(1<<62), int64(-(1 << 62)))

	f.Fuzz(func(t *testing.T, x, y int64) {
		kx, ky := KeyFromInt64(x), KeyFromInt64(y)
		switch {
		case x < y:
			if !kx.LessThan(ky) {
				t.Fatalf("KeyFromInt64(%d) should sort before KeyFromInt64(%d)", x, y)
			}
		case x > y:
			if !ky.LessThan(kx) {
				t.Fatalf("KeyFromInt64(%d) should sort before KeyFromInt64(%d)", y, x)
			}
		default:
			if !kx.Equal(ky) {
				t.Fatalf("KeyFromInt64(%d) should equal itself", x)
			}
		}
	})
}

// FuzzKeyUintRoundTrip is FuzzKeyIntRoundTrip's unsigned counterpart; the
// seeds straddle the 1<<63 boundary, where an erroneously applied sign-bit
// offset would invert the order.
func FuzzKeyUintRoundTrip(f *testing.F) {
	f.Add(uint64(0), uint64(1))
	f.Add(uint64(1<<63-1), uint64(1<<63))
	f.Add(^uint64(0), uint64(0))

	f.Fuzz(func(t *testing.T, x, y uint64) {
		kx, ky := KeyFromUint64(x), KeyFromUint64(y)
		switch {
		case x < y:
			if !kx.LessThan(ky) {
				t.Fatalf("KeyFromUint64(%d) should sort before KeyFromUint64(%d)", x, y)
			}
		case x > y:
			if !ky.LessThan(kx) {
				t.Fatalf("KeyFromUint64(%d) should sort before KeyFromUint64(%d)", y, x)
			}
		default:
			if !kx.Equal(ky) {
				t.Fatalf("KeyFromUint64(%d) should equal itself", x)
			}
		}
	})
}
