package node

import "testing"

func TestEraseFromNilRoot(t *testing.T) {
	root, retired, found := Erase[int](nil, []byte("abc"))
	if found || root != nil || retired != nil {
		t.Fatalf("Erase(nil) = (%v,%v,%v), want (nil,nil,false)", root, retired, found)
	}
}

func TestEraseOnlyKeyEmptiesTree(t *testing.T) {
	root, _, _ := Insert[int](nil, []byte("abc"), 1, NoFixedLen)
	root, _, found := Erase(root, []byte("abc"))
	if !found {
		t.Fatalf("expected found=true")
	}
	if root != nil {
		t.Fatalf("expected nil root after erasing the only key")
	}
}

func TestEraseAbsentKeyLeavesTreeUntouched(t *testing.T) {
	root, _, _ := Insert[int](nil, []byte("abc"), 1, NoFixedLen)
	before := root
	root, _, found := Erase(root, []byte("xyz"))
	if found {
		t.Fatalf("expected found=false for an absent key")
	}
	if root != before {
		t.Fatalf("tree root should be unchanged when the key was absent")
	}
}

func TestEraseCollapsesSingleChild(t *testing.T) {
	var root *Node[int]
	root, _, _ = Insert(root, []byte("hello"), 1, NoFixedLen)
	root, _, _ = Insert(root, []byte("help"), 2, NoFixedLen)
	root, _, _ = Insert(root, []byte("hel"), 3, NoFixedLen)

	root, _, found := Erase(root, []byte("hel"))
	if !found {
		t.Fatalf("expected found=true")
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate failed after erasing hel: %v", err)
	}
	for k, want := range map[string]int{"hello": 1, "help": 2} {
		c := FindDataCell(root, []byte(k))
		if c == nil {
			t.Fatalf("FindDataCell(%q) = nil after erasing hel", k)
		}
		v, _, _ := c.TryRead()
		if v != want {
			t.Fatalf("FindDataCell(%q) = %d, want %d", k, v, want)
		}
	}
	if c := FindDataCell(root, []byte("hel")); c != nil {
		if _, has, _ := c.TryRead(); has {
			t.Fatalf("erased key hel still resolves to a value")
		}
	}

	// Erasing help as well leaves the root with the single child 'l' and no
	// value of its own, so it collapses into one SKIP leaf "hello".
	root, _, found = Erase(root, []byte("help"))
	if !found {
		t.Fatalf("expected found=true erasing help")
	}
	if root.HasBranch() || string(root.Skip) != "hello" {
		t.Fatalf("root after collapse:\n%s want a single SKIP leaf %q", Dump(root), "hello")
	}
	if v, has, ok := FindDataCell(root, []byte("hello")).TryRead(); !ok || !has || v != 1 {
		t.Fatalf("FindDataCell(hello) after collapse = (%d,%v,%v), want (1,true,true)", v, has, ok)
	}
}

func TestEraseBandDemotion(t *testing.T) {
	var root *Node[int]
	for _, c := range []byte("abcdefgh") {
		root, _, _ = Insert(root, []byte{c}, int(c), NoFixedLen)
	}
	if root.Shape() != ShapePop {
		t.Fatalf("Shape() = %s, want POP with 8 entries", root.Shape())
	}
	for _, c := range []byte("cdefgh") {
		var found bool
		root, _, found = Erase(root, []byte{c})
		if !found {
			t.Fatalf("erase(%q) not found", c)
		}
	}
	if root.Shape() != ShapeBinary {
		t.Fatalf("Shape() = %s, want BINARY after demoting back to 2 entries", root.Shape())
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestEraseFullNodeDemotesToPop(t *testing.T) {
	var root *Node[int]
	for c := 0; c < 256; c++ {
		root, _, _ = Insert(root, []byte{byte(c)}, c, NoFixedLen)
	}
	for c := 0; c < 224; c++ {
		var found bool
		root, _, found = Erase(root, []byte{byte(c)})
		if !found {
			t.Fatalf("erase(%d) not found", c)
		}
	}
	if root.Shape() != ShapePop {
		t.Fatalf("Shape() = %s, want POP with 32 entries remaining", root.Shape())
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for c := 224; c < 256; c++ {
		v, has, ok := FindDataCell(root, []byte{byte(c)}).TryRead()
		if !ok || !has || v != c {
			t.Fatalf("byte %d missing after demotion: (%d,%v,%v)", c, v, has, ok)
		}
	}
}

// TestEraseDoesNotCollapseWhenChildHasEOS exercises the documented
// exception in settleAfterChange: a parent left with exactly one child
// cannot flatten into it when that child itself terminates a key (HasEOS),
// since the merged-skip node model has no slot for a value ending midway
// through a skip.
func TestEraseDoesNotCollapseWhenChildHasEOS(t *testing.T) {
	// "abc" and "abd" diverge right after the shared "ab" skip, giving a
	// parent (skip "ab", no EOS/SKIP_EOS of its own) with two children
	// that each terminate via their own EOS. Erasing "abc" removes one of
	// them, leaving a single remaining child that itself carries EOS —
	// exactly the shape settleAfterChange's collapse guard exists for.
	var root *Node[int]
	root, _, _ = Insert(root, []byte("abc"), 1, NoFixedLen)
	root, _, _ = Insert(root, []byte("abd"), 2, NoFixedLen)

	root, _, found := Erase(root, []byte("abc"))
	if !found {
		t.Fatalf("expected found=true")
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c := FindDataCell(root, []byte("abc")); c != nil {
		if _, has, _ := c.TryRead(); has {
			t.Fatalf("erased key abc still resolves to a value")
		}
	}
	v, has, ok := FindDataCell(root, []byte("abd")).TryRead()
	if !ok || !has || v != 2 {
		t.Fatalf("FindDataCell(abd) = (%d,%v,%v), want (2,true,true)", v, has, ok)
	}
}

func TestEraseEmptyKeyLeavesOtherKeysIntact(t *testing.T) {
	var root *Node[int]
	root, _, _ = Insert(root, []byte("abc"), 1, NoFixedLen)
	root, _, _ = Insert(root, []byte{}, 2, NoFixedLen)

	root, _, found := Erase(root, []byte{})
	if !found {
		t.Fatalf("expected found=true erasing the empty key")
	}
	if err := Validate(root); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c := FindDataCell(root, []byte{}); c != nil {
		if _, has, _ := c.TryRead(); has {
			t.Fatalf("erased empty key still resolves to a value")
		}
	}
	v, has, ok := FindDataCell(root, []byte("abc")).TryRead()
	if !ok || !has || v != 1 {
		t.Fatalf("FindDataCell(abc) = (%d,%v,%v), want (1,true,true)", v, has, ok)
	}
}
