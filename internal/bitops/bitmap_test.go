package bitops

import "testing"

func TestBitmap256SetTestClear(t *testing.T) {
	b := NewBitmap256()
	indices := []byte{0, 63, 64, 127, 128, 191, 192, 255}
	for _, i := range indices {
		if b.Test(i) {
			t.Fatalf("bit %d should be clear initially", i)
		}
	}
	for _, i := range indices {
		b.Set(i)
		if !b.Test(i) {
			t.Fatalf("bit %d should be set after Set()", i)
		}
	}
	for _, i := range []byte{1, 2, 60, 65, 129, 254} {
		if b.Test(i) {
			t.Fatalf("bit %d should remain clear", i)
		}
	}
	for _, i := range indices {
		b.Clear(i)
		if b.Test(i) {
			t.Fatalf("bit %d should be clear after Clear()", i)
		}
	}
}

func TestBitmap256Rank(t *testing.T) {
	b := NewBitmap256()
	for _, c := range []byte{5, 10, 100, 200} {
		b.Set(c)
	}
	cases := []struct {
		c    byte
		want int
	}{
		{0, 0},
		{5, 0},
		{6, 1},
		{10, 1},
		{11, 2},
		{100, 2},
		{101, 3},
		{200, 3},
		{201, 4},
		{255, 4},
	}
	for _, c := range cases {
		if got := b.Rank(c.c); got != c.want {
			t.Fatalf("Rank(%d) = %d, want %d", c.c, got, c.want)
		}
	}
}

func TestBitmap256FirstAndNextSet(t *testing.T) {
	b := NewBitmap256()
	if _, ok := b.FirstSet(); ok {
		t.Fatalf("FirstSet() on empty bitmap returned ok=true")
	}
	b.Set(10)
	b.Set(20)
	b.Set(30)

	first, ok := b.FirstSet()
	if !ok || first != 10 {
		t.Fatalf("FirstSet() = (%d, %v), want (10, true)", first, ok)
	}
	next, ok := b.NextSet(10)
	if !ok || next != 20 {
		t.Fatalf("NextSet(10) = (%d, %v), want (20, true)", next, ok)
	}
	next, ok = b.NextSet(30)
	if ok {
		t.Fatalf("NextSet(30) = (%d, true), want ok=false", next)
	}
}

func TestBitmap256Count(t *testing.T) {
	b := NewBitmap256()
	if b.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", b.Count())
	}
	for c := 0; c < 40; c++ {
		b.Set(byte(c))
	}
	if b.Count() != 40 {
		t.Fatalf("Count() = %d, want 40", b.Count())
	}
}

func TestBitmap256Select(t *testing.T) {
	b := NewBitmap256()
	for _, c := range []byte{5, 10, 100, 200} {
		b.Set(c)
	}
	want := []byte{5, 10, 100, 200}
	for i, w := range want {
		got, ok := b.Select(i)
		if !ok || got != w {
			t.Fatalf("Select(%d) = (%d, %v), want (%d, true)", i, got, ok, w)
		}
	}
	if _, ok := b.Select(4); ok {
		t.Fatalf("Select(4) on a 4-member bitmap should be not-ok")
	}
	for _, c := range want {
		if got, ok := b.Select(b.Rank(c)); !ok || got != c {
			t.Fatalf("Select(Rank(%d)) = (%d, %v), want (%d, true)", c, got, ok, c)
		}
	}
}

func TestBitmap256Clone(t *testing.T) {
	b := NewBitmap256()
	b.Set(7)
	c := b.Clone()
	c.Set(8)
	if b.Test(8) {
		t.Fatalf("mutating clone affected original bitmap")
	}
	if !c.Test(7) || !c.Test(8) {
		t.Fatalf("clone missing expected bits")
	}
}
