package pool

import "testing"

func TestAllocFreeReuse(t *testing.T) {
	p := New[int](2)

	h1, r1, ok := p.Alloc()
	if !ok {
		t.Fatal("expected alloc to succeed")
	}
	*r1 = 10
	if p.Allocated() != 1 {
		t.Errorf("Allocated() = %d, want 1", p.Allocated())
	}

	h2, r2, ok := p.Alloc()
	if !ok {
		t.Fatal("expected second alloc to succeed")
	}
	*r2 = 20

	if _, _, ok := p.Alloc(); ok {
		t.Fatal("expected pool to be exhausted at capacity")
	}

	p.Free(h1)
	if p.Allocated() != 1 {
		t.Errorf("Allocated() after free = %d, want 1", p.Allocated())
	}
	if p.Get(h1) != nil {
		t.Error("expected freed handle h1 to no longer resolve")
	}

	h3, r3, ok := p.Alloc()
	if !ok {
		t.Fatal("expected alloc to succeed after free")
	}
	if *r3 != 0 {
		t.Errorf("reused slot = %d, want zeroed", *r3)
	}

	if p.Get(h2) == nil {
		t.Error("expected h2 to still resolve")
	}
	_ = h3
}

func TestGetOutOfRange(t *testing.T) {
	p := New[int](1)
	if p.Get(0) != nil {
		t.Error("expected handle 0 to never resolve")
	}
	if p.Get(99) != nil {
		t.Error("expected out-of-range handle to not resolve")
	}
}

func TestReset(t *testing.T) {
	p := New[int](3)
	p.Alloc()
	p.Alloc()
	if p.Allocated() != 2 {
		t.Fatalf("Allocated() = %d, want 2", p.Allocated())
	}
	p.Reset()
	if p.Allocated() != 0 {
		t.Errorf("Allocated() after Reset() = %d, want 0", p.Allocated())
	}
	if _, _, ok := p.Alloc(); !ok {
		t.Error("expected alloc to succeed after reset")
	}
}
