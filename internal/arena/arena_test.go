package arena

import "testing"

func TestArenaAllocReturnsStableHandles(t *testing.T) {
	a := New[int]()
	h1 := a.Alloc(10)
	h2 := a.Alloc(20)
	if *a.Get(h1) != 10 || *a.Get(h2) != 20 {
		t.Fatalf("expected handles to resolve to their allocated values")
	}
	if a.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", a.Len())
	}
}

func TestArenaZeroHandleIsUnset(t *testing.T) {
	a := New[string]()
	if a.Get(Handle(0)) != nil {
		t.Fatalf("expected the zero handle to resolve to nil")
	}
}

func TestArenaResetReclaimsStorage(t *testing.T) {
	a := New[int]()
	a.Alloc(1)
	a.Alloc(2)
	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("expected Len 0 after Reset, got %d", a.Len())
	}
	h := a.Alloc(99)
	if *a.Get(h) != 99 {
		t.Fatalf("expected a fresh allocation to work after Reset")
	}
}

func TestFreeListRecyclesPutValues(t *testing.T) {
	fresh := 0
	fl := NewFreeList(func() *int {
		fresh++
		v := 0
		return &v
	})
	v1 := fl.Get()
	*v1 = 7
	fl.Put(v1)
	v2 := fl.Get()
	if v2 != v1 {
		t.Fatalf("expected Get to return the recycled pointer after Put")
	}
	if fresh != 1 {
		t.Fatalf("expected exactly one fresh allocation, got %d", fresh)
	}
}
