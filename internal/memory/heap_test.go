package memory

import "testing"

func TestHeapAllocReturnsDistinctRegions(t *testing.T) {
	h := NewHeap(4096)

	a, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := h.Alloc(128)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}

	a[0] = 1
	b[0] = 2
	if a[0] == b[0] {
		t.Fatal("a and b alias the same backing bytes")
	}
}

func TestHeapFreeCoalescesNeighbors(t *testing.T) {
	h := NewHeap(4096)

	a, _ := h.Alloc(64)
	b, _ := h.Alloc(64)
	c, _ := h.Alloc(64)
	_ = c

	segsBeforeFree := h.SegmentCount()

	if err := h.Free(a); err != nil {
		t.Fatalf("Free a: %v", err)
	}
	if err := h.Free(b); err != nil {
		t.Fatalf("Free b: %v", err)
	}

	if h.SegmentCount() >= segsBeforeFree {
		t.Errorf("segment count = %d, want fewer than %d after coalescing", h.SegmentCount(), segsBeforeFree)
	}
}

func TestHeapAllocExhaustion(t *testing.T) {
	h := NewHeap(128)
	if _, err := h.Alloc(4096); err == nil {
		t.Error("expected exhaustion allocating more than arena size")
	}
}

func TestHeapFreeUnknownPointer(t *testing.T) {
	h := NewHeap(128)
	other := NewHeap(128)
	foreign, _ := other.Alloc(16)

	if err := h.Free(foreign); err == nil {
		t.Error("expected error freeing a pointer from a different heap")
	}
}
