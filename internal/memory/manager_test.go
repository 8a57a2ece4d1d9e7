package memory

import "testing"

// TestBootWithUsableRegionAllocatesAndRoundTripsBytes boots a manager over
// a single usable region, allocates pages, and confirms a byte written to
// the allocated range reads back unchanged.
func TestBootWithUsableRegionAllocatesAndRoundTripsBytes(t *testing.T) {
	mm := MemoryMap{{Start: 0x100000, End: 0x800000, Type: Usable}}

	mgr, err := NewManager(mm)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	base, err := mgr.AllocatePages(4)
	if err != nil {
		t.Fatalf("AllocatePages(4): %v", err)
	}
	if base == 0 {
		t.Fatal("expected non-null base")
	}

	if err := mgr.WriteByte(base, 0x42); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	got, err := mgr.ReadByte(base)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if got != 0x42 {
		t.Errorf("ReadByte = %#x, want 0x42", got)
	}
}

func TestNewManagerMapsHeapRangeBeforeFirstAllocation(t *testing.T) {
	mm := MemoryMap{{Start: 0x100000, End: 0x800000, Type: Usable}}

	mgr, err := NewManager(mm)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := mgr.Heap.Alloc(256); err != nil {
		t.Fatalf("kernel heap alloc should succeed immediately after bring-up: %v", err)
	}
}

func TestDeallocatePagesUnmapsButLeaksFrameCursor(t *testing.T) {
	mm := MemoryMap{{Start: 0x100000, End: 0x900000, Type: Usable}}
	mgr, _ := NewManager(mm)

	base, err := mgr.AllocatePages(2)
	if err != nil {
		t.Fatalf("AllocatePages: %v", err)
	}
	cursorBefore := mgr.Frames.Cursor()

	if err := mgr.DeallocatePages(base, 2); err != nil {
		t.Fatalf("DeallocatePages: %v", err)
	}

	if _, err := mgr.ReadByte(base); err == nil {
		t.Error("expected ReadByte to fail after deallocate")
	}
	if mgr.Frames.Cursor() != cursorBefore {
		t.Errorf("cursor changed on deallocate: %d -> %d (frames must leak, not reclaim)",
			cursorBefore, mgr.Frames.Cursor())
	}
}
