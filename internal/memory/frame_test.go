package memory

import "testing"

func TestAllocateFrameWalksUsableRegions(t *testing.T) {
	mm := MemoryMap{
		{Start: 0x1000, End: 0x3000, Type: Reserved},
		{Start: 0x100000, End: 0x100000 + 3*PageSize, Type: Usable},
	}
	fa := NewFrameAllocator(mm)

	want := []uint64{0x100000, 0x100000 + PageSize, 0x100000 + 2*PageSize}
	for i, w := range want {
		got, err := fa.AllocateFrame()
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("frame %d = %#x, want %#x", i, got, w)
		}
	}
}

// TestAllocateFrameCursorMonotonic confirms the cursor only ever advances,
// so no frame is ever handed out twice.
func TestAllocateFrameCursorMonotonic(t *testing.T) {
	mm := MemoryMap{{Start: 0, End: 10 * PageSize, Type: Usable}}
	fa := NewFrameAllocator(mm)

	seen := make(map[uint64]bool)
	for i := 0; i < 10; i++ {
		f, err := fa.AllocateFrame()
		if err != nil {
			t.Fatalf("unexpected exhaustion at %d: %v", i, err)
		}
		if seen[f] {
			t.Fatalf("frame %#x handed out twice", f)
		}
		seen[f] = true
		if fa.Cursor() != uint64(i+1) {
			t.Errorf("cursor = %d, want %d", fa.Cursor(), i+1)
		}
	}
}

func TestAllocateFrameExhausted(t *testing.T) {
	mm := MemoryMap{{Start: 0, End: PageSize, Type: Usable}}
	fa := NewFrameAllocator(mm)

	if _, err := fa.AllocateFrame(); err != nil {
		t.Fatalf("first allocation should succeed: %v", err)
	}
	if _, err := fa.AllocateFrame(); err == nil {
		t.Error("expected exhaustion on second allocation")
	}
}
