package memory

import (
	"fmt"
	"unsafe"

	"mazkernel/internal/kerrors"
)

// HeapAlignment: every allocation's usable size is rounded up to this
// boundary.
const HeapAlignment = 16

// heapSegment is a doubly-linked-list node over the heap's backing byte
// arena, tracking one allocated-or-free run. Segment headers live outside
// the arena as plain Go structs referencing offsets into Heap.arena,
// rather than inline in the arena itself, since this simulation has no
// raw address space to place headers in.
type heapSegment struct {
	next, prev  *heapSegment
	offset      int
	size        int
	isAllocated bool
}

// Heap is a best-fit, coalescing linked-list allocator over a fixed-size
// byte arena.
type Heap struct {
	arena []byte
	head  *heapSegment
	live  map[int]*heapSegment // offset -> segment, for Free lookups
}

// NewHeap allocates a Heap backed by an arena of size bytes, starting as a
// single free segment spanning the whole arena.
func NewHeap(size int) *Heap {
	h := &Heap{
		arena: make([]byte, size),
		live:  make(map[int]*heapSegment),
	}
	h.head = &heapSegment{offset: 0, size: size}
	return h
}

func align(n int) int {
	if r := n % HeapAlignment; r != 0 {
		n += HeapAlignment - r
	}
	return n
}

// Alloc finds the best-fitting free segment for size bytes (smallest free
// segment that's still large enough), splitting it if the remainder is
// worth keeping as its own free segment.
func (h *Heap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memory: heap alloc size must be positive: %w", kerrors.ErrInvalid)
	}
	need := align(size)

	var best *heapSegment
	bestDiff := -1
	for seg := h.head; seg != nil; seg = seg.next {
		if seg.isAllocated || seg.size < need {
			continue
		}
		diff := seg.size - need
		if bestDiff == -1 || diff < bestDiff {
			best, bestDiff = seg, diff
			if diff == 0 {
				break
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("memory: heap out of memory for %d bytes: %w", size, kerrors.ErrExhausted)
	}

	const minSplit = 32
	if bestDiff > minSplit {
		newSeg := &heapSegment{
			offset: best.offset + need,
			size:   best.size - need,
			next:   best.next,
			prev:   best,
		}
		if newSeg.next != nil {
			newSeg.next.prev = newSeg
		}
		best.next = newSeg
		best.size = need
	}

	best.isAllocated = true
	h.live[best.offset] = best
	return h.arena[best.offset : best.offset+size : best.offset+best.size], nil
}

// Free releases a slice previously returned by Alloc, coalescing with any
// adjacent free neighbors.
func (h *Heap) Free(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	offset := int(uintptr(unsafe.Pointer(&data[0])) - uintptr(unsafe.Pointer(&h.arena[0])))
	seg, ok := h.live[offset]
	if !ok {
		return fmt.Errorf("memory: free of unknown pointer: %w", kerrors.ErrInvalid)
	}

	delete(h.live, seg.offset)
	seg.isAllocated = false

	for seg.prev != nil && !seg.prev.isAllocated {
		prev := seg.prev
		prev.next = seg.next
		prev.size += seg.size
		if seg.next != nil {
			seg.next.prev = prev
		}
		seg = prev
	}
	for seg.next != nil && !seg.next.isAllocated {
		next := seg.next
		seg.size += next.size
		seg.next = next.next
		if next.next != nil {
			next.next.prev = seg
		}
	}

	return nil
}

// FreeBytes sums the size of every free segment, for diagnostics/tests.
func (h *Heap) FreeBytes() int {
	total := 0
	for seg := h.head; seg != nil; seg = seg.next {
		if !seg.isAllocated {
			total += seg.size
		}
	}
	return total
}

// SegmentCount returns the number of segments (allocated and free) in the
// list, for tests asserting on split/coalesce behavior.
func (h *Heap) SegmentCount() int {
	n := 0
	for seg := h.head; seg != nil; seg = seg.next {
		n++
	}
	return n
}
