package memory

import "fmt"

// HeapStart and HeapSize fix the kernel heap's virtual range. The range
// must be fully mapped PRESENT|WRITABLE before the first allocation.
const (
	HeapStart = 0x4444_4444_0000
	HeapSize  = 100 * 1024
)

// Manager is the memory manager: it owns the frame allocator, the page
// mapper, the kernel heap, and the user-space page allocator, and
// sequences their bring-up.
type Manager struct {
	Frames *FrameAllocator
	Mapper *Mapper
	Heap   *Heap
	Users  PageAllocator
}

// NewManager brings up a Manager over mm: it maps HeapSize worth of frames
// at HeapStart with PRESENT|WRITABLE, flushing each mapping, then
// initializes the kernel heap allocator over that range — pages before
// heap, always in that order.
func NewManager(mm MemoryMap) (*Manager, error) {
	m := &Manager{
		Frames: NewFrameAllocator(mm),
		Mapper: NewMapper(),
		Users:  NewBitmapAllocator(),
	}

	pages := (HeapSize + PageSize - 1) / PageSize
	flags := PTEFlags{Present: true, Writable: true}

	for i := 0; i < pages; i++ {
		frame, err := m.Frames.AllocateFrame()
		if err != nil {
			return nil, fmt.Errorf("memory: heap bring-up: %w", err)
		}
		virt := uint64(HeapStart + i*PageSize)
		if err := m.Mapper.MapTo(virt, frame, flags); err != nil {
			return nil, fmt.Errorf("memory: heap bring-up: %w", err)
		}
		m.flushTLB(virt)
	}

	m.Heap = NewHeap(HeapSize)
	return m, nil
}

// flushTLB models invlpg for one virtual address. The mapper has no real
// TLB to invalidate in this hosted simulation; the call exists so the
// bring-up sequence visibly flushes a TLB entry per mapping, the way the
// real hardware path would.
func (m *Manager) flushTLB(virt uint64) {}

// AllocatePages implements allocate_pages(n): n freshly allocated frames,
// mapped contiguously from a fresh virtual base with
// PRESENT|WRITABLE|USER_ACCESSIBLE.
func (m *Manager) AllocatePages(n int) (uint64, error) {
	base, err := m.Users.Allocate(n)
	if err != nil {
		return 0, fmt.Errorf("memory: allocate_pages(%d): %w", n, err)
	}

	flags := PTEFlags{Present: true, Writable: true, UserAccessible: true}
	for i := 0; i < n; i++ {
		frame, err := m.Frames.AllocateFrame()
		if err != nil {
			return 0, fmt.Errorf("memory: allocate_pages(%d): %w", n, err)
		}
		virt := base + uint64(i*PageSize)
		if err := m.Mapper.MapTo(virt, frame, flags); err != nil {
			return 0, fmt.Errorf("memory: allocate_pages(%d): %w", n, err)
		}
		m.flushTLB(virt)
	}

	return base, nil
}

// DeallocatePages implements deallocate_pages(base, n): unmaps and
// flushes. Frames are leaked under the bump allocator — it never returns
// frames to a free pool, so a freed page's backing frame is gone for
// good. This is a documented limitation, not a bug: fixing it needs a
// real free-list frame allocator, which is out of scope here.
func (m *Manager) DeallocatePages(base uint64, n int) error {
	for i := 0; i < n; i++ {
		virt := base + uint64(i*PageSize)
		if err := m.Mapper.Unmap(virt); err != nil {
			return fmt.Errorf("memory: deallocate_pages: %w", err)
		}
		m.flushTLB(virt)
	}
	return m.Users.Deallocate(base, n)
}

// WriteByte and ReadByte expose the mapper's translation for callers (VFS,
// syscall handlers) operating on user-space addresses returned by
// AllocatePages.
func (m *Manager) WriteByte(virt uint64, b byte) error { return m.Mapper.WriteByte(virt, b) }
func (m *Manager) ReadByte(virt uint64) (byte, error)  { return m.Mapper.ReadByte(virt) }
