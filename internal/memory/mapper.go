package memory

import (
	"fmt"

	"mazkernel/internal/bitfield"
	"mazkernel/internal/kerrors"
)

// PTEFlags is a page-table-entry's flag word, packed with internal/bitfield.
type PTEFlags struct {
	Present        bool   `bitfield:",1"`
	Writable       bool   `bitfield:",1"`
	UserAccessible bool   `bitfield:",1"`
	Reserved       uint32 `bitfield:",29"`
}

var pteConfig = &bitfield.Config{NumBits: 32}

// pte is one page-table entry: the frame it maps to plus its flag word.
type pte struct {
	frame uint64
	flags PTEFlags
}

// Frame is a simulated 4 KiB physical frame's backing storage. Real
// hardware addresses this through CR3-rooted page tables; this model
// substitutes an explicit frame array so Mapper.WriteByte/ReadByte can be
// exercised without unsafe.Pointer or an actual MMU.
type Frame [PageSize]byte

// Mapper owns the page table (virtual page -> pte) and the physical frames
// those entries reference: an offset-mapped translation table standing in
// for real hardware paging.
type Mapper struct {
	table  map[uint64]pte
	frames map[uint64]*Frame
}

// NewMapper returns an empty Mapper.
func NewMapper() *Mapper {
	return &Mapper{
		table:  make(map[uint64]pte),
		frames: make(map[uint64]*Frame),
	}
}

func pageOf(addr uint64) uint64 {
	return addr - (addr % PageSize)
}

// MapTo installs a translation from the page containing virt to the frame
// frameAddr, with the given flags, allocating backing storage for the frame
// on first use.
func (m *Mapper) MapTo(virt, frameAddr uint64, flags PTEFlags) error {
	page := pageOf(virt)
	if _, exists := m.table[page]; exists {
		return fmt.Errorf("memory: page %#x already mapped: %w", page, kerrors.ErrExists)
	}

	m.table[page] = pte{frame: pageOf(frameAddr), flags: flags}
	if _, ok := m.frames[pageOf(frameAddr)]; !ok {
		m.frames[pageOf(frameAddr)] = &Frame{}
	}
	return nil
}

// Unmap removes the translation covering virt.
func (m *Mapper) Unmap(virt uint64) error {
	page := pageOf(virt)
	if _, exists := m.table[page]; !exists {
		return fmt.Errorf("memory: page %#x not mapped: %w", page, kerrors.ErrNotFound)
	}
	delete(m.table, page)
	return nil
}

// Translate resolves virt to its backing physical address.
func (m *Mapper) Translate(virt uint64) (uint64, error) {
	page := pageOf(virt)
	entry, ok := m.table[page]
	if !ok {
		return 0, fmt.Errorf("memory: page %#x not mapped: %w", page, kerrors.ErrNotFound)
	}
	return entry.frame + (virt - page), nil
}

// WriteByte writes b at virt, resolving through the page table to the
// simulated physical frame backing it.
func (m *Mapper) WriteByte(virt uint64, b byte) error {
	page := pageOf(virt)
	entry, ok := m.table[page]
	if !ok {
		return fmt.Errorf("memory: page %#x not mapped: %w", page, kerrors.ErrNotFound)
	}
	if !entry.flags.Writable {
		return fmt.Errorf("memory: page %#x not writable: %w", page, kerrors.ErrPermission)
	}
	frame := m.frames[entry.frame]
	frame[virt-page] = b
	return nil
}

// ReadByte reads the byte at virt through the page table.
func (m *Mapper) ReadByte(virt uint64) (byte, error) {
	page := pageOf(virt)
	entry, ok := m.table[page]
	if !ok {
		return 0, fmt.Errorf("memory: page %#x not mapped: %w", page, kerrors.ErrNotFound)
	}
	frame := m.frames[entry.frame]
	return frame[virt-page], nil
}

// Flags returns the packed flag word for virt's page, produced by passing
// its PTEFlags through internal/bitfield's Pack.
func (m *Mapper) Flags(virt uint64) (uint64, error) {
	page := pageOf(virt)
	entry, ok := m.table[page]
	if !ok {
		return 0, fmt.Errorf("memory: page %#x not mapped: %w", page, kerrors.ErrNotFound)
	}
	return bitfield.Pack(entry.flags, pteConfig)
}
