// Package trap implements the trap plane: the interrupt/exception
// vector table, PIC remapping, and fatal-fault handling.
package trap

import (
	"fmt"
	"sync"
)

// Vector numbers for CPU exceptions and remapped hardware IRQs. Hardware
// IRQs are remapped from the legacy 0-15 range to 32-47 before sti
// (remap bases: primary -> 32, secondary -> 40).
const (
	VectorBreakpoint        = 3
	VectorDoubleFault       = 8
	VectorGeneralProtection = 13
	VectorPageFault         = 14
	VectorTimer             = 32
	VectorKeyboard          = 33
	VectorSyscall           = 0x80
)

// istStackSize is the double-fault IST stack's nominal size; only its
// existence as a region distinct from any task's kernel stack matters
// here: the double fault handler must run on a stack independent of the
// interrupted task's kernel stack.
const istStackSize = 8 * 1024

// Frame is the minimal interrupted-context information fault handlers are
// guaranteed: the faulting instruction pointer plus page-fault/GPF-
// specific fields.
type Frame struct {
	RIP       uint64
	CR2       uint64 // page-fault-only: faulting address
	ErrorCode uint64 // page-fault / GPF: hardware error code
}

// Sink receives diagnostic text from fatal fault handlers; satisfied by
// *console.Console or any *klog.Logger-like type.
type Sink interface {
	Printf(format string, args ...interface{})
}

// HandlerFunc is a vector's dispatch target.
type HandlerFunc func(Frame)

// TrapPlane owns vector table storage with (conceptually) static lifetime
// and demultiplexes vector numbers to handlers.
type TrapPlane struct {
	mu       sync.Mutex
	handlers map[int]HandlerFunc
	sink     Sink

	remapped   bool
	stiCalled  bool
	istInUse   bool
	halted     bool
	haltReason string

	breakpointCount int
	eois            int
}

// New returns a TrapPlane with the breakpoint and fatal-fault handlers
// pre-registered; hardware vectors (timer/keyboard) are registered
// separately via RegisterHandler once those subsystems exist during
// bring-up. kernel.Bootstrap registers no handler for VectorSyscall:
// syscalls reach the dispatcher through syscall.Dispatcher.Dispatch, not
// through this table.
func New(sink Sink) *TrapPlane {
	tp := &TrapPlane{handlers: make(map[int]HandlerFunc), sink: sink}
	tp.handlers[VectorBreakpoint] = tp.breakpointHandler
	tp.handlers[VectorDoubleFault] = tp.doubleFaultHandler
	tp.handlers[VectorPageFault] = tp.pageFaultHandler
	tp.handlers[VectorGeneralProtection] = tp.gpfHandler
	return tp
}

// RegisterHandler installs (or replaces) the handler for vector.
func (tp *TrapPlane) RegisterHandler(vector int, h HandlerFunc) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.handlers[vector] = h
}

// RemapPIC performs the chained-8259 remap (legacy 0-15 -> primaryBase/
// secondaryBase) that must happen before sti.
func (tp *TrapPlane) RemapPIC(primaryBase, secondaryBase byte) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	_ = primaryBase
	_ = secondaryBase
	tp.remapped = true
}

// EnableInterrupts models sti; it may only be called after RemapPIC.
func (tp *TrapPlane) EnableInterrupts() error {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if !tp.remapped {
		return fmt.Errorf("trap: sti before PIC remap")
	}
	tp.stiCalled = true
	return nil
}

// Dispatch demultiplexes vector to its registered handler. Unregistered
// vectors are a no-op; kernel.Bootstrap registers the timer and keyboard
// vectors, so dispatching VectorSyscall does nothing.
func (tp *TrapPlane) Dispatch(vector int, frame Frame) {
	tp.mu.Lock()
	h := tp.handlers[vector]
	tp.mu.Unlock()

	if h != nil {
		h(frame)
	}
}

// SendEOI records an end-of-interrupt to the primary controller.
func (tp *TrapPlane) SendEOI() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.eois++
}

// Halted reports whether a fatal fault has parked the trap plane in its
// halt loop, and why.
func (tp *TrapPlane) Halted() (bool, string) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.halted, tp.haltReason
}

func (tp *TrapPlane) breakpointHandler(f Frame) {
	tp.mu.Lock()
	tp.breakpointCount++
	tp.mu.Unlock()
	tp.sink.Printf("EXCEPTION: BREAKPOINT at rip=%#x\n", f.RIP)
}

// doubleFaultHandler runs, conceptually, on the IST stack rather than the
// interrupted task's kernel stack: istInUse is set for the duration so
// tests can assert no other fault handler claims to run concurrently on
// it.
func (tp *TrapPlane) doubleFaultHandler(f Frame) {
	tp.mu.Lock()
	tp.istInUse = true
	tp.mu.Unlock()

	tp.fatal(fmt.Sprintf("EXCEPTION: DOUBLE FAULT at rip=%#x", f.RIP))

	tp.mu.Lock()
	tp.istInUse = false
	tp.mu.Unlock()
}

func (tp *TrapPlane) pageFaultHandler(f Frame) {
	tp.fatal(fmt.Sprintf("EXCEPTION: PAGE FAULT\nAccessed Address: %#x\nError Code: %#x",
		f.CR2, f.ErrorCode))
}

func (tp *TrapPlane) gpfHandler(f Frame) {
	tp.fatal(fmt.Sprintf("EXCEPTION: GENERAL PROTECTION FAULT\nError Code: %#x", f.ErrorCode))
}

// fatal prints diagnostic context and parks the trap plane in its halt
// state; this is unrecoverable — the real hardware equivalent is hlt in a
// loop with interrupts disabled.
func (tp *TrapPlane) fatal(message string) {
	tp.sink.Printf("%s\n", message)

	tp.mu.Lock()
	tp.halted = true
	tp.haltReason = message
	tp.mu.Unlock()
}

// ISTStackSize exposes the nominal IST stack size for tests/diagnostics.
func ISTStackSize() int { return istStackSize }
