// Package sched implements the process scheduler: process/context
// bookkeeping and a preemptive round-robin ready queue.
package sched

import "sync/atomic"

// State is a process's lifecycle state.
type State int

const (
	Ready State = iota
	Running
	Blocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Blocked:
		return "Blocked"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// defaultRFlags has IF (interrupt flag) set.
const defaultRFlags = 0x202

// defaultKernelStackSize is the minimum kernel stack size a fresh process
// needs (>= 8 KiB).
const defaultKernelStackSize = 8 * 1024

const (
	defaultPriority  = 10
	defaultTimeSlice = 10
)

// Context is the saved register block, laid out in a fixed byte order:
// rsp, rbp, rax, rbx, rcx, rdx, rsi, rdi, r8-r15, rip, rflags. Field order
// here IS the documented slot order; do not reorder without also
// updating anything that depends on offsets.
type Context struct {
	RSP, RBP           uint64
	RAX, RBX, RCX, RDX uint64
	RSI, RDI           uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64
	RIP, RFlags        uint64
}

// newContext returns a Context with rip set to entry, rsp/rbp at the top
// of a fresh kernel stack, and rflags with IF set.
func newContext(entry uint64, stackTop uint64) Context {
	return Context{
		RIP:    entry,
		RSP:    stackTop,
		RBP:    stackTop,
		RFlags: defaultRFlags,
	}
}

var pidCounter atomic.Uint64

func init() {
	pidCounter.Store(1)
}

// Process is one schedulable unit.
type Process struct {
	PID          uint64
	State        State
	Context      Context
	KernelStack  []byte
	UserStackTop uint64
	Priority     uint8
	TimeSlice    int

	entry uint64
}

// NewProcess allocates a Process with a fresh pid, an 8 KiB kernel stack,
// and a context pointed at entry.
func NewProcess(entry uint64) *Process {
	stack := make([]byte, defaultKernelStackSize)
	stackTop := uint64(defaultKernelStackSize)

	return &Process{
		PID:         pidCounter.Add(1) - 1,
		State:       Ready,
		Context:     newContext(entry, stackTop),
		KernelStack: stack,
		Priority:    defaultPriority,
		TimeSlice:   defaultTimeSlice,
		entry:       entry,
	}
}

// WithUserStack records a user stack top address and points the context's
// stack pointer at it.
func (p *Process) WithUserStack(top uint64) *Process {
	p.UserStackTop = top
	p.Context.RSP = top
	return p
}
