// Package syscall implements the syscall dispatcher: the int 0x80
// entry point's number -> handler table, argument convention, and stats.
package syscall

// Syscall numbers, kept intentionally non-contiguous
// (9/11/35/39/57/59/60) rather than renumbered to a dense range.
const (
	SysRead   = 0
	SysWrite  = 1
	SysOpen   = 2
	SysClose  = 3
	SysMmap   = 9
	SysMunmap = 11
	SysSleep  = 35
	SysGetpid = 39
	SysFork   = 57
	SysExecve = 59
	SysExit   = 60
)

// maxTrackedNumber bounds the per-number stats array; syscall numbers at
// or above it still dispatch but aren't counted individually (only in
// Total).
const maxTrackedNumber = 256
