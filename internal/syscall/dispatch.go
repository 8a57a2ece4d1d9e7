package syscall

import "unicode/utf8"

// Args carries the System V-like argument registers int 0x80 uses for a
// syscall's arguments (r10 in place of rcx): rdi, rsi, rdx, r10, r8, r9.
type Args struct {
	RDI, RSI, RDX, R10, R8, R9 uint64
}

// Console is the subset of internal/console's Console a write syscall
// needs.
type Console interface {
	Write(s string)
}

// Keyboard is the subset of internal/keyboard's Keyboard a read syscall
// needs.
type Keyboard interface {
	ReadBytes(dst []byte) int
}

// FileSystem is the subset of internal/vfs a syscall dispatcher needs,
// satisfied by *vfs.VFS.
type FileSystem interface {
	Open(path string, flags int, mode uint32) (int, error)
	Close(fd int) error
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
}

// Memory is the subset of internal/memory's Manager a syscall dispatcher
// needs for mmap/munmap.
type Memory interface {
	AllocatePages(n int) (uint64, error)
	DeallocatePages(base uint64, n int) error
}

// Processes is the subset of internal/sched's Manager needed for
// getpid/exit.
type Processes interface {
	CurrentPID() (uint64, bool)
	ExitCurrent(status int32)
}

// Sink receives the "Unknown syscall" diagnostic line, satisfied by
// *klog.Logger.
type Sink interface {
	Printf(format string, args ...interface{})
}

// Dispatcher is the syscall dispatcher: it demultiplexes a syscall
// number to its handler, tracks Stats, and collapses every subsystem
// error to -1.
type Dispatcher struct {
	Console   Console
	Keyboard  Keyboard
	FS        FileSystem
	Memory    Memory
	Processes Processes
	Sink      Sink

	Stats Stats
}

// Dispatch handles syscall number with args, reading/writing through buf
// for the syscalls that take a user buffer (read/write/open's path). This
// hosted simulation takes buf directly rather than translating a raw
// virtual address through the memory manager; the hardware-accurate
// version would resolve that address itself, but taking buf directly
// keeps the dispatcher testable in isolation from the trap plane.
func (d *Dispatcher) Dispatch(number uint64, a Args, buf []byte) int64 {
	d.Stats.record(number)

	switch number {
	case SysRead:
		return d.sysRead(int32(a.RDI), buf, int(a.RDX))
	case SysWrite:
		return d.sysWrite(int32(a.RDI), buf, int(a.RDX))
	case SysOpen:
		return d.sysOpen(buf, int(a.RSI), uint32(a.RDX))
	case SysClose:
		return d.sysClose(int32(a.RDI))
	case SysMmap:
		return d.sysMmap(int(a.RSI))
	case SysMunmap:
		return d.sysMunmap(a.RDI, int(a.RSI))
	case SysSleep:
		return 0
	case SysGetpid:
		return d.sysGetpid()
	case SysFork:
		return -1
	case SysExecve:
		return -1
	case SysExit:
		d.sysExit(int32(a.RDI))
		return 0
	default:
		if d.Sink != nil {
			d.Sink.Printf("Unknown syscall: %d\n", number)
		}
		return -1
	}
}

func (d *Dispatcher) sysRead(fd int32, buf []byte, count int) int64 {
	if fd < 0 || buf == nil {
		return -1
	}
	if count < len(buf) {
		buf = buf[:count]
	}

	if fd == 0 {
		return int64(d.Keyboard.ReadBytes(buf))
	}

	n, err := d.FS.Read(int(fd), buf)
	if err != nil {
		return -1
	}
	return int64(n)
}

func (d *Dispatcher) sysWrite(fd int32, buf []byte, count int) int64 {
	if fd < 0 || buf == nil {
		return -1
	}
	if count < len(buf) {
		buf = buf[:count]
	}

	if fd == 1 || fd == 2 {
		if !utf8.Valid(buf) {
			return -1
		}
		d.Console.Write(string(buf))
		return int64(len(buf))
	}

	n, err := d.FS.Write(int(fd), buf)
	if err != nil {
		return -1
	}
	return int64(n)
}

func (d *Dispatcher) sysOpen(pathBuf []byte, flags int, mode uint32) int64 {
	if pathBuf == nil {
		return -1
	}
	path := cString(pathBuf)

	fd, err := d.FS.Open(path, flags, mode)
	if err != nil {
		return -1
	}
	return int64(fd)
}

func (d *Dispatcher) sysClose(fd int32) int64 {
	if fd < 0 {
		return -1
	}
	if err := d.FS.Close(int(fd)); err != nil {
		return -1
	}
	return 0
}

func (d *Dispatcher) sysMmap(lengthBytes int) int64 {
	pages := (lengthBytes + 4095) / 4096
	base, err := d.Memory.AllocatePages(pages)
	if err != nil {
		return -1
	}
	return int64(base)
}

func (d *Dispatcher) sysMunmap(addr uint64, lengthBytes int) int64 {
	pages := (lengthBytes + 4095) / 4096
	d.Memory.DeallocatePages(addr, pages)
	return 0
}

func (d *Dispatcher) sysGetpid() int64 {
	pid, ok := d.Processes.CurrentPID()
	if !ok {
		return -1
	}
	return int64(pid)
}

func (d *Dispatcher) sysExit(status int32) {
	if d.Sink != nil {
		d.Sink.Printf("Process exiting with status: %d\n", status)
	}
	d.Processes.ExitCurrent(status)
}

// cString reads a NUL-terminated string out of buf, capped at 4096 bytes
// since the path argument to open is never longer than that.
func cString(buf []byte) string {
	n := len(buf)
	if n > 4096 {
		n = 4096
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return string(buf[:i])
		}
	}
	return string(buf[:n])
}
