// Package kernel implements the init sequence: it brings up every other
// subsystem in a fixed order — console, trap plane, timer, memory, heap,
// scheduler, filesystem, keyboard driver, syscalls — then runs the
// init-process demonstration.
package kernel

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"mazkernel/internal/console"
	"mazkernel/internal/keyboard"
	"mazkernel/internal/klog"
	"mazkernel/internal/memory"
	"mazkernel/internal/sched"
	"mazkernel/internal/syscall"
	"mazkernel/internal/timer"
	"mazkernel/internal/trap"
	"mazkernel/internal/vfs"
)

// Config parameterizes Bootstrap; its zero value is not meaningful — at
// minimum set MemoryMap to a boot-supplied memory map.
type Config struct {
	MemoryMap memory.MemoryMap
	TargetHz  uint64 // 0 defaults to timer.DefaultTargetHz
}

// Kernel is the wired-up collection of every subsystem, ready to accept
// syscalls and run the scheduler.
type Kernel struct {
	Console  *console.Console
	Trap     *trap.TrapPlane
	Memory   *memory.Manager
	Sched    *sched.Manager
	VFS      *vfs.VFS
	Keyboard *keyboard.Keyboard
	Timer    *timer.Timer
	Syscalls *syscall.Dispatcher
	Log      *klog.Logger
}

// Bootstrap brings up a Kernel over cfg, printing an "[OK] ... initialized"
// banner line per subsystem as each one comes online.
func Bootstrap(cfg Config) (*Kernel, error) {
	k := &Kernel{Console: console.New()}
	k.Log = klog.New(k.Console, "kernel")

	k.Console.Printf("mazkernel v0.1.0\n")
	k.Console.Printf("Initializing...\n")

	k.Trap = trap.New(k.Log)
	k.Trap.RemapPIC(trap.VectorTimer, trap.VectorKeyboard)
	if err := k.Trap.EnableInterrupts(); err != nil {
		return nil, err
	}
	k.Log.Ok("trap plane initialized")

	targetHz := cfg.TargetHz
	if targetHz == 0 {
		targetHz = timer.DefaultTargetHz
	}
	k.Timer = timer.New(targetHz, func() {
		if proc, ok := k.Sched.Schedule(); ok {
			_ = proc
		}
	})
	k.Trap.RegisterHandler(trap.VectorTimer, func(trap.Frame) {
		k.Timer.Tick()
		k.Trap.SendEOI()
	})
	k.Log.Ok("timer initialized")

	mgr, err := memory.NewManager(cfg.MemoryMap)
	if err != nil {
		return nil, err
	}
	k.Memory = mgr
	k.Log.Ok("memory management initialized")
	k.Log.Ok("heap allocator initialized")

	k.Sched = sched.NewManager()
	k.Log.Ok("process manager initialized")

	k.VFS = vfs.New()
	k.Log.Ok("filesystem initialized")

	k.Keyboard = keyboard.New()
	k.Trap.RegisterHandler(trap.VectorKeyboard, func(f trap.Frame) {
		k.Trap.SendEOI()
	})
	k.Log.Ok("drivers initialized")

	k.Syscalls = &syscall.Dispatcher{
		Console:   k.Console,
		Keyboard:  k.Keyboard,
		FS:        k.VFS,
		Memory:    k.Memory,
		Processes: k.Sched,
		Sink:      k.Log,
	}
	k.Log.Ok("syscall handler initialized")

	k.Console.Printf("\nKernel initialization complete!\n")
	return k, nil
}

// RunDemo spawns two demonstration processes, each printing 5 lines, and
// drives them to completion through the scheduler's bookkeeping.
func (k *Kernel) RunDemo() {
	sched.RunProcesses(k.Sched, []sched.ProcessFunc{
		func() { k.testProcess("Process 1") },
		func() { k.testProcess("Process 2") },
	})
}

func (k *Kernel) testProcess(name string) {
	for i := 0; i < 5; i++ {
		k.Console.Printf("%s: iteration %d\n", name, i)
	}
}

// RunDrivers starts the timer-tick goroutine and, when keys is non-nil, a
// keyboard-poll goroutine under one error group so both share a single
// cancellation contract. The keyboard goroutine reads one byte at a time
// from keys, encodes it to a scancode, and feeds it through
// Keyboard.HandleInterrupt before dispatching VectorKeyboard so the
// registered handler's EOI bookkeeping still runs. Ctrl-C (byte 3) ends
// the session cleanly by cancelling ctx; the resulting context.Canceled
// from the timer goroutine is swallowed so a clean Ctrl-C exit returns a
// nil error. A deadline set on the passed-in ctx still surfaces as
// context.DeadlineExceeded.
func (k *Kernel) RunDrivers(ctx context.Context, keys io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	period := time.Second / time.Duration(k.Timer.TargetHz())

	g.Go(func() error {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				k.Trap.Dispatch(trap.VectorTimer, trap.Frame{})
			}
		}
	})

	if keys != nil {
		g.Go(func() error {
			buf := make([]byte, 1)
			for {
				n, err := keys.Read(buf)
				if err != nil {
					return err
				}
				if n == 0 {
					continue
				}
				if buf[0] == 3 { // Ctrl-C
					cancel()
					return nil
				}
				if code, ok := keyboard.EncodeASCII(buf[0]); ok {
					k.Keyboard.HandleInterrupt(code)
				}
				k.Trap.Dispatch(trap.VectorKeyboard, trap.Frame{})
			}
		})
	}

	if err := g.Wait(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
