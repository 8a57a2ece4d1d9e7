package kernel

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"mazkernel/internal/memory"
	"mazkernel/internal/syscall"
)

func testConfig() Config {
	return Config{
		MemoryMap: memory.MemoryMap{{Start: 0x100000, End: 0x900000, Type: memory.Usable}},
	}
}

func TestBootstrapWiresAllSubsystems(t *testing.T) {
	k, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if k.Console == nil || k.Trap == nil || k.Memory == nil || k.Sched == nil ||
		k.VFS == nil || k.Keyboard == nil || k.Timer == nil || k.Syscalls == nil {
		t.Fatal("expected every subsystem to be wired after Bootstrap")
	}

	if halted, reason := k.Trap.Halted(); halted {
		t.Errorf("trap plane halted unexpectedly: %s", reason)
	}
}

func TestBootstrapSeedsFilesystem(t *testing.T) {
	k, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if _, err := k.VFS.Open("/hello.txt", 0, 0); err != nil {
		t.Errorf("expected seeded /hello.txt to exist: %v", err)
	}
}

// TestRunDemoTicksSchedulerEndToEnd confirms the demo process run advances
// the scheduler's tick counter through the fully wired kernel.
func TestRunDemoTicksSchedulerEndToEnd(t *testing.T) {
	k, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	k.RunDemo()

	if k.Sched.Ticks() == 0 {
		t.Error("expected the scheduler to have ticked during the demo")
	}
}

// TestWriteSyscallThroughWiredDispatcher confirms a write syscall issued
// through the fully wired dispatcher reaches the console and advances its
// cursor.
func TestWriteSyscallThroughWiredDispatcher(t *testing.T) {
	k, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	ret := k.Syscalls.Dispatch(syscall.SysWrite, syscall.Args{RDI: 1, RDX: 3}, []byte("ok\n"))
	if ret != 3 {
		t.Errorf("write syscall returned %d, want 3", ret)
	}

	row, col := k.Console.Cursor()
	if row == 0 && col == 0 {
		t.Error("expected cursor to have advanced after writing to the console")
	}
}

// TestRunDriversFeedsKeyboardAndEndsOnCtrlC confirms RunDrivers decodes
// bytes from its keys source into the keyboard FIFO and returns cleanly
// once Ctrl-C is read.
func TestRunDriversFeedsKeyboardAndEndsOnCtrlC(t *testing.T) {
	k, err := Bootstrap(testConfig())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	keys := bytes.NewReader([]byte("ab\x03"))

	done := make(chan error, 1)
	go func() { done <- k.RunDrivers(context.Background(), keys) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunDrivers returned %v, want nil on Ctrl-C", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunDrivers did not return after Ctrl-C")
	}

	buf := make([]byte, 2)
	if n := k.Keyboard.ReadBytes(buf); n != 2 || string(buf) != "ab" {
		t.Errorf("keyboard FIFO holds %q (n=%d), want \"ab\"", buf[:n], n)
	}
}

// TestRunDriversTicksTimerUntilCancelled confirms the timer goroutine
// keeps advancing Timer.Ticks until the context is cancelled.
func TestRunDriversTicksTimerUntilCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.TargetHz = 10000 // 100us period, so several ticks fit in the test's deadline
	k, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = k.RunDrivers(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunDrivers returned %v, want context.DeadlineExceeded", err)
	}
	if k.Timer.Ticks() == 0 {
		t.Error("expected the timer to have ticked before the context deadline")
	}
}
