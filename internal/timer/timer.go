// Package timer implements the timer: PIT divisor programming, a
// monotonic tick counter, and the scheduler tick hook.
package timer

import (
	"sync/atomic"
	"time"
)

// PITFrequency is the legacy PIT's fixed input clock, in Hz.
const PITFrequency = 1_193_182

// DefaultTargetHz is the default tick rate (100 Hz = 10ms tick).
const DefaultTargetHz = 100

// TickHook is invoked once per hardware tick, inside the timer interrupt;
// it must not allocate or take long-held locks.
type TickHook func()

// Timer models the PIT: a programmed divisor, a monotonic tick counter, and
// the hook that drives the scheduler.
type Timer struct {
	targetHz uint64
	divisor  uint32
	ticks    atomic.Uint64
	eois     atomic.Uint64
	hook     TickHook
}

// New programs the timer for targetHz (divisor = PITFrequency/targetHz) and
// registers hook to be called on every tick. A targetHz of 0 selects
// DefaultTargetHz; targetHz must not exceed PITFrequency.
func New(targetHz uint64, hook TickHook) *Timer {
	if targetHz == 0 {
		targetHz = DefaultTargetHz
	}
	return &Timer{
		targetHz: targetHz,
		divisor:  uint32(PITFrequency / targetHz),
		hook:     hook,
	}
}

// Divisor returns the programmed PIT divisor.
func (t *Timer) Divisor() uint32 { return t.divisor }

// TargetHz returns the configured tick rate.
func (t *Timer) TargetHz() uint64 { return t.targetHz }

// Tick fires one hardware tick: atomically increments the tick counter,
// invokes the scheduler hook, and records an end-of-interrupt.
func (t *Timer) Tick() {
	t.ticks.Add(1)
	if t.hook != nil {
		t.hook()
	}
	t.eois.Add(1)
}

// Ticks returns the current tick count.
func (t *Timer) Ticks() uint64 {
	return t.ticks.Load()
}

// EOIs returns how many end-of-interrupt signals have been sent; used by
// tests to confirm every tick completes its handler.
func (t *Timer) EOIs() uint64 {
	return t.eois.Load()
}

// UptimeMS returns the elapsed time in milliseconds since the timer
// started ticking, derived from the tick count and the programmed rate.
func (t *Timer) UptimeMS() uint64 {
	return t.Ticks() * 1000 / t.targetHz
}

// SleepMS busy-waits until UptimeMS has advanced by at least ms,
// yielding briefly between checks in place of the freestanding hlt
// instruction. Only safe to call where interrupts (i.e. concurrent Tick
// calls) are enabled.
func (t *Timer) SleepMS(ms uint64) {
	target := t.UptimeMS() + ms
	for t.UptimeMS() < target {
		time.Sleep(time.Microsecond)
	}
}
