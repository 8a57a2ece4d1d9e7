package sched

import "sync"

// Switch is the boundary behind which real context save/restore would
// happen: on real hardware this is hand-written assembly that stores the
// outgoing 16 GPRs + rip + rflags at fixed offsets and loads the incoming
// ones (see the Context field order). Hosted Go has no portable way to
// swap a CPU's live register file, so this reproduces only the
// bookkeeping side: copying the struct contents between slots. Actual
// process interleaving for tests is driven by RunProcesses instead, which
// runs real goroutines alongside Manager.Schedule's bookkeeping.
func Switch(out, in *Context) {
	*out, *in = *in, *out
}

// ProcessFunc is a process's entry body, run on its own goroutine by
// RunProcesses.
type ProcessFunc func()

// Finish marks pid Terminated directly, bypassing the current-process
// slot; used by RunProcesses once a process's goroutine has returned.
func (m *Manager) Finish(pid uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.processes[pid]; ok {
		p.State = Terminated
	}
}

// allTerminated reports whether every spawned process has reached
// Terminated.
func (m *Manager) allTerminated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.processes {
		if p.State != Terminated {
			return false
		}
	}
	return true
}

// RunProcesses spawns one goroutine per entry, each wrapped in a Process
// so Manager tracks it, and drives Manager.Schedule alongside their real
// execution until every process has reached Terminated. Schedule is called
// in a loop until then; no upper bound on the number of ticks is enforced.
func RunProcesses(m *Manager, entries []ProcessFunc) {
	var wg sync.WaitGroup
	pids := make([]uint64, len(entries))

	for i, fn := range entries {
		p := NewProcess(0)
		pid := m.Spawn(p)
		pids[i] = pid

		wg.Add(1)
		fn := fn
		go func() {
			defer wg.Done()
			fn()
			m.Finish(pid)
		}()
	}

	for !m.allTerminated() {
		m.Schedule()
	}

	wg.Wait()
}
