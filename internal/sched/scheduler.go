package sched

import "sync"

// Manager owns the process table and ready queue, and implements the
// four-step schedule algorithm.
type Manager struct {
	mu sync.Mutex

	processes  map[uint64]*Process
	readyQueue []uint64
	currentPID uint64
	hasCurrent bool
	ticks      uint64
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{processes: make(map[uint64]*Process)}
}

// Spawn adds process to the table and enqueues it as Ready, returning its
// pid.
func (m *Manager) Spawn(p *Process) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processes[p.PID] = p
	m.readyQueue = append(m.readyQueue, p.PID)
	return p.PID
}

// CurrentPID returns the running process's pid, satisfying
// internal/syscall's Processes interface for getpid.
func (m *Manager) CurrentPID() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasCurrent {
		return 0, false
	}
	return m.currentPID, true
}

// ExitCurrent terminates the running process, satisfying
// internal/syscall's Processes interface for exit. The status code isn't
// stored anywhere; there is no wait()/exit-status query path.
func (m *Manager) ExitCurrent(status int32) {
	m.TerminateCurrent()
}

// Current returns the currently running process, if any.
func (m *Manager) Current() (*Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasCurrent {
		return nil, false
	}
	return m.processes[m.currentPID], true
}

// Schedule runs the four-step round-robin algorithm:
//  1. bump the scheduler tick count;
//  2. if a process is Running, demote it to Ready and re-enqueue it;
//  3. pop candidates off the ready queue, skipping any that are no longer
//     Ready (a stale-enqueue guard: a process can be enqueued once, then
//     blocked or terminated before its turn comes up);
//  4. promote the first still-Ready candidate to Running and return it.
//
// Returns (nil, false) if no process is runnable.
func (m *Manager) Schedule() (*Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticks++

	if m.hasCurrent {
		if cur := m.processes[m.currentPID]; cur != nil && cur.State == Running {
			cur.State = Ready
			m.readyQueue = append(m.readyQueue, cur.PID)
		}
	}
	m.hasCurrent = false

	for len(m.readyQueue) > 0 {
		pid := m.readyQueue[0]
		m.readyQueue = m.readyQueue[1:]

		p, ok := m.processes[pid]
		if !ok || p.State != Ready {
			continue
		}

		p.State = Running
		m.currentPID = pid
		m.hasCurrent = true
		return p, true
	}

	return nil, false
}

// Ticks returns the number of Schedule invocations so far.
func (m *Manager) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// TerminateCurrent marks the running process Terminated and clears the
// current slot, per ProcessManager::terminate_current.
func (m *Manager) TerminateCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasCurrent {
		if p := m.processes[m.currentPID]; p != nil {
			p.State = Terminated
		}
		m.hasCurrent = false
	}
}

// BlockCurrent marks the running process Blocked and clears the current
// slot, per ProcessManager::block_current.
func (m *Manager) BlockCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasCurrent {
		if p := m.processes[m.currentPID]; p != nil {
			p.State = Blocked
		}
		m.hasCurrent = false
	}
}

// Unblock moves a Blocked process back to Ready and re-enqueues it, per
// ProcessManager::unblock_process.
func (m *Manager) Unblock(pid uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.processes[pid]
	if !ok || p.State != Blocked {
		return
	}
	p.State = Ready
	m.readyQueue = append(m.readyQueue, pid)
}

// Get returns the process for pid, if it exists.
func (m *Manager) Get(pid uint64) (*Process, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[pid]
	return p, ok
}
