package searcher

import (
	"sync"
	"sync/atomic"
	"time"
)

// Monitor is shared by every branch of one search. It carries the cancellation flag the search
// polls at each recursion step, the count of evaluated leaves and a slot for a result. A Monitor
// is used for one search; Reset prepares it for another.
type Monitor struct {
	disabled atomic.Bool
	nodes    atomic.Int64

	mu      sync.Mutex
	timer   *time.Timer
	result  any
	onLevel func(level int, nodes int64)
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) Enabled() bool {
	return !m.disabled.Load()
}

func (m *Monitor) Disabled() bool {
	return m.disabled.Load()
}

func (m *Monitor) Enable() {
	m.disabled.Store(false)
}

func (m *Monitor) Disable() {
	m.disabled.Store(true)
}

// DisableLater disables the monitor once d has elapsed. A later call replaces the pending one.
func (m *Monitor) DisableLater(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(d, m.Disable)
}

// Stop cancels a pending DisableLater.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) Increment() {
	m.nodes.Add(1)
}

func (m *Monitor) NodeCount() int64 {
	return m.nodes.Load()
}

func (m *Monitor) SetResult(result any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

func (m *Monitor) Result() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// OnLevel registers a hook that breadth-first search calls after each completed level.
func (m *Monitor) OnLevel(hook func(level int, nodes int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLevel = hook
}

func (m *Monitor) levelDone(level int) {
	m.mu.Lock()
	hook := m.onLevel
	m.mu.Unlock()
	if hook != nil {
		hook(level, m.NodeCount())
	}
}

// Reset cancels any pending DisableLater, enables the monitor and clears the counter and the
// result. The level hook is kept.
func (m *Monitor) Reset() {
	m.Stop()
	m.mu.Lock()
	m.result = nil
	m.mu.Unlock()
	m.nodes.Store(0)
	m.Enable()
}
