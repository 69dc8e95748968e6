package player

import (
	"sync/atomic"
	"time"
)

type Stats struct {
	Requests  int64
	TotalTime time.Duration
	Positions int64
}

// PerformanceRatio is the number of positions searched per millisecond.
func (s Stats) PerformanceRatio() float64 {
	ms := float64(s.TotalTime) / float64(time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return float64(s.Positions) / ms
}

func (s Stats) Add(other Stats) Stats {
	return Stats{
		Requests:  s.Requests + other.Requests,
		TotalTime: s.TotalTime + other.TotalTime,
		Positions: s.Positions + other.Positions,
	}
}

type tracker interface {
	record(took time.Duration, positions int64)
	stats() Stats
	reset()
}

type statsTracker struct {
	requests  atomic.Int64
	nanos     atomic.Int64
	positions atomic.Int64
}

func newTracker() tracker {
	return &statsTracker{}
}

func (t *statsTracker) record(took time.Duration, positions int64) {
	t.requests.Add(1)
	t.nanos.Add(int64(took))
	t.positions.Add(positions)
}

func (t *statsTracker) stats() Stats {
	return Stats{
		Requests:  t.requests.Load(),
		TotalTime: time.Duration(t.nanos.Load()),
		Positions: t.positions.Load(),
	}
}

func (t *statsTracker) reset() {
	t.requests.Store(0)
	t.nanos.Store(0)
	t.positions.Store(0)
}

type noTracker struct{}

func newNoTracker() tracker {
	return &noTracker{}
}

func (t *noTracker) record(time.Duration, int64) {}
func (t *noTracker) stats() Stats                 { return Stats{} }
func (t *noTracker) reset()                       {}
