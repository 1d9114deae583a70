package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts session events.
type Metrics struct {
	opened       atomic.Uint64
	saved        atomic.Uint64
	saveFailures atomic.Uint64
	closed       atomic.Uint64
	discarded    atomic.Uint64
	cancelled    atomic.Uint64
	staleMarks   atomic.Uint64

	saveTotalNs atomic.Int64
	saveMaxNs   atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordSave records one save attempt and its duration.
func (m *Metrics) RecordSave(d time.Duration, err error) {
	if err != nil {
		m.saveFailures.Add(1)
		return
	}
	ns := d.Nanoseconds()
	m.saved.Add(1)
	m.saveTotalNs.Add(ns)
	for {
		old := m.saveMaxNs.Load()
		if ns <= old || m.saveMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (m *Metrics) recordOpen()      { m.opened.Add(1) }
func (m *Metrics) recordClose()     { m.closed.Add(1) }
func (m *Metrics) recordDiscard()   { m.discarded.Add(1) }
func (m *Metrics) recordCancel()    { m.cancelled.Add(1) }
func (m *Metrics) recordStaleMark() { m.staleMarks.Add(1) }

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	saved := m.saved.Load()
	var avg time.Duration
	if saved > 0 {
		avg = time.Duration(m.saveTotalNs.Load() / int64(saved))
	}
	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		Opened:       m.opened.Load(),
		Saved:        saved,
		SaveFailures: m.saveFailures.Load(),
		Closed:       m.closed.Load(),
		Discarded:    m.discarded.Load(),
		Cancelled:    m.cancelled.Load(),
		StaleMarks:   m.staleMarks.Load(),
		AvgSave:      avg,
		MaxSave:      time.Duration(m.saveMaxNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	Opened       uint64
	Saved        uint64
	SaveFailures uint64
	// Closed counts every removal, discarded ones included.
	Closed     uint64
	Discarded  uint64
	Cancelled  uint64
	StaleMarks uint64
	AvgSave    time.Duration
	MaxSave    time.Duration
}
