package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks command throughput and latency.
type Metrics struct {
	// Per-operation counts and cumulative latency
	executeCount   atomic.Uint64
	executeTotalNs atomic.Int64
	undoCount      atomic.Uint64
	undoTotalNs    atomic.Int64
	redoCount      atomic.Uint64
	redoTotalNs    atomic.Int64

	// Failures
	failureCount  atomic.Uint64
	auditFailures atomic.Uint64

	// Latency extremes across all operations
	opMinNs atomic.Int64
	opMaxNs atomic.Int64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first operation is smaller
	m.opMinNs.Store(1<<63 - 1)
	return m
}

// RecordExecute records one execute call.
func (m *Metrics) RecordExecute(duration time.Duration, ok bool) {
	m.executeCount.Add(1)
	m.executeTotalNs.Add(duration.Nanoseconds())
	m.recordOp(duration, ok)
}

// RecordUndo records one undo call.
func (m *Metrics) RecordUndo(duration time.Duration, ok bool) {
	m.undoCount.Add(1)
	m.undoTotalNs.Add(duration.Nanoseconds())
	m.recordOp(duration, ok)
}

// RecordRedo records one redo call.
func (m *Metrics) RecordRedo(duration time.Duration, ok bool) {
	m.redoCount.Add(1)
	m.redoTotalNs.Add(duration.Nanoseconds())
	m.recordOp(duration, ok)
}

// RecordAuditFailure records a failed audit append.
func (m *Metrics) RecordAuditFailure() {
	m.auditFailures.Add(1)
}

func (m *Metrics) recordOp(duration time.Duration, ok bool) {
	if !ok {
		m.failureCount.Add(1)
	}
	ns := duration.Nanoseconds()

	// Update min (atomic compare-and-swap loop)
	for {
		old := m.opMinNs.Load()
		if ns >= old {
			break
		}
		if m.opMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.opMaxNs.Load()
		if ns <= old {
			break
		}
		if m.opMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	executeCount := m.executeCount.Load()
	undoCount := m.undoCount.Load()
	redoCount := m.redoCount.Load()

	var avgExecuteNs int64
	if executeCount > 0 {
		avgExecuteNs = m.executeTotalNs.Load() / int64(executeCount)
	}

	var avgUndoNs int64
	if undoCount > 0 {
		avgUndoNs = m.undoTotalNs.Load() / int64(undoCount)
	}

	var avgRedoNs int64
	if redoCount > 0 {
		avgRedoNs = m.redoTotalNs.Load() / int64(redoCount)
	}

	minOpNs := m.opMinNs.Load()
	if minOpNs == 1<<63-1 {
		minOpNs = 0
	}

	return MetricsSnapshot{
		Uptime:        time.Since(m.startTime),
		ExecuteCount:  executeCount,
		AvgExecuteNs:  avgExecuteNs,
		UndoCount:     undoCount,
		AvgUndoNs:     avgUndoNs,
		RedoCount:     redoCount,
		AvgRedoNs:     avgRedoNs,
		FailureCount:  m.failureCount.Load(),
		AuditFailures: m.auditFailures.Load(),
		MinOpNs:       minOpNs,
		MaxOpNs:       m.opMaxNs.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.executeCount.Store(0)
	m.executeTotalNs.Store(0)
	m.undoCount.Store(0)
	m.undoTotalNs.Store(0)
	m.redoCount.Store(0)
	m.redoTotalNs.Store(0)
	m.failureCount.Store(0)
	m.auditFailures.Store(0)
	m.opMinNs.Store(1<<63 - 1)
	m.opMaxNs.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	ExecuteCount  uint64
	AvgExecuteNs  int64
	UndoCount     uint64
	AvgUndoNs     int64
	RedoCount     uint64
	AvgRedoNs     int64
	FailureCount  uint64
	AuditFailures uint64
	MinOpNs       int64
	MaxOpNs       int64
}

// TotalOps returns the number of recorded operations.
func (s MetricsSnapshot) TotalOps() uint64 {
	return s.ExecuteCount + s.UndoCount + s.RedoCount
}

// FailureRate returns the percentage of operations that failed.
func (s MetricsSnapshot) FailureRate() float64 {
	total := s.TotalOps()
	if total == 0 {
		return 0
	}
	return float64(s.FailureCount) / float64(total) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed().Nanoseconds()) / 1e6
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}
