package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks render and bus activity for the running application.
type Metrics struct {
	renderCount    atomic.Uint64
	renderTotalNs  atomic.Int64
	renderMinNs    atomic.Int64
	renderMaxNs    atomic.Int64
	lastRenderNs   atomic.Int64
	renderFailures atomic.Uint64
	loopFrames     atomic.Uint64

	commandCount atomic.Uint64
	undoCount    atomic.Uint64
	eventCount   atomic.Uint64
	errorCount   atomic.Uint64

	startTime atomic.Int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Reset()
	return m
}

// RecordRender records a completed frame render.
func (m *Metrics) RecordRender(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.renderCount.Add(1)
	m.renderTotalNs.Add(ns)
	m.lastRenderNs.Store(ns)

	for {
		old := m.renderMinNs.Load()
		if ns >= old || m.renderMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.renderMaxNs.Load()
		if ns <= old || m.renderMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRenderFailure records a failed render.
func (m *Metrics) RecordRenderFailure() {
	m.renderFailures.Add(1)
}

// RecordLoopFrame records a frame pushed by the render loop.
func (m *Metrics) RecordLoopFrame() {
	m.loopFrames.Add(1)
}

// RecordCommand records an executed history command.
func (m *Metrics) RecordCommand() {
	m.commandCount.Add(1)
}

// RecordUndo records an undone command.
func (m *Metrics) RecordUndo() {
	m.undoCount.Add(1)
}

// RecordEvent records a published bus event.
func (m *Metrics) RecordEvent() {
	m.eventCount.Add(1)
}

// RecordError records a user-visible error.
func (m *Metrics) RecordError() {
	m.errorCount.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	renders := m.renderCount.Load()

	var avg int64
	if renders > 0 {
		avg = m.renderTotalNs.Load() / int64(renders)
	}
	minNs := m.renderMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(time.Unix(0, m.startTime.Load())),
		RenderCount:    renders,
		AvgRenderNs:    avg,
		MinRenderNs:    minNs,
		MaxRenderNs:    m.renderMaxNs.Load(),
		LastRenderNs:   m.lastRenderNs.Load(),
		RenderFailures: m.renderFailures.Load(),
		LoopFrames:     m.loopFrames.Load(),
		CommandCount:   m.commandCount.Load(),
		UndoCount:      m.undoCount.Load(),
		EventCount:     m.eventCount.Load(),
		ErrorCount:     m.errorCount.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.renderCount.Store(0)
	m.renderTotalNs.Store(0)
	m.renderMinNs.Store(1<<63 - 1)
	m.renderMaxNs.Store(0)
	m.lastRenderNs.Store(0)
	m.renderFailures.Store(0)
	m.loopFrames.Store(0)
	m.commandCount.Store(0)
	m.undoCount.Store(0)
	m.eventCount.Store(0)
	m.errorCount.Store(0)
	m.startTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	RenderCount    uint64
	AvgRenderNs    int64
	MinRenderNs    int64
	MaxRenderNs    int64
	LastRenderNs   int64
	RenderFailures uint64
	LoopFrames     uint64
	CommandCount   uint64
	UndoCount      uint64
	EventCount     uint64
	ErrorCount     uint64
}

// AvgRender returns the mean render time.
func (s MetricsSnapshot) AvgRender() time.Duration {
	return time.Duration(s.AvgRenderNs)
}

// FailureRate returns the percentage of renders that failed.
func (s MetricsSnapshot) FailureRate() float64 {
	total := s.RenderCount + s.RenderFailures
	if total == 0 {
		return 0
	}
	return float64(s.RenderFailures) / float64(total) * 100
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
