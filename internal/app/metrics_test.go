package app

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	s := NewMetrics().Snapshot()
	if s.RenderCount != 0 {
		t.Errorf("expected 0 renders, got %d", s.RenderCount)
	}
	if s.MinRenderNs != 0 {
		t.Errorf("expected 0 min render time (sentinel handled), got %d", s.MinRenderNs)
	}
	if s.AvgRender() != 0 {
		t.Errorf("expected 0 average, got %v", s.AvgRender())
	}
}

func TestMetrics_RecordRender(t *testing.T) {
	m := NewMetrics()

	m.RecordRender(10 * time.Millisecond)
	m.RecordRender(20 * time.Millisecond)
	m.RecordRender(6 * time.Millisecond)

	s := m.Snapshot()
	if s.RenderCount != 3 {
		t.Errorf("expected 3 renders, got %d", s.RenderCount)
	}
	if s.MinRenderNs != int64(6*time.Millisecond) {
		t.Errorf("expected min 6ms, got %d ns", s.MinRenderNs)
	}
	if s.MaxRenderNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", s.MaxRenderNs)
	}
	if s.LastRenderNs != int64(6*time.Millisecond) {
		t.Errorf("expected last 6ms, got %d ns", s.LastRenderNs)
	}
	if s.AvgRender() != 12*time.Millisecond {
		t.Errorf("expected avg 12ms, got %v", s.AvgRender())
	}
}

func TestMetrics_FailureRate(t *testing.T) {
	tests := []struct {
		name     string
		renders  int
		failures int
		want     float64
	}{
		{"empty", 0, 0, 0},
		{"no failures", 4, 0, 0},
		{"quarter", 3, 1, 25},
		{"all failed", 0, 2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetrics()
			for i := 0; i < tt.renders; i++ {
				m.RecordRender(time.Millisecond)
			}
			for i := 0; i < tt.failures; i++ {
				m.RecordRenderFailure()
			}
			if got := m.Snapshot().FailureRate(); got != tt.want {
				t.Errorf("FailureRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.RecordCommand()
	m.RecordCommand()
	m.RecordUndo()
	m.RecordEvent()
	m.RecordError()
	m.RecordLoopFrame()

	s := m.Snapshot()
	if s.CommandCount != 2 || s.UndoCount != 1 || s.EventCount != 1 || s.ErrorCount != 1 || s.LoopFrames != 1 {
		t.Errorf("unexpected counters: %+v", s)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordRender(5 * time.Millisecond)
	m.RecordRenderFailure()
	m.RecordCommand()
	m.Reset()

	s := m.Snapshot()
	if s.RenderCount != 0 || s.RenderFailures != 0 || s.CommandCount != 0 || s.MinRenderNs != 0 {
		t.Errorf("expected zeroed metrics, got %+v", s)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordRender(d)
				m.RecordEvent()
			}
		}(time.Duration(i+1) * time.Millisecond)
	}
	wg.Wait()

	s := m.Snapshot()
	if s.RenderCount != 800 || s.EventCount != 800 {
		t.Errorf("lost updates: %+v", s)
	}
	if s.MinRenderNs != int64(time.Millisecond) || s.MaxRenderNs != int64(8*time.Millisecond) {
		t.Errorf("min/max = %d/%d", s.MinRenderNs, s.MaxRenderNs)
	}
}
