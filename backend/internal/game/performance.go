package game

import (
	"sort"
	"sync"
	"time"
)

// durationWindow is a fixed-size ring of the most recent samples
type durationWindow struct {
	samples []time.Duration
	next    int
	full    bool
}

func (w *durationWindow) add(d time.Duration) {
	w.samples[w.next] = d
	w.next = (w.next + 1) % len(w.samples)
	if w.next == 0 {
		w.full = true
	}
}

func (w *durationWindow) mean() time.Duration {
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range w.samples[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}

// SystemMetrics is a snapshot of one system's timings
type SystemMetrics struct {
	Name        string
	Last        time.Duration
	Average     time.Duration
	Max         time.Duration
	Runs        uint64
	SlowRuns    uint64
	Errors      uint64
	LastFailure time.Time
}

type systemRecord struct {
	metrics SystemMetrics
	window  durationWindow
}

// PerformanceMonitor keeps per-system timings over a sliding window.
// A run longer than slowThreshold counts as slow.
type PerformanceMonitor struct {
	records       map[string]*systemRecord
	mutex         sync.RWMutex
	windowSize    int
	slowThreshold time.Duration
}

func NewPerformanceMonitor(windowSize int, slowThreshold time.Duration) *PerformanceMonitor {
	if windowSize <= 0 {
		windowSize = 1
	}
	return &PerformanceMonitor{
		records:       make(map[string]*systemRecord),
		windowSize:    windowSize,
		slowThreshold: slowThreshold,
	}
}

func (pm *PerformanceMonitor) initSystemMetrics(name string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.records[name] = &systemRecord{
		metrics: SystemMetrics{Name: name},
		window:  durationWindow{samples: make([]time.Duration, pm.windowSize)},
	}
}

func (pm *PerformanceMonitor) recordExecution(name string, d time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	rec, ok := pm.records[name]
	if !ok {
		return
	}
	m := &rec.metrics
	m.Last = d
	m.Runs++
	if d > m.Max {
		m.Max = d
	}
	if pm.slowThreshold > 0 && d > pm.slowThreshold {
		m.SlowRuns++
	}
	rec.window.add(d)
	m.Average = rec.window.mean()
}

func (pm *PerformanceMonitor) recordError(name string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if rec, ok := pm.records[name]; ok {
		rec.metrics.Errors++
		rec.metrics.LastFailure = time.Now()
	}
}

// Metrics returns a copy of one system's metrics
func (pm *PerformanceMonitor) Metrics(name string) (SystemMetrics, bool) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	rec, ok := pm.records[name]
	if !ok {
		return SystemMetrics{}, false
	}
	return rec.metrics, true
}

// Slowest returns up to n systems ordered by average time, slowest first
func (pm *PerformanceMonitor) Slowest(n int) []SystemMetrics {
	pm.mutex.RLock()
	out := make([]SystemMetrics, 0, len(pm.records))
	for _, rec := range pm.records {
		out = append(out, rec.metrics)
	}
	pm.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// GetSystemsStats is the per-system part of Ticker.GetStats
func (pm *PerformanceMonitor) GetSystemsStats() map[string]interface{} {
	stats := make(map[string]interface{})
	for _, m := range pm.Slowest(-1) {
		stats[m.Name] = map[string]interface{}{
			"last":      m.Last,
			"average":   m.Average,
			"max":       m.Max,
			"runs":      m.Runs,
			"slow_runs": m.SlowRuns,
			"errors":    m.Errors,
		}
	}
	return stats
}
