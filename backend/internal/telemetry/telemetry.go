package telemetry

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"
)

// Status of a build event
type Status string

const (
	StatusPassStarted  Status = "pass_started"
	StatusPassFinished Status = "pass_finished"
	StatusStarted      Status = "started"
	StatusBuilt        Status = "built"
	StatusUpdated      Status = "updated"
	StatusDestroyed    Status = "destroyed"
	StatusFailed       Status = "failed"
	StatusSkipped      Status = "skipped"
	StatusStageFailed  Status = "stage_failed"
	StatusAssetMissing Status = "asset_missing"
	StatusWarning      Status = "warning"
)

// BuildEvent is one entry of the build history
type BuildEvent struct {
	Timestamp int64         `json:"timestamp"` // milliseconds
	Body      string        `json:"body,omitempty"`
	Stage     string        `json:"stage,omitempty"`
	Pass      int           `json:"pass"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Listener receives every recorded event. It is called outside the manager's lock.
type Listener func(BuildEvent)

// Manager keeps the most recent build events and per-status counters
type Manager struct {
	enabled    bool
	data       []BuildEvent
	mutex      sync.RWMutex
	maxEntries int

	counters  map[Status]int
	listeners []Listener

	logger *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		enabled:    true,
		data:       make([]BuildEvent, 0),
		maxEntries: 200,
		counters:   make(map[Status]int),
		logger:     logger,
	}
}

// Record stores the event, stamping it when Timestamp is zero
func (tm *Manager) Record(ev BuildEvent) {
	tm.mutex.Lock()
	if !tm.enabled {
		tm.mutex.Unlock()
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	tm.data = append(tm.data, ev)
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[1:]
	}
	tm.counters[ev.Status]++

	listeners := make([]Listener, len(tm.listeners))
	copy(listeners, tm.listeners)
	tm.mutex.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// Subscribe registers a listener and returns a function removing it
func (tm *Manager) Subscribe(l Listener) func() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.listeners = append(tm.listeners, l)
	idx := len(tm.listeners) - 1
	removed := false
	return func() {
		tm.mutex.Lock()
		defer tm.mutex.Unlock()
		if removed {
			return
		}
		removed = true
		tm.listeners[idx] = func(BuildEvent) {}
	}
}

// Events returns a copy of the retained events, oldest first
func (tm *Manager) Events() []BuildEvent {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	out := make([]BuildEvent, len(tm.data))
	copy(out, tm.data)
	return out
}

// Count returns how many events with status were recorded since the last Clear
func (tm *Manager) Count(status Status) int {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return tm.counters[status]
}

// PrintSummary logs the counters
func (tm *Manager) PrintSummary() {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	statuses := make([]string, 0, len(tm.counters))
	for s := range tm.counters {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	tm.logger.Printf("[Telemetry] %d events retained", len(tm.data))
	for _, s := range statuses {
		tm.logger.Printf("[Telemetry] %s: %d", s, tm.counters[Status(s)])
	}
}

// GetTelemetryJSON returns the retained events as JSON
func (tm *Manager) GetTelemetryJSON() (string, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	jsonData, err := json.MarshalIndent(tm.data, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonData), nil
}

func (tm *Manager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	tm.logger.Printf("[Telemetry] enabled=%v", enabled)
}

func (tm *Manager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]BuildEvent, 0)
	tm.counters = make(map[Status]int)
}
