package game

import (
	"log"
	"time"
)

// BodyCounter reports how many bodies the world holds
type BodyCounter interface {
	Len() int
}

// StatsSystem periodically logs frame and world statistics
type StatsSystem struct {
	name     string
	priority int
	ticker   *Ticker
	bodies   BodyCounter
	logger   *log.Logger

	lastLog  time.Time
	interval time.Duration
	now      func() time.Time
}

// NewStatsSystem creates a stats system logging every interval (30s when zero)
func NewStatsSystem(ticker *Ticker, bodies BodyCounter, interval time.Duration, logger *log.Logger) *StatsSystem {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatsSystem{
		name:     "StatsSystem",
		priority: 200, // runs after everything else
		ticker:   ticker,
		bodies:   bodies,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Update logs the statistics once per interval
func (s *StatsSystem) Update(deltaTime time.Duration) error {
	now := s.now()
	if now.Sub(s.lastLog) < s.interval {
		return nil
	}
	s.lastLog = now

	stats := s.ticker.GetStats()
	count := 0
	if s.bodies != nil {
		count = s.bodies.Len()
	}

	actualFPS, _ := stats["actual_fps"].(float64)
	targetFPS, _ := stats["target_fps"].(int)
	s.logger.Printf("[Stats] FPS: %.1f/%d, bodies: %d, frames: %v, tick: %v, deferred: %v",
		actualFPS, targetFPS, count, stats["frame_count"], stats["average_tick_time"], stats["deferred_pending"])

	if targetFPS > 0 && actualFPS > 0 && actualFPS < float64(targetFPS)*0.9 {
		s.logger.Printf("[Stats] WARNING: FPS dropped to %.1f", actualFPS)
		if slowest := s.ticker.Performance().Slowest(1); len(slowest) == 1 {
			m := slowest[0]
			s.logger.Printf("[Stats] Slowest system: %s (avg %v, %d slow runs)", m.Name, m.Average, m.SlowRuns)
		}
	}
	return nil
}

func (s *StatsSystem) GetName() string {
	return s.name
}

func (s *StatsSystem) GetPriority() int {
	return s.priority
}
