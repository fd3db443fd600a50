package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// TickSystem is anything updated once per frame
type TickSystem interface {
	Update(deltaTime time.Duration) error
	GetName() string
	GetPriority() int // lower runs first
}

// Ticker drives the single-threaded frame loop: deferred tasks first, then every system
// in priority order.
type Ticker struct {
	targetFPS    int
	tickDuration time.Duration
	maxTickTime  time.Duration

	isRunning    bool
	frameCount   uint64
	startTime    time.Time
	lastTickTime time.Time

	systems      []TickSystem
	systemsMutex sync.RWMutex

	deferred    *DeferredQueue
	perfMonitor *PerformanceMonitor

	// frameMutex keeps Step and the background loop from overlapping
	frameMutex sync.Mutex
	// metricsMutex guards frameCount and the tick metrics; systems read them mid-frame
	metricsMutex sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	averageTickTime time.Duration
	maxObservedTick time.Duration
	skippedFrames   uint64

	logger           *log.Logger
	warningThreshold time.Duration
}

// NewTicker creates a ticker running at targetFPS frames per second (60 when not positive)
func NewTicker(targetFPS int, logger *log.Logger) *Ticker {
	if targetFPS <= 0 {
		targetFPS = 60
	}
	if logger == nil {
		logger = log.Default()
	}

	tickDuration := time.Second / time.Duration(targetFPS)
	ctx, cancel := context.WithCancel(context.Background())

	return &Ticker{
		targetFPS:        targetFPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2,
		systems:          make([]TickSystem, 0),
		deferred:         NewDeferredQueue(logger),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4),
		ctx:              ctx,
		cancel:           cancel,
		logger:           logger,
		warningThreshold: tickDuration / 2,
	}
}

// Deferred is the frame-delayed queue drained at the start of every frame
func (t *Ticker) Deferred() *DeferredQueue {
	return t.deferred
}

func (t *Ticker) Start() error {
	if t.isRunning {
		return nil
	}

	t.isRunning = true
	t.startTime = time.Now()
	t.lastTickTime = t.startTime

	t.logger.Printf("[Ticker] Starting frame loop: %d FPS (frame every %v)", t.targetFPS, t.tickDuration)

	go t.loop()
	return nil
}

func (t *Ticker) Stop() {
	if !t.isRunning {
		return
	}

	t.logger.Printf("[Ticker] Stopping frame loop (frames: %d)", t.frameCount)

	t.cancel()
	t.isRunning = false
}

// RegisterSystem adds a system; equal priorities keep registration order
func (t *Ticker) RegisterSystem(system TickSystem) {
	t.systemsMutex.Lock()
	defer t.systemsMutex.Unlock()

	t.systems = append(t.systems, system)

	for i := len(t.systems) - 1; i > 0; i-- {
		if t.systems[i].GetPriority() < t.systems[i-1].GetPriority() {
			t.systems[i], t.systems[i-1] = t.systems[i-1], t.systems[i]
		} else {
			break
		}
	}

	t.perfMonitor.initSystemMetrics(system.GetName())

	t.logger.Printf("[Ticker] Registered system: %s (priority: %d)", system.GetName(), system.GetPriority())
}

func (t *Ticker) loop() {
	ticker := time.NewTicker(t.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case tickTime := <-ticker.C:
			t.executeTick(tickTime)
		}
	}
}

// Step runs exactly one frame with the nominal frame duration. Used headless and in tests.
func (t *Ticker) Step() {
	if t.lastTickTime.IsZero() {
		t.startTime = time.Now()
		t.lastTickTime = t.startTime
	}
	t.executeTick(t.lastTickTime.Add(t.tickDuration))
}

func (t *Ticker) executeTick(tickTime time.Time) {
	t.frameMutex.Lock()
	defer t.frameMutex.Unlock()

	tickStart := time.Now()
	deltaTime := tickTime.Sub(t.lastTickTime)

	t.metricsMutex.Lock()
	if deltaTime > t.tickDuration*2 {
		t.logger.Printf("[Ticker] WARNING: large gap between frames: %v (expected: %v)", deltaTime, t.tickDuration)
		t.skippedFrames++
	}
	t.frameCount++
	t.metricsMutex.Unlock()
	t.lastTickTime = tickTime

	t.deferred.Drain()
	t.executeAllSystems(deltaTime)

	totalTickTime := time.Since(tickStart)
	t.updateTickMetrics(totalTickTime)
	t.checkPerformance(totalTickTime)
}

func (t *Ticker) executeAllSystems(deltaTime time.Duration) {
	t.systemsMutex.RLock()
	systems := make([]TickSystem, len(t.systems))
	copy(systems, t.systems)
	t.systemsMutex.RUnlock()

	for _, system := range systems {
		t.executeSystem(system, deltaTime)
	}
}

func (t *Ticker) executeSystem(system TickSystem, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("[Ticker] ERROR: system %s panicked: %v", systemName, r)
			t.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(deltaTime)

	t.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		t.logger.Printf("[Ticker] ERROR: system %s: %v", systemName, err)
		t.perfMonitor.recordError(systemName)
	}
}

func (t *Ticker) Performance() *PerformanceMonitor {
	return t.perfMonitor
}

// FrameCount is the number of frames executed
func (t *Ticker) FrameCount() uint64 {
	t.metricsMutex.Lock()
	defer t.metricsMutex.Unlock()
	return t.frameCount
}

// GetStats is safe to call from a system during a frame
func (t *Ticker) GetStats() map[string]interface{} {
	t.metricsMutex.Lock()
	defer t.metricsMutex.Unlock()

	actualFPS := 0.0
	if uptime := time.Since(t.startTime); !t.startTime.IsZero() && uptime > 0 {
		actualFPS = float64(t.frameCount) / uptime.Seconds()
	}

	t.systemsMutex.RLock()
	systemsCount := len(t.systems)
	t.systemsMutex.RUnlock()

	return map[string]interface{}{
		"target_fps":        t.targetFPS,
		"actual_fps":        actualFPS,
		"frame_count":       t.frameCount,
		"average_tick_time": t.averageTickTime,
		"max_observed_tick": t.maxObservedTick,
		"skipped_frames":    t.skippedFrames,
		"is_running":        t.isRunning,
		"systems_count":     systemsCount,
		"deferred_pending":  t.deferred.Pending(),
		"systems":           t.perfMonitor.GetSystemsStats(),
	}
}

func (t *Ticker) updateTickMetrics(tickTime time.Duration) {
	t.metricsMutex.Lock()
	defer t.metricsMutex.Unlock()

	if tickTime > t.maxObservedTick {
		t.maxObservedTick = tickTime
	}

	if t.averageTickTime == 0 {
		t.averageTickTime = tickTime
	} else {
		t.averageTickTime = (t.averageTickTime*9 + tickTime) / 10
	}
}

func (t *Ticker) checkPerformance(tickTime time.Duration) {
	if tickTime > t.maxTickTime {
		t.logger.Printf("[Ticker] WARNING: frame exceeded max time: %v > %v (target: %v)",
			tickTime, t.maxTickTime, t.tickDuration)
	} else if tickTime > t.warningThreshold {
		t.logger.Printf("[Ticker] WARNING: slow frame: %v (target: %v)", tickTime, t.tickDuration)
	}
}
