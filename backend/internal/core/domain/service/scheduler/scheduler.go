// Package scheduler orders body construction across passes.
//
// A session takes every descriptor scheduled so far and processes it in passes. Each pass is
// sorted by build priority and processed one body at a time; bodies queued mid-pass with
// EnqueueAdditional form the next pass. The session ends when a pass queues nothing new.
package scheduler

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/core/port/in/bodyloading"
	"orrery/backend/internal/core/port/out/registry"
	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/world"
)

// DefaultRemovalDelay is the number of frames between a destroy request and the removal
const DefaultRemovalDelay = 2

// BodyBuilder constructs and updates bodies
type BodyBuilder interface {
	Generate(desc *entity.BodyDescriptor, pass int) (*world.Body, error)
	Update(desc *entity.BodyDescriptor, existing *world.Body, pass int) error
}

// Options configure a Scheduler
type Options struct {
	Builder  BodyBuilder
	Registry registry.ObjectRegistry
	Host     scene.Host
	Deferrer scene.Deferrer
	Recorder builder.Recorder
	Logger   *log.Logger
	// RemovalDelay in frames, DefaultRemovalDelay when zero
	RemovalDelay int
}

// Scheduler owns the body queues of the running world
type Scheduler struct {
	name     string
	priority int

	builder      BodyBuilder
	registry     registry.ObjectRegistry
	host         scene.Host
	deferrer     scene.Deferrer
	recorder     builder.Recorder
	logger       *log.Logger
	removalDelay int

	mu         sync.Mutex
	scheduled  []*entity.BodyDescriptor
	additional []*entity.BodyDescriptor

	pass       int
	sessions   int
	onComplete []func(passes int)
}

var _ bodyloading.LoadPort = (*Scheduler)(nil)

func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RemovalDelay <= 0 {
		opts.RemovalDelay = DefaultRemovalDelay
	}
	s := &Scheduler{
		name:         "Scheduler",
		priority:     10,
		builder:      opts.Builder,
		registry:     opts.Registry,
		host:         opts.Host,
		deferrer:     opts.Deferrer,
		recorder:     opts.Recorder,
		logger:       opts.Logger,
		removalDelay: opts.RemovalDelay,
	}
	return s
}

// ScheduleLoad enqueues a batch for the next session. Safe to call from any goroutine.
func (s *Scheduler) ScheduleLoad(descriptors ...*entity.BodyDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, descriptors...)
}

// EnqueueAdditional queues a body found while building another; it is built in the next pass
func (s *Scheduler) EnqueueAdditional(descriptor *entity.BodyDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.additional = append(s.additional, descriptor)
}

// OnSessionComplete registers fn to be called after every session with the number of passes it took
func (s *Scheduler) OnSessionComplete(fn func(passes int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
}

// RunSession processes everything scheduled so far and returns the number of passes run
func (s *Scheduler) RunSession() int {
	s.mu.Lock()
	queue := append(s.scheduled, s.additional...)
	s.scheduled = nil
	s.additional = nil
	s.mu.Unlock()

	if len(queue) == 0 {
		return 0
	}

	passes := 0
	for len(queue) > 0 {
		passes++
		s.runPass(queue)

		s.mu.Lock()
		queue = s.additional
		s.additional = nil
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.sessions++
	callbacks := append([]func(int){}, s.onComplete...)
	s.mu.Unlock()

	s.logger.Printf("[Scheduler] Session complete after %d passes", passes)
	for _, fn := range callbacks {
		fn(passes)
	}
	return passes
}

func (s *Scheduler) runPass(queue []*entity.BodyDescriptor) {
	s.pass++
	pass := s.pass
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[Scheduler] ERROR: Pass %d aborted: %v", pass, r)
			s.record(telemetry.BuildEvent{Pass: pass, Status: telemetry.StatusFailed, Message: fmt.Sprint(r)})
		}
	}()

	valid := queue[:0]
	for _, desc := range queue {
		if desc == nil || desc.Config == nil {
			s.logger.Printf("[Scheduler] WARNING: Descriptor without configuration skipped in pass %d", pass)
			s.record(telemetry.BuildEvent{Pass: pass, Status: telemetry.StatusSkipped, Message: "no configuration"})
			continue
		}
		valid = append(valid, desc)
	}
	queue = valid

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Priority() < queue[j].Priority()
	})

	start := time.Now()
	s.logger.Printf("[Scheduler] Pass %d: %d bodies", pass, len(queue))
	s.record(telemetry.BuildEvent{Pass: pass, Status: telemetry.StatusPassStarted})

	for _, desc := range queue {
		s.loadBody(desc, pass)
	}

	s.record(telemetry.BuildEvent{Pass: pass, Status: telemetry.StatusPassFinished, Duration: time.Since(start)})
}

// loadBody routes one descriptor to destroy, update or generate. Failures stay with the body.
func (s *Scheduler) loadBody(desc *entity.BodyDescriptor, pass int) {
	name := desc.Name()
	defer func() {
		if r := recover(); r != nil {
			desc.State = entity.StateFailed
			s.logger.Printf("[Scheduler] ERROR: Panic while loading %s: %v", name, r)
			s.record(telemetry.BuildEvent{Body: name, Pass: pass, Status: telemetry.StatusFailed})
		}
	}()

	if desc.Config == nil {
		s.logger.Printf("[Scheduler] WARNING: Descriptor without configuration skipped")
		return
	}

	existing, found := s.lookup(name)
	start := time.Now()

	switch {
	case found && desc.Config.Destroy:
		s.scheduleRemoval(desc, existing, pass)

	case desc.Config.Destroy:
		s.logger.Printf("[Scheduler] WARNING: %s is flagged for destruction but does not exist", name)
		desc.State = entity.StateDestroyed
		s.record(telemetry.BuildEvent{Body: name, Pass: pass, Status: telemetry.StatusSkipped, Message: "not present"})

	case found:
		desc.State = entity.StateBuilding
		if err := s.builder.Update(desc, existing, pass); err != nil {
			s.fail(desc, pass, err)
			return
		}
		desc.State = entity.StateBuilt
		s.record(telemetry.BuildEvent{Body: name, Pass: pass, Status: telemetry.StatusUpdated, Duration: time.Since(start)})

	default:
		desc.State = entity.StateBuilding
		s.record(telemetry.BuildEvent{Body: name, Pass: pass, Status: telemetry.StatusStarted})
		if _, err := s.builder.Generate(desc, pass); err != nil {
			s.fail(desc, pass, err)
			return
		}
		desc.State = entity.StateBuilt
		s.record(telemetry.BuildEvent{Body: name, Pass: pass, Status: telemetry.StatusBuilt, Duration: time.Since(start)})
	}
}

func (s *Scheduler) fail(desc *entity.BodyDescriptor, pass int, err error) {
	desc.State = entity.StateFailed
	s.logger.Printf("[Scheduler] ERROR: Couldn't load %s: %v", desc.Name(), err)
	s.record(telemetry.BuildEvent{Body: desc.Name(), Pass: pass, Status: telemetry.StatusFailed, Message: err.Error()})
}

// scheduleRemoval removes the body after the removal delay so in-flight references settle
func (s *Scheduler) scheduleRemoval(desc *entity.BodyDescriptor, body *world.Body, pass int) {
	desc.State = entity.StateDestroyed
	desc.Object = body
	s.logger.Printf("[Scheduler] Removing %s in %d frames", body.ID, s.removalDelay)

	remove := func() {
		if s.host != nil && body.OrbitLine != 0 {
			s.host.Destroy(body.OrbitLine)
		}
		if s.host != nil && body.Root != 0 {
			s.host.Destroy(body.Root)
		}
		s.registry.Remove(body.ID)
		s.record(telemetry.BuildEvent{Body: desc.Name(), Pass: pass, Status: telemetry.StatusDestroyed})
	}
	if s.deferrer == nil {
		remove()
		return
	}
	s.deferrer.RunAfterNFrames(s.removalDelay, remove)
}

// lookup tries the canonical id, then the compact spelling
func (s *Scheduler) lookup(name string) (*world.Body, bool) {
	if body, ok := s.registry.Lookup(entity.CanonicalName(name)); ok {
		return body, true
	}
	return s.registry.Lookup(entity.CompactName(name))
}

func (s *Scheduler) record(ev telemetry.BuildEvent) {
	if s.recorder != nil {
		s.recorder.Record(ev)
	}
}

// Update runs a session when bodies are waiting
func (s *Scheduler) Update(deltaTime time.Duration) error {
	s.RunSession()
	return nil
}

func (s *Scheduler) GetName() string {
	return s.name
}

func (s *Scheduler) GetPriority() int {
	return s.priority
}

// Pass is the number of passes run since creation
func (s *Scheduler) Pass() int {
	return s.pass
}

// Sessions is the number of completed sessions
func (s *Scheduler) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Pending is the number of descriptors waiting for the next session
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scheduled)
}
