package game

import (
	"log"
	"sync"
)

type deferredTask struct {
	due       uint64
	predicate func() bool
	fn        func()
}

// DeferredQueue is the frame-delayed task queue. It is drained once per frame by the Ticker
// before any system runs. Tasks scheduled while a drain is in progress run no earlier than
// the next frame.
type DeferredQueue struct {
	tasks  []*deferredTask
	frame  uint64
	mu     sync.Mutex
	logger *log.Logger
}

func NewDeferredQueue(logger *log.Logger) *DeferredQueue {
	if logger == nil {
		logger = log.Default()
	}
	return &DeferredQueue{logger: logger}
}

// RunNextFrame runs fn on the next drain
func (q *DeferredQueue) RunNextFrame(fn func()) {
	q.RunAfterNFrames(1, fn)
}

// RunAfterNFrames runs fn n drains from now; n < 1 is treated as 1
func (q *DeferredQueue) RunAfterNFrames(n int, fn func()) {
	if n < 1 {
		n = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, &deferredTask{due: q.frame + uint64(n), fn: fn})
}

// RunWhen polls predicate once per frame, starting next frame, and runs fn the first time it holds
func (q *DeferredQueue) RunWhen(predicate func() bool, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, &deferredTask{due: q.frame + 1, predicate: predicate, fn: fn})
}

// Drain advances the queue by one frame and runs every task that became due
func (q *DeferredQueue) Drain() int {
	q.mu.Lock()
	q.frame++
	frame := q.frame
	pending := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var kept []*deferredTask
	ran := 0
	for _, task := range pending {
		if task.due > frame || !q.ready(task) {
			kept = append(kept, task)
			continue
		}
		q.run(task.fn)
		ran++
	}

	q.mu.Lock()
	q.tasks = append(kept, q.tasks...)
	q.mu.Unlock()
	return ran
}

func (q *DeferredQueue) ready(task *deferredTask) (ok bool) {
	if task.predicate == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Printf("[Ticker] ERROR: deferred predicate panicked, dropping task: %v", r)
			// a panicking predicate is treated as ready so run() drops it through fn == nil
			task.fn = nil
			ok = true
		}
	}()
	return task.predicate()
}

func (q *DeferredQueue) run(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Printf("[Ticker] ERROR: deferred task panicked: %v", r)
		}
	}()
	fn()
}

// Pending is the number of tasks waiting
func (q *DeferredQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Frame is the number of drains performed so far
func (q *DeferredQueue) Frame() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.frame
}
