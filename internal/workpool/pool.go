package workpool

import (
	"context"
	"sync"
)

// Logger defines the logging interface used by the pool.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Default pool sizing. One worker is deliberate: deferred pushes for a
// device are then naturally serialized, and the device lock covers the
// multi-worker case.
const (
	DefaultWorkers   = 1
	DefaultQueueSize = 1000
)

// Config holds pool construction options.
type Config struct {
	// Workers is the fixed number of worker goroutines.
	Workers int

	// QueueSize bounds the pending task queue. Submit fails with
	// ErrQueueFull once the queue is at capacity.
	QueueSize int

	// Logger receives panic and drop diagnostics. Optional.
	Logger Logger
}

// DefaultConfig returns a Config with the standard event-pool sizing.
func DefaultConfig() Config {
	return Config{
		Workers:   DefaultWorkers,
		QueueSize: DefaultQueueSize,
	}
}

// task is one unit of queued work.
type task struct {
	name string
	run  func()
}

// Pool is a fixed-size worker pool consuming a bounded task queue.
//
// Tasks are executed by exactly one worker each. Submission order is not
// preserved across workers; callers needing ordering must serialize at a
// higher level (the device lock does this for attribute pushes).
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Pool struct {
	tasks   chan task
	workers int
	logger  Logger

	mu     sync.RWMutex
	closed bool

	wg sync.WaitGroup
}

// New creates a pool and starts its workers.
//
// Zero or negative sizing fields fall back to the defaults.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	p := &Pool{
		tasks:   make(chan task, cfg.QueueSize),
		workers: cfg.Workers,
		logger:  cfg.Logger,
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues a task for execution by one worker.
//
// Parameters:
//   - name: Short task identity used in diagnostics (e.g. "set_attribute_push")
//   - fn: The work to run; panics are recovered and logged
//
// Returns:
//   - error: ErrQueueFull when the queue is at capacity,
//     ErrPoolClosed after Shutdown, nil otherwise
func (p *Pool) Submit(name string, fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task{name: name, run: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued, not yet started tasks.
func (p *Pool) Pending() int {
	return len(p.tasks)
}

// Workers returns the fixed worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Shutdown stops accepting tasks and waits for queued work to drain.
//
// The wait is bounded by ctx: on expiry the remaining workers are
// abandoned (daemon semantics - they never block process termination).
//
// Parameters:
//   - ctx: Bounds the drain wait
//
// Returns:
//   - error: ctx.Err() if the drain did not finish in time, nil otherwise
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker consumes tasks until the queue is closed and drained.
func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.runTask(t)
	}
}

// runTask executes one task, recovering panics so a bad task
// never kills a worker.
func (p *Pool) runTask(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panicked", "task", t.name, "panic", r)
		}
	}()
	t.run()
}
