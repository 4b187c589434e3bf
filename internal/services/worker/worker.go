// Package worker provides a background job processing system using goroutines.
//
// Go Pattern: Goroutines and channels are Go's concurrency primitives.
// A goroutine is like a lightweight thread (thousands are fine), and
// channels are typed pipes for communication between goroutines.
//
// The pool itself knows nothing about PDFs or sessions. Callers hand it a
// Job carrying a Run closure; the pool supplies the context and logs the
// outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// JobType identifies what kind of work a job represents.
type JobType string

// JobExtraction turns an uploaded PDF into session text.
const JobExtraction JobType = "pdf_extraction"

// ErrQueueFull is returned by Submit when the buffered queue has no room.
var ErrQueueFull = errors.New("job queue is full; try again later")

// ErrStopped is returned by Submit after Stop has been called.
var ErrStopped = errors.New("worker pool is stopped")

// Job represents a unit of work to be processed by a worker.
type Job struct {
	ID        string
	Type      JobType
	Run       func(ctx context.Context) error
	CreatedAt time.Time
}

// Pool manages a pool of worker goroutines.
type Pool struct {
	// Buffered so handlers can enqueue without waiting for a free worker.
	jobs    chan Job
	workers int

	// Go Pattern: sync.WaitGroup tracks running goroutines.
	// wg.Wait() blocks until all workers are done (used for graceful shutdown).
	wg sync.WaitGroup

	// mu guards stopped so Submit never sends on a closed channel.
	mu      sync.RWMutex
	stopped bool

	// Cancelled on Stop; every job's context derives from it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	log.Printf("🚀 Starting %d background workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully shuts down all workers.
// Running jobs see their context cancelled. Jobs still queued are run with
// the cancelled context so they can record their failure, then Stop returns.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	log.Println("⏹️  Stopping workers...")
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	log.Println("✅ All workers stopped")
}

// Submit adds a job to the queue.
// Returns ErrQueueFull if the queue is full (non-blocking).
func (p *Pool) Submit(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.ID)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	// Go Pattern: `select` with `default` makes channel operations non-blocking.
	// Without default, sending to a full channel would block the HTTP handler.
	select {
	case p.jobs <- job:
		log.Printf("📥 Job queued: %s (type: %s)", job.ID, job.Type)
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log.Printf("👷 Worker %d started", id)

	for job := range p.jobs {
		if p.ctx.Err() != nil {
			log.Printf("👷 Worker %d draining job: %s (type: %s)", id, job.ID, job.Type)
		} else {
			log.Printf("👷 Worker %d processing job: %s (type: %s)", id, job.ID, job.Type)
		}

		if err := p.run(job); err != nil {
			log.Printf("❌ Worker %d: job %s failed: %v", id, job.ID, err)
		} else {
			log.Printf("✅ Worker %d: job %s completed in %s", id, job.ID, time.Since(job.CreatedAt).Round(time.Millisecond))
		}
	}

	log.Printf("👷 Worker %d stopped", id)
}

// run executes one job, turning a panic into an error so a bad document
// cannot take a worker down.
func (p *Pool) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(p.ctx)
}
