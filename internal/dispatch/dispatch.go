// Package dispatch provides the fixed-size worker pool the sieve engines
// mark composites on, with a completion barrier for ordering-sensitive
// phases.
package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
)

// Pool manages a fixed set of goroutines consuming work closures from a
// bounded queue. Dispatch blocks when the queue is full, so the number of
// in-flight tasks never exceeds queue capacity plus the worker count.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	pending sync.WaitGroup
	closed  atomic.Bool
}

// queueFactor sizes the task queue per worker. Tasks are small closures; a
// deep queue keeps workers fed between barrier phases without letting the
// producer run arbitrarily far ahead.
const queueFactor = 64

// DefaultWorkers returns the number of logical cores reported by CPUID,
// falling back to runtime.NumCPU when detection fails.
func DefaultWorkers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// NewPool starts a pool with the given number of workers. Zero or negative
// means DefaultWorkers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*queueFactor),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
		p.pending.Done()
	}
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Dispatch enqueues a task, blocking while the queue is full. It must not be
// called after Close, and must not be called concurrently with Finish from
// another goroutine.
func (p *Pool) Dispatch(task func()) {
	if p.closed.Load() {
		panic("dispatch: Dispatch after Close")
	}
	p.pending.Add(1)
	p.tasks <- task
}

// Finish blocks until every task dispatched so far has completed. The pool
// stays usable afterwards; this is a barrier, not a shutdown.
func (p *Pool) Finish() {
	p.pending.Wait()
}

// Close waits for outstanding tasks and stops the workers. Idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}
