// Package workerpool implements the fixed-size goroutine pool that
// internal/postprocess and internal/encoder spread a frame's per-row work
// across during Close: unpremultiply/premultiply passes, planar
// gather/scatter, and final pixel sampling are all partitioned into row
// chunks and run through one of these pools, joined before Close returns
// so the parallelism stays invisible to the host.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed number of goroutines draining one shared queue of
// row-chunk tasks.
//
// A pool is created fresh for each Close call and closed before that
// call returns — it has no longer-lived identity, so it has no need for
// the per-worker queues and work-stealing a general-purpose scheduler
// would carry: ExecuteAll is the only way work enters it, and every
// caller in this codebase submits one pass's worth of row chunks and
// waits for all of them before the pipeline's next step reads the
// buffer. A single shared queue is sufficient because nothing here ever
// partially drains one pass while another is still queuing.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queue holds row-chunk tasks waiting to run. Shared across all
	// workers rather than one queue per worker, since every submission
	// comes from a single ExecuteAll call partitioning one frame pass.
	queue chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of
// workers. If workers is 0 or negative, GOMAXPROCS is used —
// internal/postprocess.Run and internal/encoder.Write both pass 0 to
// size the pool to the host machine's available cores. The pool starts
// immediately and workers begin waiting for row-chunk tasks.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Buffer size: 2-4x workers helps hide latency (from research)
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), queueSize),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker drains the shared queue until told to stop, then runs whatever
// row-chunk tasks are still queued before exiting, so ExecuteAll's own
// WaitGroup always reaches zero.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			p.drain()
			return
		case task := <-p.queue:
			if task != nil {
				task()
			}
		}
	}
}

// drain runs every task still sitting in the queue without blocking for
// more, used once Close has signaled shutdown.
func (p *WorkerPool) drain() {
	for {
		select {
		case task := <-p.queue:
			if task != nil {
				task()
			}
		default:
			return
		}
	}
}

// ExecuteAll submits one row-chunk task per element of chunks and blocks
// until every one has run. This is the pool's only work-submission path:
// the Post-Processor's unpremultiply/denoise-blend/premultiply passes and
// the Encoder's planar-gather pass each partition a frame into row ranges,
// call this once, and only then move on to the next pipeline step. A
// no-op if the pool has already been closed.
func (p *WorkerPool) ExecuteAll(chunks []func()) {
	if len(chunks) == 0 || !p.running.Load() {
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(chunks))

	for _, chunk := range chunks {
		task := chunk // capture for closure

		wrapped := func() {
			defer completionWG.Done()
			task()
		}

		select {
		case p.queue <- wrapped:
			// Successfully queued
		case <-p.done:
			// Pool is closing; nothing more will run this task.
			completionWG.Done()
		}
	}

	completionWG.Wait()
}

// Close stops the pool from accepting new work, lets every worker drain
// whatever row chunks are already queued, and waits for all worker
// goroutines to exit. Safe to call more than once; internal/postprocess
// and internal/encoder both defer it immediately after construction.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		// Already closed
		return
	}

	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of goroutines backing this pool, used by
// callers to size their row-chunk partitioning (see chunkRows in
// internal/postprocess and rowChunks in internal/encoder).
func (p *WorkerPool) Workers() int {
	return p.workers
}
