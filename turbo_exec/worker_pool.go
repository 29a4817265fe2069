package turbo_exec

import (
	"fmt"
	"sync"

	"github.com/FrenchMajesty/turbo-exec/utils/logger"
)

// job is one background execution waiting for a worker. reject settles it
// when it can never run.
type job struct {
	run    func()
	reject func(error)
}

// WorkerPool runs background executions on a fixed set of goroutines.
type WorkerPool struct {
	wg          sync.WaitGroup
	jobs        chan job
	quit        chan struct{}
	mu          sync.RWMutex
	stopped     bool
	busyWorkers int
	workerCount int
	logger      logger.Logger
}

// NewWorkerPool starts workersCount workers sharing a queue of queueSize jobs.
func NewWorkerPool(workersCount int, queueSize int, l logger.Logger) *WorkerPool {
	if workersCount < 1 {
		workersCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if l == nil {
		l = logger.NewNoopLogger()
	}

	pool := &WorkerPool{
		jobs:        make(chan job, queueSize),
		quit:        make(chan struct{}),
		workerCount: workersCount,
		logger:      l,
	}

	pool.start(workersCount)
	return pool
}

// submit queues a job without blocking.
func (wp *WorkerPool) submit(j job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrPoolStopped
	}

	select {
	case wp.jobs <- j:
		return nil
	default:
		return ErrPoolFull
	}
}

// Stop waits for running jobs to finish and rejects those still queued.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	wp.mu.Unlock()

	close(wp.quit)
	wp.wg.Wait()

	for {
		select {
		case j := <-wp.jobs:
			j.reject(ErrPoolStopped)
		default:
			return
		}
	}
}

// GetSize returns the number of queued jobs.
func (wp *WorkerPool) GetSize() int {
	return len(wp.jobs)
}

// GetWorkerCount returns the total number of workers in the pool.
func (wp *WorkerPool) GetWorkerCount() int {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.workerCount
}

// GetBusyWorkers returns the number of workers currently running a job.
func (wp *WorkerPool) GetBusyWorkers() int {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.busyWorkers
}

// IsBusy returns true if any of the workers are busy
func (wp *WorkerPool) IsBusy() bool {
	return wp.GetBusyWorkers() > 0
}

func (wp *WorkerPool) start(workersCount int) {
	for i := 0; i < workersCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(workerID int) {
	defer wp.wg.Done()

	for {
		// Shutdown wins over queued jobs; Stop rejects whatever is left.
		select {
		case <-wp.quit:
			return
		default:
		}

		select {
		case <-wp.quit:
			return // Shutdown signal
		case j := <-wp.jobs:
			wp.changeBusyState(true)
			wp.runJob(workerID, j)
			wp.changeBusyState(false)
		}
	}
}

// runJob shields the worker from a panicking job. The executor loop recovers
// work panics itself, so reaching the recover here means the loop is broken.
func (wp *WorkerPool) runJob(workerID int, j job) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker recovered from panic", "worker_id", workerID, "panic", fmt.Sprint(r))
		}
	}()
	j.run()
}

func (wp *WorkerPool) changeBusyState(busy bool) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if busy {
		wp.busyWorkers++
	} else {
		wp.busyWorkers--
	}
}
