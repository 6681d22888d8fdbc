package parallel

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
)

// WorkerPool manages a pool of worker goroutines. Task errors and recovered
// panics are collected and returned by Wait.
type WorkerPool struct {
	workers   int
	taskQueue chan func() error
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	errMu sync.Mutex
	errs  []error
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// Returns an error if the worker count exceeds MaxWorkers.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func() error, workers*2), // Buffer for 2x workers
	}

	pool.start()
	return pool, nil
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := wp.run(task); err != nil {
			wp.errMu.Lock()
			wp.errs = append(wp.errs, err)
			wp.errMu.Unlock()
		}
	}
}

// run executes one task, turning a panic into a *PanicError
func (wp *WorkerPool) run(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return task()
}

// Submit adds a task to the worker pool
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func() error) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	// Check if pool is closed while holding read lock
	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		// Acquire write lock before closing
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait closes the pool, waits for every submitted task and returns the
// collected task errors joined together.
func (wp *WorkerPool) Wait() error {
	wp.Close()

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return errors.Join(wp.errs...)
}

// Run executes tasks on a pool of the given size and waits for them.
func Run(workers int, tasks ...func() error) error {
	pool, err := NewWorkerPool(workers)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		pool.Submit(task)
	}
	return pool.Wait()
}
