// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements the pool of goroutines that run the work submitted to a
// command-queue device.
package workerspool

import (
	"sync"
	"sync/atomic"
)

// Pool limits how many device tasks run concurrently.
type Pool struct {
	maxParallelism int
	mu             sync.Mutex
	cond           sync.Cond // Signaled whenever numRunning is decreased.
	numRunning     int

	// numStarted counts every task ever started, for statistics.
	numStarted atomic.Int64
}

// New returns a new Pool with the given parallelism.
//
// If parallelism is 0 tasks run inline on the submitting goroutine, if negative parallelism is
// unlimited. Use runtime.NumCPU() when in doubt.
func New(parallelism int) *Pool {
	w := &Pool{maxParallelism: parallelism}
	w.cond = sync.Cond{L: &w.mu}
	return w
}

// IsUnlimited returns whether parallelism is unlimited.
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism returns the configured parallelism. See New.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// NumRunning returns the number of tasks currently running in the pool.
func (w *Pool) NumRunning() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.numRunning
}

// NumStarted returns the total number of tasks started so far.
func (w *Pool) NumStarted() int64 {
	return w.numStarted.Load()
}

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with Pool.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= w.maxParallelism
}

// Submit waits until a worker is available and runs task on it. It returns as soon as the task
// has started.
//
// If parallelism is disabled the task runs inline and Submit only returns when it is finished.
func (w *Pool) Submit(task func()) {
	w.numStarted.Add(1)
	if w.IsUnlimited() {
		go task()
		return
	} else if w.maxParallelism == 0 {
		task()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for w.lockedIsFull() {
		w.cond.Wait()
	}
	w.lockedRunTaskInGoroutine(task)
}

// TrySubmit runs task in a separate goroutine if a worker is available, and returns whether it did.
func (w *Pool) TrySubmit(task func()) bool {
	if w.IsUnlimited() {
		w.numStarted.Add(1)
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.numStarted.Add(1)
	w.lockedRunTaskInGoroutine(task)
	return true
}

// lockedRunTaskInGoroutine and keep tabs on w.numRunning.
//
// It must be called with Pool.mu acquired.
func (w *Pool) lockedRunTaskInGoroutine(task func()) {
	w.numRunning++
	go func() {
		task()
		w.mu.Lock()
		w.numRunning--
		w.cond.Signal()
		w.mu.Unlock()
	}()
}
