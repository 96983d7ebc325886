// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package queue implements the command-queue runtime: an asynchronous runtime where work is
// submitted to queues and tracked with completion events (see package events).
//
// A Device owns a pool of workers executing submitted work. A Queue submits work to a Device in
// one of two modes:
//
//   - In-order: each submission implicitly waits for the previous one.
//   - Out-of-order: submissions only wait for the events explicitly listed in their wait list.
//
// Enqueue never blocks waiting for the work (or its dependencies) to complete: it returns an event
// representing the eventual completion.
//
// Importing this package registers the runtime with engines.Register under the name "cq".
package queue

import (
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/pkg/support/xsync"
	"github.com/gomlx/interop/status"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Task is the work submitted to a queue. Its returned error fails the corresponding event.
type Task func() error

// Queue submits work to a Device.
//
// Queue is safe for concurrent use.
type Queue struct {
	id         uuid.UUID
	device     *Device
	outOfOrder bool

	mu        sync.Mutex
	last      *events.Event // Last submission, in-order queues only. The queue owns a reference.
	finalized bool
	firstErr  error

	inFlight *xsync.InFlight
}

// NewQueue creates a queue on the device.
func (d *Device) NewQueue(outOfOrder bool) (*Queue, error) {
	if d.IsFinalized() {
		return nil, errors.Errorf("cannot create queue: device %d was finalized", d.num)
	}
	q := &Queue{
		id:         uuid.New(),
		device:     d,
		outOfOrder: outOfOrder,
		inFlight:   xsync.NewInFlight(),
	}
	d.numQueues.Add(1)
	return q, nil
}

// Device returns the device the queue submits work to.
func (q *Queue) Device() *Device { return q.device }

// IsOutOfOrder returns whether the queue is out-of-order.
func (q *Queue) IsOutOfOrder() bool { return q.outOfOrder }

// InFlight returns the number of submissions not yet completed.
func (q *Queue) InFlight() int { return q.inFlight.Count() }

// Enqueue submits task to run once every event in waitList has completed (and, for in-order
// queues, once the previous submission has completed).
//
// It returns a new event for the task, with one reference owned by the caller. If any event of the
// wait list fails, the task is not run and its event fails as well.
//
// The wait list events are only borrowed: the caller must keep its references alive until the
// returned event completes.
func (q *Queue) Enqueue(name string, task Task, waitList []*events.Event) (*events.Event, error) {
	if task == nil {
		return nil, status.InvalidArgumentsf("queue.Enqueue(%q) with nil task", name)
	}
	for ii, dep := range waitList {
		if dep == nil {
			return nil, status.InvalidArgumentsf("queue.Enqueue(%q): nil event in wait list position %d", name, ii)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.finalized {
		return nil, status.ExecutionFailuref("queue.Enqueue(%q): queue was finalized", name)
	}
	if q.device.IsFinalized() {
		return nil, status.ExecutionFailuref("queue.Enqueue(%q): device %d was finalized", name, q.device.num)
	}

	deps := waitList
	if !q.outOfOrder && q.last != nil {
		deps = append(append(make([]*events.Event, 0, len(waitList)+1), waitList...), q.last)
	}
	event := q.device.newEvent(name)
	if !q.outOfOrder {
		if err := event.Retain(); err != nil {
			// Can't happen, event was just created.
			exceptions.Panicf("failed to retain new event %s: %+v", event, err)
		}
		// Releasing the previous submission doesn't affect its completion, the new event still
		// waits on it.
		if q.last != nil {
			q.releaseEvent(q.last)
		}
		q.last = event
	}
	q.inFlight.Add(1)
	klog.V(3).Infof("queue %s: enqueued %s waiting on %d events", q.id.String()[:8], event, len(deps))
	go q.run(event, task, deps)
	return event, nil
}

func (q *Queue) releaseEvent(event *events.Event) {
	if err := event.Release(); err != nil {
		klog.Warningf("queue %s: failed to release %s: %v", q.id.String()[:8], event, err)
	}
}

// recordFailure keeps the first failure since the last Finish.
func (q *Queue) recordFailure(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.firstErr == nil {
		q.firstErr = err
	}
}

// run waits for the dependencies of task, and then runs it in one of the device's workers.
func (q *Queue) run(event *events.Event, task Task, deps []*events.Event) {
	for _, dep := range deps {
		<-dep.Done()
		if err := dep.Err(); err != nil {
			err = status.AsExecutionFailure(err, "dependency %s of %q failed", dep, event.Name())
			q.recordFailure(err)
			event.Complete(err)
			q.inFlight.Done()
			return
		}
	}
	q.device.submit(func() {
		var err error
		exception := exceptions.Try(func() { err = task() })
		if exception != nil {
			err = status.ExecutionFailuref("%q panicked: %v", event.Name(), exception)
		}
		if err != nil {
			q.recordFailure(err)
		}
		event.Complete(err)
		q.device.numExecuted.Add(1)
		q.inFlight.Done()
	})
}

// Finish blocks until all work submitted to the queue has completed.
// It returns the first failure since the previous Finish, if any.
func (q *Queue) Finish() error {
	q.inFlight.Wait()
	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.firstErr
	q.firstErr = nil
	return err
}

// Finalize waits for pending work and releases the queue's resources. The queue can't be used
// afterwards. Finalizing twice is a no-op.
func (q *Queue) Finalize() {
	q.mu.Lock()
	if q.finalized {
		q.mu.Unlock()
		return
	}
	q.finalized = true
	q.mu.Unlock()

	q.inFlight.Wait()
	q.mu.Lock()
	if q.last != nil {
		q.releaseEvent(q.last)
		q.last = nil
	}
	q.mu.Unlock()
	q.device.numQueues.Add(-1)
}

