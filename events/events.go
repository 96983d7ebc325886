// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package events implements completion events: opaque handles representing the finish-state of
// a unit of asynchronous work, usable to wait on it across runtimes.
//
// Events are reference counted resources. Whoever creates or Retain's an event owns one
// reference and must Release it exactly once. Releasing an event doesn't change its completion
// state, it only gives the reference back to the runtime that created it: once all references are
// released the runtime reclaims the event (see New's onFinalRelease).
package events

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gomlx/interop/pkg/support/xsync"
	"github.com/gomlx/interop/status"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Event represents the completion of a unit of work submitted to a runtime.
type Event struct {
	id   uuid.UUID
	name string

	// done is triggered with the work's error (nil on success) when it completes.
	done *xsync.LatchWithValue[error]

	refs           atomic.Int32
	onFinalRelease func(e *Event)
}

// New creates a pending event with one reference, owned by the caller.
//
// onFinalRelease, if not nil, is called once, when the last reference is released.
func New(name string, onFinalRelease func(e *Event)) *Event {
	e := &Event{
		id:             uuid.New(),
		name:           name,
		done:           xsync.NewLatchWithValue[error](),
		onFinalRelease: onFinalRelease,
	}
	e.refs.Store(1)
	return e
}

// NewCompleted creates an event that is already complete with the given error (nil for success).
func NewCompleted(name string, err error) *Event {
	e := New(name, nil)
	e.Complete(err)
	return e
}

// ID returns the unique id of the event.
func (e *Event) ID() uuid.UUID { return e.id }

// Name of the work the event represents.
func (e *Event) Name() string { return e.name }

// String implements fmt.Stringer.
func (e *Event) String() string {
	if e == nil {
		return "<nil event>"
	}
	state := "pending"
	if err, completed := e.done.Value(); completed {
		state = "complete"
		if err != nil {
			state = "failed"
		}
	}
	return fmt.Sprintf("event(%s/%s, %s)", e.name, e.id.String()[:8], state)
}

// Complete marks the event as complete, with err set if the work failed.
// It returns false if the event had already been completed, in which case err is ignored.
//
// Only the runtime executing the work should call Complete.
func (e *Event) Complete(err error) bool {
	return e.done.Trigger(err)
}

// IsComplete returns whether the work has finished (successfully or not), without blocking.
func (e *Event) IsComplete() bool {
	return e.done.Test()
}

// Done returns a channel closed when the work completes.
func (e *Event) Done() <-chan struct{} {
	return e.done.WaitChan()
}

// Err returns the error the work completed with. It returns nil if the work hasn't completed yet.
func (e *Event) Err() error {
	err, _ := e.done.Value()
	return err
}

// Wait blocks until the work completes and returns its error.
func (e *Event) Wait() error {
	return e.done.Wait()
}

// WaitContext blocks until the work completes or ctx is done.
func (e *Event) WaitContext(ctx context.Context) error {
	select {
	case <-e.done.WaitChan():
		return e.done.Wait()
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "waiting for %s", e)
	}
}

// RefCount returns the current number of references to the event.
func (e *Event) RefCount() int {
	return int(e.refs.Load())
}

// IsReleased returns whether all references to the event have been released.
func (e *Event) IsReleased() bool {
	return e.refs.Load() <= 0
}

// Retain acquires a new reference to the event, to be released with Release.
// It fails if the event has already been fully released.
func (e *Event) Retain() error {
	for {
		refs := e.refs.Load()
		if refs <= 0 {
			return status.InvalidArgumentsf("cannot retain %s: it was already released", e)
		}
		if e.refs.CompareAndSwap(refs, refs+1) {
			return nil
		}
	}
}

// Release gives back one reference to the event. Releasing more references than were acquired is
// an error, and the event is left untouched.
func (e *Event) Release() error {
	for {
		refs := e.refs.Load()
		if refs <= 0 {
			return status.InvalidArgumentsf("cannot release %s: it was already released", e)
		}
		if e.refs.CompareAndSwap(refs, refs-1) {
			if refs == 1 && e.onFinalRelease != nil {
				e.onFinalRelease(e)
			}
			return nil
		}
	}
}

// WaitAll waits for all events to complete, or for ctx to be done. It returns the first error
// found, in the order of the events. Nil events are ignored.
func WaitAll(ctx context.Context, events ...*Event) error {
	var firstErr error
	for _, e := range events {
		if e == nil {
			continue
		}
		err := e.WaitContext(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			return firstErr
		}
	}
	return firstErr
}
