// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package streams implements streams: queues of primitive executions on one engine, each with the
// set of completion events the next execution must wait for (see DependencySet).
package streams

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/queue"
	"github.com/gomlx/interop/status"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Flags configure a stream. Exactly one of InOrder or OutOfOrder can be set.
type Flags int

const (
	// InOrder streams execute their work strictly in submission order.
	InOrder Flags = 1 << iota

	// OutOfOrder streams execute their work in any order, except as constrained by the
	// dependency set.
	OutOfOrder

	// DefaultFlags is used when no flags are given.
	DefaultFlags = InOrder
)

// String implements fmt.Stringer.
func (f Flags) String() string {
	switch f {
	case InOrder:
		return "in-order"
	case OutOfOrder:
		return "out-of-order"
	}
	return fmt.Sprintf("Flags(%d)", int(f))
}

// Stream of work on one engine.
//
// A Stream is not safe for concurrent submissions: launches on the same stream must be serialized
// by the caller, since each one mutates the stream's dependency set.
type Stream struct {
	id     uuid.UUID
	engine *engines.Engine
	flags  Flags

	// queue is nil for engines.RuntimeGo streams.
	queue *queue.Queue

	deps DependencySet
}

// New creates a stream for the engine. Flags 0 means DefaultFlags.
func New(engine *engines.Engine, flags Flags) (*Stream, error) {
	if engine == nil {
		return nil, status.InvalidArgumentsf("streams.New() requires a non-nil engine")
	}
	if flags == 0 {
		flags = DefaultFlags
	}
	if flags != InOrder && flags != OutOfOrder {
		return nil, status.InvalidArgumentsf("streams.New(): invalid flags %s, exactly one of %s or %s must be set",
			flags, InOrder, OutOfOrder)
	}
	s := &Stream{
		id:     uuid.New(),
		engine: engine,
		flags:  flags,
	}
	switch engine.Kind() {
	case engines.RuntimeGo:
	case engines.RuntimeCommandQueue:
		device, err := queue.DeviceOf(engine)
		if err != nil {
			return nil, err
		}
		s.queue, err = device.NewQueue(flags == OutOfOrder)
		if err != nil {
			return nil, status.AsExecutionFailure(err, "streams.New() on engine %s", engine)
		}
	default:
		return nil, status.Errorf(status.Unimplemented, "streams.New(): runtime %s not supported", engine.Kind())
	}
	klog.V(2).Infof("created %s", s)
	return s, nil
}

// ID returns the unique id of the stream.
func (s *Stream) ID() uuid.UUID { return s.id }

// Engine returns the engine the stream executes on.
func (s *Stream) Engine() *engines.Engine { return s.engine }

// Flags returns the stream flags.
func (s *Stream) Flags() Flags { return s.flags }

// IsInOrder returns whether the stream executes its work in submission order.
func (s *Stream) IsInOrder() bool { return s.flags&InOrder != 0 }

// Queue returns the command queue of the stream, or nil for streams that are not on a
// engines.RuntimeCommandQueue engine.
func (s *Stream) Queue() *queue.Queue { return s.queue }

// Deps returns the stream's dependency set. See DependencySet for the single-writer contract.
func (s *Stream) Deps() *DependencySet { return &s.deps }

// String implements fmt.Stringer.
func (s *Stream) String() string {
	if s == nil {
		return "<nil stream>"
	}
	return fmt.Sprintf("stream(%s, %s, %s)", s.id.String()[:8], s.flags, s.engine)
}

// Enqueue submits task to the stream: it waits for every event currently in the dependency set,
// and afterwards the dependency set holds exactly the event of the new task.
//
// On engines.RuntimeGo streams the task runs synchronously, and its failure is returned directly.
// On command-queue streams, Enqueue returns as soon as the task is submitted, and the task's own
// failure is only reported through its event.
func (s *Stream) Enqueue(name string, task queue.Task) error {
	if s.queue == nil {
		var err error
		if exception := exceptions.Try(func() { err = task() }); exception != nil {
			err = status.ExecutionFailuref("%q panicked: %v", name, exception)
		}
		if err != nil {
			return status.AsExecutionFailure(err, "executing %q on %s", name, s)
		}
		s.deps.Reset(events.NewCompleted(name, nil))
		return nil
	}
	event, err := s.queue.Enqueue(name, task, s.deps.Events())
	if err != nil {
		return errors.WithMessagef(err, "enqueuing %q on %s", name, s)
	}
	s.deps.Reset(event)
	return nil
}

// Wait blocks until all work submitted to the stream has completed, and returns the first failure
// since the previous Wait.
func (s *Stream) Wait() error {
	if s.queue == nil {
		return nil
	}
	return s.queue.Finish()
}

// Finalize waits for the pending work and releases the stream's resources, including owned
// dependencies. The stream can't be used afterwards.
func (s *Stream) Finalize() {
	if s.queue != nil {
		s.queue.Finalize()
	}
	s.deps.Clear()
}
