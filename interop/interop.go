// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package interop launches primitives on command-queue streams for callers that track work with
// their own completion events.
//
// Execute merges the caller's events into the stream's dependency set, launches the primitive
// and hands back exactly one event representing the launched work, so that other runtimes or user
// code can wait on it without knowing anything about the primitive.
//
// Only out-of-order streams of engines.RuntimeCommandQueue engines are supported: on in-order
// streams ordering is implicit, and explicit dependencies are refused.
//
// The launch runs synchronously on the calling goroutine, and returns as soon as the work is
// enqueued: it never waits for the work itself. Launches on the same stream must be serialized by
// the caller.
package interop

import (
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/primitives"
	"github.com/gomlx/interop/status"
	"github.com/gomlx/interop/streams"
	"k8s.io/klog/v2"
)

// RuntimeKind is the only runtime kind served by this package.
const RuntimeKind = engines.RuntimeCommandQueue

// Execute launches primitive p on stream s, with the first nargs arguments of args, after the
// first ndeps events of deps complete.
//
// The counts mirror the flat form used by foreign callers: nargs > 0 with a nil args is invalid,
// and a nil deps means no external dependencies, whatever ndeps is. A non-nil deps (even an empty
// one) replaces the stream's dependency set; a nil one keeps it, so the launch also waits for the
// previous launch on the stream.
//
// The deps events are only borrowed. On success, if returnEvent is not nil, it is set to the event
// of the launched work and the caller owns one reference to it, which must eventually be released.
// If returnEvent is nil the reference is released here.
//
// Errors:
//
//   - status.InvalidArguments: nil primitive or stream, primitive and stream on different engines,
//     engine not of RuntimeKind, in-order stream, inconsistent counts, or arguments not matching the
//     primitive signature. Nothing is enqueued.
//   - Failures of the generic execution path (primitives.Execute), returned unchanged.
//   - status.RuntimeError: the stream didn't end up with exactly one event after the launch. This is a
//     bug in the runtime bridge, not a misuse.
//
// No event is returned on failure.
func Execute(p *primitives.Primitive, s *streams.Stream, nargs int, args []primitives.ExecArg,
	deps []*events.Event, ndeps int, returnEvent **events.Event) error {
	l := &launch{primitive: p, stream: s}
	err := l.run(nargs, args, deps, ndeps, returnEvent)
	if err != nil {
		klog.V(1).Infof("interop launch of %s on %s aborted while %s: %v", p, s, l.phase, err)
		l.phase = phaseAborted
	}
	return err
}

// Launch executes p on s after deps complete, and returns the event of the launched work, owned by
// the caller. See Execute.
func Launch(p *primitives.Primitive, s *streams.Stream, args []primitives.ExecArg, deps ...*events.Event) (*events.Event, error) {
	var event *events.Event
	if err := Execute(p, s, len(args), args, depsOrNil(deps), len(deps), &event); err != nil {
		return nil, err
	}
	return event, nil
}

// LaunchAndRelease executes p on s after deps complete, without keeping the event of the launched
// work. The stream's dependency set still references it, so later launches on s wait for it.
// See Execute.
func LaunchAndRelease(p *primitives.Primitive, s *streams.Stream, args []primitives.ExecArg, deps ...*events.Event) error {
	return Execute(p, s, len(args), args, depsOrNil(deps), len(deps), nil)
}

// depsOrNil keeps the "no dependencies given" meaning of an empty variadic list.
func depsOrNil(deps []*events.Event) []*events.Event {
	if len(deps) == 0 {
		return nil
	}
	return deps
}

// CheckEngines returns nil if p and s can be used together by Execute: both non-nil, on the very
// same engine, and the engine of RuntimeKind. It has no side effects.
func CheckEngines(p *primitives.Primitive, s *streams.Stream) error {
	if p == nil || s == nil {
		return status.InvalidArgumentsf("interop requires a primitive and a stream, got %s and %s", p, s)
	}
	if !engines.Same(p.Engine(), s.Engine()) {
		return status.InvalidArgumentsf("primitive %s is on engine %s, stream %s is on engine %s",
			p, p.Engine(), s, s.Engine())
	}
	if !p.Engine().Is(RuntimeKind) {
		return status.InvalidArgumentsf("engine %s is not a %s engine", p.Engine(), RuntimeKind)
	}
	return nil
}

// executePrimitive is the generic execution path. Tests replace it to simulate broken runtimes.
var executePrimitive = primitives.Execute
