// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package interop

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/interop/events"
	"github.com/gomlx/interop/primitives"
	"github.com/gomlx/interop/status"
	"github.com/gomlx/interop/streams"
	"k8s.io/klog/v2"
)

// phase of a launch. Every phase before phaseExecuting can abort without side effects on the
// device.
type phase int

const (
	phaseValidating phase = iota
	phaseDependenciesMerged
	phaseArgumentsBound
	phaseExecuting
	phaseCompletionExtracted
	phaseDone
	phaseAborted
)

var phaseNames = [...]string{
	phaseValidating:          "validating",
	phaseDependenciesMerged:  "dependencies-merged",
	phaseArgumentsBound:      "arguments-bound",
	phaseExecuting:           "executing",
	phaseCompletionExtracted: "completion-extracted",
	phaseDone:                "done",
	phaseAborted:             "aborted",
}

func (p phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// launch holds the state of one Execute call.
type launch struct {
	primitive *primitives.Primitive
	stream    *streams.Stream
	phase     phase
}

func (l *launch) advance(to phase) {
	klog.V(2).Infof("interop launch of %s: %s -> %s", l.primitive, l.phase, to)
	l.phase = to
}

func (l *launch) run(nargs int, args []primitives.ExecArg, deps []*events.Event, ndeps int,
	returnEvent **events.Event) error {
	// Validating: no side effects.
	if err := CheckEngines(l.primitive, l.stream); err != nil {
		return err
	}
	if nargs < 0 || (nargs > 0 && args == nil) || nargs > len(args) {
		return status.InvalidArgumentsf("%d arguments requested, %d given", nargs, len(args))
	}
	if l.stream.IsInOrder() {
		return status.InvalidArgumentsf("%s is in-order: explicit dependencies are not supported", l.stream)
	}
	if deps != nil {
		if ndeps < 0 || ndeps > len(deps) {
			return status.InvalidArgumentsf("%d dependencies requested, %d given", ndeps, len(deps))
		}
		for ii, dep := range deps[:ndeps] {
			if dep == nil {
				return status.InvalidArgumentsf("dependency #%d is nil", ii)
			}
		}
	}

	// DependenciesMerged: the stream now waits on exactly the given events.
	if deps != nil {
		l.stream.Deps().Merge(deps[:ndeps])
		klog.V(2).Infof("interop launch of %s: %d external dependencies merged into %s", l.primitive, ndeps, l.stream)
	}
	l.advance(phaseDependenciesMerged)

	// ArgumentsBound.
	execArgs, err := primitives.BindArgs(l.primitive, args[:nargs])
	if err != nil {
		return err
	}
	l.advance(phaseArgumentsBound)

	// Executing: failures are propagated unchanged.
	l.advance(phaseExecuting)
	if err = executePrimitive(l.primitive, primitives.NewExecContext(l.stream, execArgs)); err != nil {
		return err
	}

	// CompletionExtracted.
	drained := l.stream.Deps().Drain()
	if len(drained) != 1 {
		for _, dep := range drained {
			if dep.Ownership == events.Owned {
				releaseEvent(dep.Event)
			}
		}
		err = status.RuntimeErrorf("inconsistent dependencies: %d events in %s after launching %s, expected exactly 1",
			len(drained), l.stream, l.primitive)
		klog.Errorf("interop: %+v", err)
		if debugAssertions {
			exceptions.Panicf("interop: %v", err)
		}
		return err
	}
	completion := drained[0]
	l.advance(phaseCompletionExtracted)

	// Done: hand over or release the reference.
	if returnEvent != nil {
		if completion.Ownership == events.Borrowed {
			// The caller gets its own reference.
			if err = completion.Event.Retain(); err != nil {
				return status.RuntimeErrorf("failed to retain completion event %s: %v", completion.Event, err)
			}
		}
		*returnEvent = completion.Event
	} else if completion.Ownership == events.Owned {
		releaseEvent(completion.Event)
	}
	l.advance(phaseDone)
	klog.V(1).Infof("interop launched %s on %s: %s", l.primitive, l.stream, completion.Event)
	return nil
}

func releaseEvent(e *events.Event) {
	if err := e.Release(); err != nil {
		klog.Warningf("interop: failed to release %s: %v", e, err)
	}
}
