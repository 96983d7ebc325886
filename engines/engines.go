// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package engines identifies where primitives run: one device managed by one runtime kind.
//
// An Engine is a pure value object: it has no behavior besides its identity, its RuntimeKind and
// a runtime specific payload (e.g.: the command-queue device). Primitives, streams and memory all
// reference the Engine they were created for, and execution requires them to reference the very
// same Engine instance (see Same).
//
// Engines are created by runtimes registered with Register, and can be selected by configuration,
// see New and NewWithConfig.
package engines

import (
	"fmt"

	"github.com/google/uuid"
)

// DeviceNum identifies a device within a runtime.
type DeviceNum int

// RuntimeKind enumerates the runtimes that can manage a device.
//
// The set is closed: each interop bridge serves exactly one kind.
type RuntimeKind int

//go:generate go tool enumer -type RuntimeKind -trimprefix=Runtime -transform=snake -output=gen_runtimekind_enumer.go engines.go

const (
	// RuntimeNone is the zero value, an invalid runtime.
	RuntimeNone RuntimeKind = iota

	// RuntimeGo executes primitives synchronously on the calling goroutine.
	RuntimeGo

	// RuntimeCommandQueue executes primitives asynchronously on command queues that track
	// dependencies with completion events. See package queue.
	RuntimeCommandQueue
)

// Engine identifies one device of one runtime.
//
// It is never mutated after creation, and it is shared by the primitives, streams and memory
// created for it.
type Engine struct {
	id        uuid.UUID
	kind      RuntimeKind
	deviceNum DeviceNum

	// payload is runtime specific, its type matches kind: nil for RuntimeGo, *queue.Device for
	// RuntimeCommandQueue.
	payload any
}

// Make creates a new Engine. Each call returns a distinct Engine, even if the arguments are the
// same: identity is what primitives and streams are matched on.
//
// It's used by runtime implementations; end users should use New or NewWithConfig.
func Make(kind RuntimeKind, deviceNum DeviceNum, payload any) *Engine {
	return &Engine{
		id:        uuid.New(),
		kind:      kind,
		deviceNum: deviceNum,
		payload:   payload,
	}
}

// ID returns a unique identifier for the engine, used in logs.
func (e *Engine) ID() uuid.UUID { return e.id }

// Kind returns the runtime kind managing the engine's device.
func (e *Engine) Kind() RuntimeKind { return e.kind }

// DeviceNum returns the device number within the runtime.
func (e *Engine) DeviceNum() DeviceNum { return e.deviceNum }

// Payload returns the runtime specific payload. See also PayloadAs.
func (e *Engine) Payload() any { return e.payload }

// Is returns whether the engine is non-nil and managed by the given runtime kind.
func (e *Engine) Is(kind RuntimeKind) bool {
	return e != nil && e.kind == kind
}

// String implements fmt.Stringer.
func (e *Engine) String() string {
	if e == nil {
		return "<nil engine>"
	}
	return fmt.Sprintf("%s:%d[%s]", e.kind, e.deviceNum, e.id.String()[:8])
}

// Same returns whether a and b are the very same engine instance (and non-nil).
// Two engines created for the same device are not the same.
func Same(a, b *Engine) bool {
	return a != nil && a == b
}

// PayloadAs returns the engine payload converted to T, and false if the engine is nil or the
// payload is not a T.
func PayloadAs[T any](e *Engine) (payload T, ok bool) {
	if e == nil {
		return
	}
	payload, ok = e.payload.(T)
	return
}
