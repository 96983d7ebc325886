// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package status defines the closed set of failure kinds reported by primitive execution, and
// helpers to create and classify errors of each kind.
//
// Errors are regular github.com/pkg/errors values wrapping one sentinel per Kind, so callers can
// use errors.Is(err, status.ErrInvalidArguments) or status.Of(err).
package status

import (
	"github.com/pkg/errors"
)

// Kind of failure. Success is the zero value and is never attached to an error.
type Kind int

//go:generate go tool enumer -type Kind -transform=snake -output=gen_kind_enumer.go status.go

const (
	Success Kind = iota

	// InvalidArguments reports caller misuse detected before any device work was issued.
	InvalidArguments

	// OutOfMemory reports a failed allocation.
	OutOfMemory

	// ExecutionFailure is an opaque failure of the primitive execution path.
	ExecutionFailure

	// RuntimeError is an internal-consistency fault: the runtime bridge itself is broken.
	RuntimeError

	// Unimplemented reports a feature not supported by the engine/runtime.
	Unimplemented
)

var (
	ErrInvalidArguments = &kindError{InvalidArguments}
	ErrOutOfMemory      = &kindError{OutOfMemory}
	ErrExecutionFailure = &kindError{ExecutionFailure}
	ErrRuntimeError     = &kindError{RuntimeError}
	ErrUnimplemented    = &kindError{Unimplemented}
)

// kindError is the sentinel for a Kind.
type kindError struct {
	kind Kind
}

func (e *kindError) Error() string { return e.kind.String() }

// Sentinel returns the sentinel error for kind, or nil for Success (or an unknown kind).
func (k Kind) Sentinel() error {
	switch k {
	case InvalidArguments:
		return ErrInvalidArguments
	case OutOfMemory:
		return ErrOutOfMemory
	case ExecutionFailure:
		return ErrExecutionFailure
	case RuntimeError:
		return ErrRuntimeError
	case Unimplemented:
		return ErrUnimplemented
	}
	return nil
}

// Errorf creates a new error of the given kind, with a stack trace.
func Errorf(kind Kind, format string, args ...any) error {
	sentinel := kind.Sentinel()
	if sentinel == nil {
		return errors.Errorf("status.Errorf() called with non-failure kind %s: "+format, append([]any{kind}, args...)...)
	}
	return errors.Wrapf(sentinel, format, args...)
}

// InvalidArgumentsf creates an InvalidArguments error.
func InvalidArgumentsf(format string, args ...any) error {
	return Errorf(InvalidArguments, format, args...)
}

// ExecutionFailuref creates an ExecutionFailure error.
func ExecutionFailuref(format string, args ...any) error {
	return Errorf(ExecutionFailure, format, args...)
}

// RuntimeErrorf creates a RuntimeError (internal-consistency fault) error.
func RuntimeErrorf(format string, args ...any) error {
	return Errorf(RuntimeError, format, args...)
}

// AsExecutionFailure tags err as an ExecutionFailure, unless it already carries a Kind, in which
// case it is returned unchanged. It returns nil if err is nil.
func AsExecutionFailure(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if lookupKind(err) != Success {
		return err
	}
	return &taggedError{
		cause: errors.Wrapf(err, format, args...),
		kind:  ExecutionFailure,
	}
}

// taggedError attaches a Kind to an arbitrary error without hiding it from errors.Is/As.
type taggedError struct {
	cause error
	kind  Kind
}

func (e *taggedError) Error() string { return e.cause.Error() }
func (e *taggedError) Unwrap() error { return e.cause }
func (e *taggedError) Is(target error) bool {
	return target == e.kind.Sentinel()
}

// Of returns the Kind of err: Success if err is nil, ExecutionFailure for errors not created by
// this package (opaque failures).
func Of(err error) Kind {
	if err == nil {
		return Success
	}
	if kind := lookupKind(err); kind != Success {
		return kind
	}
	return ExecutionFailure
}

// lookupKind returns the Kind whose sentinel err wraps, or Success if none.
func lookupKind(err error) Kind {
	for _, kind := range KindValues() {
		if sentinel := kind.Sentinel(); sentinel != nil && errors.Is(err, sentinel) {
			return kind
		}
	}
	return Success
}

// Is returns whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return Of(err) == kind
}
