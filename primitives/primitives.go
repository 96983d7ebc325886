// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package primitives defines compiled primitives (operators such as matmul, already specialized
// for one engine), how their execution arguments are bound, and their generic execution path.
//
// How primitives are compiled or selected is up to the kernel providers (e.g. package kernels):
// this package only sees a Descriptor, with the argument signature, and an opaque Kernel.
package primitives

import (
	"fmt"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/pkg/support/sets"
	"github.com/gomlx/interop/status"
	"github.com/google/uuid"
)

// Kernel is the compiled implementation of a primitive.
type Kernel interface {
	// Compute runs the primitive on the bound arguments. It is called by the runtime once all the
	// dependencies of the execution have completed, possibly on another goroutine.
	Compute(args ExecArgs) error
}

// Validator is optionally implemented by kernels that check the bound arguments synchronously,
// before anything is enqueued.
type Validator interface {
	Validate(args ExecArgs) error
}

// Descriptor describes what a primitive computes and the arguments it takes.
type Descriptor struct {
	// Kind of the primitive, e.g. "matmul".
	Kind string

	// Name is an optional description used in logs, e.g. "matmul_f32_64x32x16".
	Name string

	// Signature lists the arguments the primitive takes.
	Signature []ArgSpec
}

// Arg returns the spec of the argument with the given role, if the primitive takes it.
func (d *Descriptor) Arg(role ArgRole) (spec ArgSpec, found bool) {
	for _, spec = range d.Signature {
		if spec.Role == role {
			return spec, true
		}
	}
	return ArgSpec{}, false
}

// NumInputs returns the number of input arguments, optional ones included.
func (d *Descriptor) NumInputs() int {
	var count int
	for _, spec := range d.Signature {
		if spec.Usage == UsageInput {
			count++
		}
	}
	return count
}

// NumOutputs returns the number of output arguments, optional ones included.
func (d *Descriptor) NumOutputs() int {
	return len(d.Signature) - d.NumInputs()
}

// Primitive is a compiled primitive bound to an engine. It is immutable.
type Primitive struct {
	id     uuid.UUID
	engine *engines.Engine
	desc   Descriptor
	kernel Kernel
}

// New creates a primitive for the engine.
func New(engine *engines.Engine, desc Descriptor, kernel Kernel) (*Primitive, error) {
	if engine == nil {
		return nil, status.InvalidArgumentsf("primitives.New(%q) requires an engine", desc.Kind)
	}
	if kernel == nil {
		return nil, status.InvalidArgumentsf("primitives.New(%q) requires a kernel", desc.Kind)
	}
	if desc.Kind == "" {
		return nil, status.InvalidArgumentsf("primitives.New() requires the primitive kind")
	}
	roles := sets.Make[ArgRole](len(desc.Signature))
	for _, spec := range desc.Signature {
		if spec.Role == ArgUndefined {
			return nil, status.InvalidArgumentsf("primitives.New(%q): undefined argument role in signature", desc.Kind)
		}
		if roles.Has(spec.Role) {
			return nil, status.InvalidArgumentsf("primitives.New(%q): argument %s given more than once in signature",
				desc.Kind, spec.Role)
		}
		roles.Insert(spec.Role)
	}
	desc.Signature = append([]ArgSpec(nil), desc.Signature...)
	return &Primitive{
		id:     uuid.New(),
		engine: engine,
		desc:   desc,
		kernel: kernel,
	}, nil
}

// ID returns the unique id of the primitive.
func (p *Primitive) ID() uuid.UUID { return p.id }

// Engine returns the engine the primitive was compiled for.
func (p *Primitive) Engine() *engines.Engine { return p.engine }

// Descriptor returns the primitive descriptor.
func (p *Primitive) Descriptor() *Descriptor { return &p.desc }

// Kernel returns the compiled implementation of the primitive.
func (p *Primitive) Kernel() Kernel { return p.kernel }

// String implements fmt.Stringer.
func (p *Primitive) String() string {
	if p == nil {
		return "<nil primitive>"
	}
	name := p.desc.Name
	if name == "" {
		name = p.desc.Kind
	}
	return fmt.Sprintf("%s/%s", name, p.id.String()[:8])
}
