// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package primitives

import (
	"sync/atomic"

	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/status"
	"github.com/gomlx/interop/streams"
	"k8s.io/klog/v2"
)

// ExecContext pairs a stream with the bound arguments of one execution. It can only be used once.
type ExecContext struct {
	stream *streams.Stream
	args   ExecArgs
	used   atomic.Bool
}

// NewExecContext creates the context for one execution on the stream.
func NewExecContext(stream *streams.Stream, args ExecArgs) *ExecContext {
	return &ExecContext{stream: stream, args: args}
}

// Stream returns the stream the execution is submitted to.
func (c *ExecContext) Stream() *streams.Stream { return c.stream }

// Args returns the bound arguments.
func (c *ExecContext) Args() ExecArgs { return c.args }

// Execute is the generic execution path: it submits the primitive's kernel to the context's
// stream. The stream's dependency set is used as the wait list and, afterwards, holds the event of
// this execution.
//
// It returns once the work is submitted; on asynchronous streams the kernel's own failures are
// reported through the execution's event. Submission failures are ExecutionFailure errors, and
// invalid contexts are InvalidArguments.
func Execute(p *Primitive, ctx *ExecContext) error {
	if p == nil || ctx == nil || ctx.stream == nil {
		return status.InvalidArgumentsf("primitives.Execute() requires a primitive and a context with a stream")
	}
	if ctx.used.Swap(true) {
		return status.InvalidArgumentsf("primitives.Execute(%s): execution context already used", p)
	}
	stream := ctx.stream
	if !engines.Same(p.engine, stream.Engine()) {
		return status.InvalidArgumentsf("primitives.Execute(%s): primitive engine %s, stream engine %s",
			p, p.engine, stream.Engine())
	}
	args := ctx.args
	for role, value := range args {
		if !value.Memory.IsValid() || !engines.Same(value.Memory.Engine(), p.engine) {
			return status.InvalidArgumentsf("primitives.Execute(%s): invalid memory %s for %s", p, value.Memory, role)
		}
	}
	if validator, ok := p.kernel.(Validator); ok {
		if err := validator.Validate(args); err != nil {
			return err
		}
	}
	klog.V(2).Infof("executing %s on %s with %d arguments", p, stream, len(args))
	name := p.String()
	return stream.Enqueue(name, func() error {
		return status.AsExecutionFailure(p.kernel.Compute(args), "primitive %s", name)
	})
}
