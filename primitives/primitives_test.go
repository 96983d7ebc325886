package primitives

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/queue"
	"github.com/gomlx/interop/status"
	"github.com/gomlx/interop/streams"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyKernel copies ArgSrc into ArgDst, optionally adding ArgBias.
type copyKernel struct {
	calls       atomic.Int32
	validateErr error
}

func (k *copyKernel) Compute(args ExecArgs) error {
	k.calls.Add(1)
	src := must.M1(memory.Flat[float32](args.Input(ArgSrc)))
	dst := must.M1(memory.Flat[float32](args.Output(ArgDst)))
	copy(dst, src)
	if bias := args.Input(ArgBias); bias != nil {
		b := must.M1(memory.Flat[float32](bias))
		for ii := range dst {
			dst[ii] += b[ii]
		}
	}
	return nil
}

func (k *copyKernel) Validate(ExecArgs) error { return k.validateErr }

var vecDesc = memory.MakeDesc(dtypes.Float32, 4)

func newCopyPrimitive(t *testing.T, engine *engines.Engine) (*Primitive, *copyKernel) {
	kernel := &copyKernel{}
	p, err := New(engine, Descriptor{
		Kind: "copy",
		Signature: []ArgSpec{
			{Role: ArgSrc, Usage: UsageInput, Desc: vecDesc},
			{Role: ArgBias, Usage: UsageInput, Optional: true, Desc: vecDesc},
			{Role: ArgDst, Usage: UsageOutput, Desc: vecDesc},
		},
	}, kernel)
	require.NoError(t, err)
	return p, kernel
}

func TestNew(t *testing.T) {
	engine := engines.Make(engines.RuntimeGo, 0, nil)
	p, _ := newCopyPrimitive(t, engine)
	assert.Same(t, engine, p.Engine())
	assert.Equal(t, 2, p.Descriptor().NumInputs())
	assert.Equal(t, 1, p.Descriptor().NumOutputs())
	assert.Contains(t, p.String(), "copy/")

	_, err := New(nil, Descriptor{Kind: "copy"}, &copyKernel{})
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(engine, Descriptor{Kind: "copy"}, nil)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(engine, Descriptor{}, &copyKernel{})
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(engine, Descriptor{Kind: "copy", Signature: []ArgSpec{{Role: ArgSrc}, {Role: ArgSrc}}}, &copyKernel{})
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = New(engine, Descriptor{Kind: "copy", Signature: []ArgSpec{{Role: ArgUndefined}}}, &copyKernel{})
	assert.Equal(t, status.InvalidArguments, status.Of(err))
}

func TestArgRole(t *testing.T) {
	assert.Equal(t, "weights", ArgWeights.String())
	assert.Equal(t, "multiple_src_3", MultipleSrc(3).String())
	assert.Equal(t, "ArgRole(5000)", ArgRole(5000).String())
	assert.Equal(t, "output", UsageOutput.String())
}

func TestBindArgs(t *testing.T) {
	engine := engines.Make(engines.RuntimeGo, 0, nil)
	other := engines.Make(engines.RuntimeGo, 0, nil)
	p, _ := newCopyPrimitive(t, engine)
	src := must.M1(memory.New(engine, vecDesc))
	dst := must.M1(memory.New(engine, vecDesc))

	args, err := BindArgs(p, []ExecArg{{ArgSrc, src}, {ArgDst, dst}, {ArgWorkspace, nil}})
	require.NoError(t, err)
	assert.Len(t, args, 2)
	assert.Same(t, src, args.Input(ArgSrc))
	assert.Same(t, dst, args.Output(ArgDst))
	assert.Nil(t, args.Output(ArgSrc))
	assert.Nil(t, args.Input(ArgBias))

	testCases := []struct {
		name string
		args []ExecArg
	}{
		{"missing-dst", []ExecArg{{ArgSrc, src}}},
		{"unknown-role", []ExecArg{{ArgSrc, src}, {ArgDst, dst}, {ArgWeights, src}}},
		{"duplicate-role", []ExecArg{{ArgSrc, src}, {ArgSrc, src}, {ArgDst, dst}}},
		{"foreign-engine", []ExecArg{{ArgSrc, must.M1(memory.New(other, vecDesc))}, {ArgDst, dst}}},
		{"wrong-desc", []ExecArg{{ArgSrc, must.M1(memory.New(engine, memory.MakeDesc(dtypes.Float32, 5)))}, {ArgDst, dst}}},
		{"empty", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BindArgs(p, tc.args)
			require.Error(t, err)
			assert.Equal(t, status.InvalidArguments, status.Of(err))
		})
	}

	finalized := must.M1(memory.New(engine, vecDesc))
	finalized.Finalize()
	_, err = BindArgs(p, []ExecArg{{ArgSrc, finalized}, {ArgDst, dst}})
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	_, err = BindArgs(nil, nil)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
}

func TestExecute_GoRuntime(t *testing.T) {
	engine := engines.Make(engines.RuntimeGo, 0, nil)
	p, kernel := newCopyPrimitive(t, engine)
	src := must.M1(memory.FromFlat(engine, vecDesc, []float32{1, 2, 3, 4}))
	bias := must.M1(memory.FromFlat(engine, vecDesc, []float32{10, 10, 10, 10}))
	dst := must.M1(memory.New(engine, vecDesc))
	stream := must.M1(streams.New(engine, streams.InOrder))

	args := must.M1(BindArgs(p, []ExecArg{{ArgSrc, src}, {ArgBias, bias}, {ArgDst, dst}}))
	ctx := NewExecContext(stream, args)
	require.NoError(t, Execute(p, ctx))
	assert.Equal(t, []float32{11, 12, 13, 14}, must.M1(memory.Flat[float32](dst)))
	assert.Equal(t, int32(1), kernel.calls.Load())

	// Contexts are single use.
	err := Execute(p, ctx)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	assert.Equal(t, int32(1), kernel.calls.Load())

	// Synchronous validation failures are returned unchanged, nothing is executed.
	kernel.validateErr = status.Errorf(status.Unimplemented, "not today")
	err = Execute(p, NewExecContext(stream, args))
	assert.Equal(t, status.Unimplemented, status.Of(err))
	assert.Equal(t, int32(1), kernel.calls.Load())
}

func TestExecute_EngineMismatch(t *testing.T) {
	engine := engines.Make(engines.RuntimeGo, 0, nil)
	p, kernel := newCopyPrimitive(t, engine)
	stream := must.M1(streams.New(engines.Make(engines.RuntimeGo, 0, nil), streams.InOrder))
	err := Execute(p, NewExecContext(stream, ExecArgs{}))
	assert.Equal(t, status.InvalidArguments, status.Of(err))
	assert.Equal(t, int32(0), kernel.calls.Load())
	assert.Equal(t, status.InvalidArguments, status.Of(Execute(nil, nil)))
}

type failingKernel struct{}

func (failingKernel) Compute(ExecArgs) error { return fmt.Errorf("device exploded") }

func TestExecute_CommandQueue(t *testing.T) {
	device := queue.NewDevice(0, 2)
	engine := queue.NewEngine(device)
	stream := must.M1(streams.New(engine, streams.OutOfOrder))
	defer stream.Finalize()

	p, _ := newCopyPrimitive(t, engine)
	src := must.M1(memory.FromFlat(engine, vecDesc, []float32{1, 2, 3, 4}))
	dst := must.M1(memory.New(engine, vecDesc))
	args := must.M1(BindArgs(p, []ExecArg{{ArgSrc, src}, {ArgDst, dst}}))
	require.NoError(t, Execute(p, NewExecContext(stream, args)))
	require.Equal(t, 1, stream.Deps().Len())
	require.NoError(t, stream.Deps().Events()[0].Wait())
	assert.Equal(t, []float32{1, 2, 3, 4}, must.M1(memory.Flat[float32](dst)))

	// Asynchronous failures are only visible through the event.
	failing := must.M1(New(engine, Descriptor{Kind: "failing"}, failingKernel{}))
	require.NoError(t, Execute(failing, NewExecContext(stream, ExecArgs{})))
	err := stream.Deps().Events()[0].Wait()
	require.Error(t, err)
	assert.Equal(t, status.ExecutionFailure, status.Of(err))
	assert.ErrorContains(t, err, "device exploded")
	assert.Error(t, stream.Wait())
}
