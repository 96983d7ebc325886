package kernels

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
	"github.com/gomlx/interop/status"
	"github.com/gomlx/interop/streams"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// run executes p synchronously on a Go runtime stream.
func run(t *testing.T, p *primitives.Primitive, args ...primitives.ExecArg) {
	stream := must.M1(streams.New(p.Engine(), streams.InOrder))
	execArgs, err := primitives.BindArgs(p, args)
	require.NoError(t, err)
	require.NoError(t, primitives.Execute(p, primitives.NewExecContext(stream, execArgs)))
}

func newEngine() *engines.Engine { return engines.Make(engines.RuntimeGo, 0, nil) }

func TestMatMul(t *testing.T) {
	engine := newEngine()
	p := must.M1(NewMatMul(engine, dtypes.Float32, 2, 3, 2, true))
	assert.Equal(t, MatMulKind, p.Descriptor().Kind)
	src := must.M1(memory.FromFlat(engine, memory.MakeDesc(dtypes.Float32, 2, 3), []float32{1, 2, 3, 4, 5, 6}))
	weights := must.M1(memory.FromFlat(engine, memory.MakeDesc(dtypes.Float32, 3, 2), []float32{1, 0, 0, 1, 1, 1}))
	bias := must.M1(memory.FromFlat(engine, memory.MakeDesc(dtypes.Float32, 2), []float32{0.5, -0.5}))
	dst := must.M1(memory.New(engine, memory.MakeDesc(dtypes.Float32, 2, 2)))
	run(t, p,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: src},
		primitives.ExecArg{Role: primitives.ArgWeights, Memory: weights},
		primitives.ExecArg{Role: primitives.ArgBias, Memory: bias},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float32{4.5, 4.5, 10.5, 10.5}, must.M1(memory.Flat[float32](dst)))

	// Without bias the role is not recognized.
	noBias := must.M1(NewMatMul(engine, dtypes.Float32, 2, 3, 2, false))
	_, err := primitives.BindArgs(noBias, []primitives.ExecArg{
		{Role: primitives.ArgSrc, Memory: src},
		{Role: primitives.ArgWeights, Memory: weights},
		{Role: primitives.ArgBias, Memory: bias},
		{Role: primitives.ArgDst, Memory: dst},
	})
	assert.Equal(t, status.InvalidArguments, status.Of(err))

	_, err = NewMatMul(engine, dtypes.Int32, 1, 1, 1, false)
	assert.Equal(t, status.Unimplemented, status.Of(err))
	_, err = NewMatMul(engine, dtypes.Float32, 0, 1, 1, false)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
}

func TestEltwise(t *testing.T) {
	engine := newEngine()
	desc := memory.MakeDesc(dtypes.Float64, 4)
	src := must.M1(memory.FromFlat(engine, desc, []float64{-2, -1, 0, 3}))
	dst := must.M1(memory.New(engine, desc))

	relu := must.M1(NewEltwise(engine, EltwiseReLU, 0, 0, dtypes.Float64, 4))
	run(t, relu,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: src},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float64{0, 0, 0, 3}, must.M1(memory.Flat[float64](dst)))

	leaky := must.M1(NewEltwise(engine, EltwiseReLU, 0.5, 0, dtypes.Float64, 4))
	run(t, leaky,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: src},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float64{-1, -0.5, 0, 3}, must.M1(memory.Flat[float64](dst)))

	linear := must.M1(NewEltwise(engine, EltwiseLinear, 2, 1, dtypes.Float64, 4))
	run(t, linear,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: src},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float64{-3, -1, 1, 7}, must.M1(memory.Flat[float64](dst)))

	_, err := NewEltwise(engine, EltwiseAlgorithm(9), 0, 0, dtypes.Float64, 4)
	assert.Equal(t, status.Unimplemented, status.Of(err))
}

func TestBinaryAddAndSum(t *testing.T) {
	engine := newEngine()
	desc := memory.MakeDesc(dtypes.Float32, 3)
	a := must.M1(memory.FromFlat(engine, desc, []float32{1, 2, 3}))
	b := must.M1(memory.FromFlat(engine, desc, []float32{10, 20, 30}))
	dst := must.M1(memory.New(engine, desc))

	add := must.M1(NewBinaryAdd(engine, dtypes.Float32, 3))
	run(t, add,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: a},
		primitives.ExecArg{Role: primitives.ArgSrc1, Memory: b},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float32{11, 22, 33}, must.M1(memory.Flat[float32](dst)))

	sum := must.M1(NewSum(engine, []float64{1, -1, 2}, dtypes.Float32, 3))
	run(t, sum,
		primitives.ExecArg{Role: primitives.MultipleSrc(0), Memory: a},
		primitives.ExecArg{Role: primitives.MultipleSrc(1), Memory: b},
		primitives.ExecArg{Role: primitives.MultipleSrc(2), Memory: a},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	assert.Equal(t, []float32{-7, -14, -21}, must.M1(memory.Flat[float32](dst)))

	_, err := NewSum(engine, nil, dtypes.Float32, 3)
	assert.Equal(t, status.InvalidArguments, status.Of(err))
}

func TestReorder(t *testing.T) {
	engine := newEngine()
	src := must.M1(memory.FromFlat(engine, memory.MakeDesc(dtypes.Float32, 2), []float32{1.5, -0.25}))
	dst := must.M1(memory.New(engine, memory.MakeDesc(dtypes.Float16, 2)))
	p := must.M1(NewReorder(engine, dtypes.Float32, dtypes.Float16, 2))
	run(t, p,
		primitives.ExecArg{Role: primitives.ArgSrc, Memory: src},
		primitives.ExecArg{Role: primitives.ArgDst, Memory: dst})
	flat := must.M1(memory.Flat[float16.Float16](dst))
	assert.Equal(t, float32(1.5), flat[0].Float32())
	assert.Equal(t, float32(-0.25), flat[1].Float32())
}

func TestFillAndValues(t *testing.T) {
	engine := newEngine()
	m := must.M1(memory.New(engine, memory.MakeDesc(dtypes.Float16, 3)))
	require.NoError(t, Fill(m, func(ii int) float64 { return float64(ii) / 2 }))
	assert.Equal(t, []float64{0, 0.5, 1}, must.M1(Values(m)))

	m.Finalize()
	assert.Equal(t, status.InvalidArguments, status.Of(Fill(m, func(int) float64 { return 0 })))
	_, err := Values(m)
	assert.Error(t, err)
}

func TestComputeOnFinalizedMemory(t *testing.T) {
	engine := newEngine()
	desc := memory.MakeDesc(dtypes.Float32, 4)
	relu := must.M1(NewEltwise(engine, EltwiseReLU, 0, 0, dtypes.Float32, 4))
	assert.Equal(t, "relu", EltwiseReLU.String())
	src := must.M1(memory.New(engine, desc))
	dst := must.M1(memory.New(engine, desc))
	args := must.M1(primitives.BindArgs(relu, []primitives.ExecArg{
		{Role: primitives.ArgSrc, Memory: src},
		{Role: primitives.ArgDst, Memory: dst},
	}))

	// Finalized after binding, before the kernel runs.
	dst.Finalize()
	err := relu.Kernel().Compute(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalized")

	src.Finalize()
	err = relu.Kernel().Compute(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalized")

	// Missing arguments show up as nil memory.
	err = relu.Kernel().Compute(primitives.ExecArgs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalized")
}
