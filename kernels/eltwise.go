package kernels

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
	"github.com/gomlx/interop/status"
)

// EltwiseKind is the primitive kind of NewEltwise.
const EltwiseKind = "eltwise"

// EltwiseAlgorithm selects the element-wise function.
type EltwiseAlgorithm int

//go:generate go tool enumer -type EltwiseAlgorithm -trimprefix=Eltwise -transform=lower -output=gen_eltwisealgorithm_enumer.go eltwise.go

const (
	// EltwiseReLU computes x if x > 0, alpha*x otherwise.
	EltwiseReLU EltwiseAlgorithm = iota

	// EltwiseLinear computes alpha*x + beta.
	EltwiseLinear
)

// NewEltwise returns a primitive computing dst = f(src) element-wise, with src and dst of the same
// shape.
func NewEltwise(engine *engines.Engine, algorithm EltwiseAlgorithm, alpha, beta float64,
	dtype dtypes.DType, dims ...int) (*primitives.Primitive, error) {
	if err := checkDType(EltwiseKind, dtype); err != nil {
		return nil, err
	}
	if err := checkDims(EltwiseKind, dims...); err != nil {
		return nil, err
	}
	var fn func(x float64) float64
	switch algorithm {
	case EltwiseReLU:
		fn = func(x float64) float64 {
			if x > 0 {
				return x
			}
			return alpha * x
		}
	case EltwiseLinear:
		fn = func(x float64) float64 { return alpha*x + beta }
	default:
		return nil, status.Errorf(status.Unimplemented, "%s: algorithm %s not supported", EltwiseKind, algorithm)
	}
	desc := memory.MakeDesc(dtype, dims...)
	return primitives.New(engine, primitives.Descriptor{
		Kind: EltwiseKind,
		Name: fmt.Sprintf("eltwise_%s_%s", algorithm, desc),
		Signature: []primitives.ArgSpec{
			{Role: primitives.ArgSrc, Usage: primitives.UsageInput, Desc: desc},
			{Role: primitives.ArgDst, Usage: primitives.UsageOutput, Desc: desc},
		},
	}, &eltwise{fn: fn})
}

type eltwise struct {
	fn func(x float64) float64
}

func (e *eltwise) Compute(args primitives.ExecArgs) error {
	values, err := load(args.Input(primitives.ArgSrc))
	if err != nil {
		return err
	}
	for ii, v := range values {
		values[ii] = e.fn(v)
	}
	return store(args.Output(primitives.ArgDst), values)
}
