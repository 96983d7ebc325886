package kernels

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
	"github.com/gomlx/interop/status"
)

const (
	// BinaryAddKind is the primitive kind of NewBinaryAdd.
	BinaryAddKind = "binary_add"

	// SumKind is the primitive kind of NewSum.
	SumKind = "sum"
)

// NewBinaryAdd returns a primitive computing dst = src + src_1, all of the same shape.
func NewBinaryAdd(engine *engines.Engine, dtype dtypes.DType, dims ...int) (*primitives.Primitive, error) {
	if err := checkDType(BinaryAddKind, dtype); err != nil {
		return nil, err
	}
	if err := checkDims(BinaryAddKind, dims...); err != nil {
		return nil, err
	}
	desc := memory.MakeDesc(dtype, dims...)
	return primitives.New(engine, primitives.Descriptor{
		Kind: BinaryAddKind,
		Name: fmt.Sprintf("binary_add_%s", desc),
		Signature: []primitives.ArgSpec{
			{Role: primitives.ArgSrc, Usage: primitives.UsageInput, Desc: desc},
			{Role: primitives.ArgSrc1, Usage: primitives.UsageInput, Desc: desc},
			{Role: primitives.ArgDst, Usage: primitives.UsageOutput, Desc: desc},
		},
	}, &sum{sources: []primitives.ArgRole{primitives.ArgSrc, primitives.ArgSrc1}})
}

// NewSum returns a primitive computing the weighted sum dst = sum_i scales[i] * multiple_src_i.
// The number of sources is len(scales).
func NewSum(engine *engines.Engine, scales []float64, dtype dtypes.DType, dims ...int) (*primitives.Primitive, error) {
	if err := checkDType(SumKind, dtype); err != nil {
		return nil, err
	}
	if err := checkDims(SumKind, dims...); err != nil {
		return nil, err
	}
	if len(scales) == 0 {
		return nil, status.InvalidArgumentsf("%s requires at least one source", SumKind)
	}
	desc := memory.MakeDesc(dtype, dims...)
	signature := make([]primitives.ArgSpec, 0, len(scales)+1)
	sources := make([]primitives.ArgRole, len(scales))
	for ii := range scales {
		sources[ii] = primitives.MultipleSrc(ii)
		signature = append(signature, primitives.ArgSpec{Role: sources[ii], Usage: primitives.UsageInput, Desc: desc})
	}
	signature = append(signature, primitives.ArgSpec{Role: primitives.ArgDst, Usage: primitives.UsageOutput, Desc: desc})
	return primitives.New(engine, primitives.Descriptor{
		Kind:      SumKind,
		Name:      fmt.Sprintf("sum%d_%s", len(scales), desc),
		Signature: signature,
	}, &sum{sources: sources, scales: append([]float64(nil), scales...)})
}

// sum adds its sources, each multiplied by its scale (1 if scales is nil).
type sum struct {
	sources []primitives.ArgRole
	scales  []float64
}

func (s *sum) Compute(args primitives.ExecArgs) error {
	var acc []float64
	for ii, role := range s.sources {
		values, err := load(args.Input(role))
		if err != nil {
			return err
		}
		scale := 1.0
		if s.scales != nil {
			scale = s.scales[ii]
		}
		if acc == nil {
			acc = make([]float64, len(values))
		}
		for jj, v := range values {
			acc[jj] += scale * v
		}
	}
	return store(args.Output(primitives.ArgDst), acc)
}
