package kernels

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
)

// ReorderKind is the primitive kind of NewReorder.
const ReorderKind = "reorder"

// NewReorder returns a primitive copying src into dst, converting from srcDType to dstDType.
func NewReorder(engine *engines.Engine, srcDType, dstDType dtypes.DType, dims ...int) (*primitives.Primitive, error) {
	for _, dtype := range []dtypes.DType{srcDType, dstDType} {
		if err := checkDType(ReorderKind, dtype); err != nil {
			return nil, err
		}
	}
	if err := checkDims(ReorderKind, dims...); err != nil {
		return nil, err
	}
	srcDesc, dstDesc := memory.MakeDesc(srcDType, dims...), memory.MakeDesc(dstDType, dims...)
	return primitives.New(engine, primitives.Descriptor{
		Kind: ReorderKind,
		Name: fmt.Sprintf("reorder_%s_to_%s", srcDesc, dstDType),
		Signature: []primitives.ArgSpec{
			{Role: primitives.ArgSrc, Usage: primitives.UsageInput, Desc: srcDesc},
			{Role: primitives.ArgDst, Usage: primitives.UsageOutput, Desc: dstDesc},
		},
	}, reorder{})
}

type reorder struct{}

func (reorder) Compute(args primitives.ExecArgs) error {
	values, err := load(args.Input(primitives.ArgSrc))
	if err != nil {
		return err
	}
	return store(args.Output(primitives.ArgDst), values)
}
