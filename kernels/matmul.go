// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/primitives"
)

// MatMulKind is the primitive kind of NewMatMul.
const MatMulKind = "matmul"

// NewMatMul returns a primitive computing dst[m, n] = src[m, k] x weights[k, n] (+ bias[n]).
//
// The bias argument is only part of the signature if withBias is set.
func NewMatMul(engine *engines.Engine, dtype dtypes.DType, m, k, n int, withBias bool) (*primitives.Primitive, error) {
	if err := checkDType(MatMulKind, dtype); err != nil {
		return nil, err
	}
	if err := checkDims(MatMulKind, m, k, n); err != nil {
		return nil, err
	}
	signature := []primitives.ArgSpec{
		{Role: primitives.ArgSrc, Usage: primitives.UsageInput, Desc: memory.MakeDesc(dtype, m, k)},
		{Role: primitives.ArgWeights, Usage: primitives.UsageInput, Desc: memory.MakeDesc(dtype, k, n)},
		{Role: primitives.ArgDst, Usage: primitives.UsageOutput, Desc: memory.MakeDesc(dtype, m, n)},
	}
	if withBias {
		signature = append(signature, primitives.ArgSpec{
			Role: primitives.ArgBias, Usage: primitives.UsageInput, Desc: memory.MakeDesc(dtype, n),
		})
	}
	return primitives.New(engine, primitives.Descriptor{
		Kind:      MatMulKind,
		Name:      fmt.Sprintf("matmul_%s_%dx%dx%d", dtype, m, k, n),
		Signature: signature,
	}, &matMul{m: m, k: k, n: n})
}

type matMul struct {
	m, k, n int
}

func (mm *matMul) Compute(args primitives.ExecArgs) error {
	src, err := load(args.Input(primitives.ArgSrc))
	if err != nil {
		return err
	}
	weights, err := load(args.Input(primitives.ArgWeights))
	if err != nil {
		return err
	}
	var bias []float64
	if biasMem := args.Input(primitives.ArgBias); biasMem != nil {
		if bias, err = load(biasMem); err != nil {
			return err
		}
	}
	dst := make([]float64, mm.m*mm.n)
	for row := range mm.m {
		for col := range mm.n {
			var acc float64
			for ii := range mm.k {
				acc += src[row*mm.k+ii] * weights[ii*mm.n+col]
			}
			if bias != nil {
				acc += bias[col]
			}
			dst[row*mm.n+col] = acc
		}
	}
	return store(args.Output(primitives.ArgDst), dst)
}
