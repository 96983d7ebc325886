// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels provides reference primitives (matmul, element-wise, binary add, sum and reorder)
// that run on any engine.
//
// They are simple, not fast: values are computed in float64 and converted back to the memory's
// dtype. Float32, Float64 and Float16 are supported.
package kernels

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/memory"
	"github.com/gomlx/interop/pkg/support/sets"
	"github.com/gomlx/interop/status"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// SupportedDTypes are the dtypes the kernels accept.
var SupportedDTypes = sets.MakeWith(dtypes.Float32, dtypes.Float64, dtypes.Float16)

func checkDType(kind string, dtype dtypes.DType) error {
	if !SupportedDTypes.Has(dtype) {
		return status.Errorf(status.Unimplemented, "%s: dtype %s not supported", kind, dtype)
	}
	return nil
}

func checkDims(kind string, dims ...int) error {
	for _, dim := range dims {
		if dim <= 0 {
			return status.InvalidArgumentsf("%s: invalid dimensions %v", kind, dims)
		}
	}
	return nil
}

// load returns the values of m converted to float64.
func load(m *memory.Storage) ([]float64, error) {
	if !m.IsValid() {
		return nil, errors.Errorf("kernels: memory %s is missing or was finalized", m)
	}
	switch flat := m.Flat().(type) {
	case []float32:
		return toFloat64(flat), nil
	case []float64:
		return toFloat64(flat), nil
	case []float16.Float16:
		values := make([]float64, len(flat))
		for ii, v := range flat {
			values[ii] = float64(v.Float32())
		}
		return values, nil
	}
	return nil, errors.Errorf("kernels: memory %s has unsupported dtype", m)
}

// store converts values to the dtype of m and writes them.
func store(m *memory.Storage, values []float64) error {
	if !m.IsValid() {
		return errors.Errorf("kernels: memory %s is missing or was finalized", m)
	}
	switch flat := m.Flat().(type) {
	case []float32:
		fromFloat64(flat, values)
	case []float64:
		fromFloat64(flat, values)
	case []float16.Float16:
		for ii, v := range values {
			flat[ii] = float16.Fromfloat32(float32(v))
		}
	default:
		return errors.Errorf("kernels: memory %s has unsupported dtype", m)
	}
	return nil
}

func toFloat64[T constraints.Float](flat []T) []float64 {
	values := make([]float64, len(flat))
	for ii, v := range flat {
		values[ii] = float64(v)
	}
	return values
}

func fromFloat64[T constraints.Float](flat []T, values []float64) {
	for ii, v := range values {
		flat[ii] = T(v)
	}
}

// Fill sets every element ii of m to value(ii), converted to the dtype of m.
// Fill doesn't synchronize with pending work using m.
func Fill(m *memory.Storage, value func(ii int) float64) error {
	if !m.IsValid() {
		return status.InvalidArgumentsf("kernels.Fill(): memory %s was finalized", m)
	}
	values := make([]float64, m.Desc().Size())
	for ii := range values {
		values[ii] = value(ii)
	}
	return store(m, values)
}

// Values returns the elements of m converted to float64.
func Values(m *memory.Storage) ([]float64, error) {
	if !m.IsValid() {
		return nil, status.InvalidArgumentsf("kernels.Values(): invalid memory %s", m)
	}
	return load(m)
}
