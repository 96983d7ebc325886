// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package memory holds the memory storage handles passed as arguments to primitives.
//
// Only what the execution bridge needs is modeled: a descriptor (dtype and dimensions) and flat
// storage bound to the engine that owns it. Layouts and format conversions are left to the
// primitives themselves.
package memory

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/interop/engines"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Desc describes the contents of a Storage: its dtype and dimensions (row-major).
type Desc struct {
	DType      dtypes.DType
	Dimensions []int
}

// MakeDesc returns a Desc with the given dtype and dimensions.
func MakeDesc(dtype dtypes.DType, dimensions ...int) Desc {
	return Desc{DType: dtype, Dimensions: slices.Clone(dimensions)}
}

// Ok returns whether the Desc is valid: a known dtype and non-negative dimensions.
func (d Desc) Ok() bool {
	if d.DType == dtypes.InvalidDType {
		return false
	}
	for _, dim := range d.Dimensions {
		if dim < 0 {
			return false
		}
	}
	return true
}

// Rank is the number of dimensions.
func (d Desc) Rank() int { return len(d.Dimensions) }

// Size returns the number of elements.
func (d Desc) Size() int {
	size := 1
	for _, dim := range d.Dimensions {
		size *= dim
	}
	return size
}

// Memory returns the number of bytes used by the elements.
func (d Desc) Memory() uintptr {
	return uintptr(d.Size()) * uintptr(d.DType.Size())
}

// Equal returns whether d and d2 have the same dtype and dimensions.
func (d Desc) Equal(d2 Desc) bool {
	return d.DType == d2.DType && slices.Equal(d.Dimensions, d2.Dimensions)
}

// String implements fmt.Stringer.
func (d Desc) String() string {
	if len(d.Dimensions) == 0 {
		return fmt.Sprintf("(%s)", d.DType)
	}
	parts := make([]string, len(d.Dimensions))
	for ii, dim := range d.Dimensions {
		parts[ii] = fmt.Sprint(dim)
	}
	return fmt.Sprintf("(%s)[%s]", d.DType, strings.Join(parts, " "))
}

// Storage is a memory handle: flat data described by a Desc, bound to an engine.
//
// The flat data is a slice of the Go type of the dtype (e.g. []float32, []float16.Float16).
type Storage struct {
	id     uuid.UUID
	engine *engines.Engine
	desc   Desc
	flat   any
}

// New allocates a zero-initialized Storage for desc on the engine.
func New(engine *engines.Engine, desc Desc) (*Storage, error) {
	if engine == nil {
		return nil, errors.New("memory.New() requires a non-nil engine")
	}
	if !desc.Ok() {
		return nil, errors.Errorf("memory.New() invalid descriptor %s", desc)
	}
	goType := desc.DType.GoType()
	if goType == nil {
		return nil, errors.Errorf("memory.New() dtype %s not supported", desc.DType)
	}
	size := desc.Size()
	return &Storage{
		id:     uuid.New(),
		engine: engine,
		desc:   Desc{DType: desc.DType, Dimensions: slices.Clone(desc.Dimensions)},
		flat:   reflect.MakeSlice(reflect.SliceOf(goType), size, size).Interface(),
	}, nil
}

// FromFlat creates a Storage on the engine with a copy of the flat values, which must be a slice
// with the Go type and the number of elements of desc.
func FromFlat(engine *engines.Engine, desc Desc, flat any) (*Storage, error) {
	m, err := New(engine, desc)
	if err != nil {
		return nil, err
	}
	if err = m.CopyFromFlat(flat); err != nil {
		return nil, err
	}
	return m, nil
}

// ID returns the unique id of the storage.
func (m *Storage) ID() uuid.UUID { return m.id }

// Engine returns the engine owning the storage.
func (m *Storage) Engine() *engines.Engine { return m.engine }

// Desc returns the storage descriptor.
func (m *Storage) Desc() Desc { return m.desc }

// IsValid returns whether the storage hasn't been finalized.
func (m *Storage) IsValid() bool { return m != nil && m.flat != nil }

// Flat returns the underlying flat slice. It's nil after Finalize.
//
// Mutating it while a primitive using the storage is executing is a race.
func (m *Storage) Flat() any { return m.flat }

// CopyFromFlat copies the flat values into the storage.
func (m *Storage) CopyFromFlat(flat any) error {
	if err := m.checkFlat(flat); err != nil {
		return err
	}
	reflect.Copy(reflect.ValueOf(m.flat), reflect.ValueOf(flat))
	return nil
}

// CopyToFlat copies the storage values into flat.
func (m *Storage) CopyToFlat(flat any) error {
	if err := m.checkFlat(flat); err != nil {
		return err
	}
	reflect.Copy(reflect.ValueOf(flat), reflect.ValueOf(m.flat))
	return nil
}

func (m *Storage) checkFlat(flat any) error {
	if !m.IsValid() {
		return errors.Errorf("storage %s was already finalized", m)
	}
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return errors.Errorf("flat values must be a slice, got %T", flat)
	}
	if dtypes.FromGoType(flatV.Type().Elem()) != m.desc.DType {
		return errors.Errorf("flat values of type %T don't match storage dtype %s", flat, m.desc.DType)
	}
	if flatV.Len() != m.desc.Size() {
		return errors.Errorf("flat values have %d elements, storage %s requires %d", flatV.Len(), m.desc, m.desc.Size())
	}
	return nil
}

// Finalize frees the storage immediately. It should not be used afterwards.
func (m *Storage) Finalize() {
	m.flat = nil
}

// String implements fmt.Stringer.
func (m *Storage) String() string {
	if m == nil {
		return "<nil memory>"
	}
	return fmt.Sprintf("memory(%s, %s, %s)", m.desc, humanize.Bytes(uint64(m.desc.Memory())), m.id.String()[:8])
}

// Flat returns the storage flat data as a []T, or an error if the dtype doesn't match.
func Flat[T any](m *Storage) ([]T, error) {
	if !m.IsValid() {
		return nil, errors.Errorf("storage %s is not valid", m)
	}
	flat, ok := m.flat.([]T)
	if !ok {
		var t T
		return nil, errors.Errorf("storage %s holds %s, not %T", m, m.desc.DType, t)
	}
	return flat, nil
}
