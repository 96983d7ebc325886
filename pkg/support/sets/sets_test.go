// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := MakeWith(3, 1, 2)
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(4))
	s.Insert(4, 4)
	assert.Len(t, s, 4)
	s.Remove(1, 7)
	assert.Equal(t, []int{2, 3, 4}, Sorted(s))
	assert.Equal(t, []int{2}, Sorted(s.Sub(MakeWith(3, 4))))
	assert.Empty(t, Sorted(Make[string]()))
}
