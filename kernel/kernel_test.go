// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/opkind"
)

func int64Arr(vals []int64, nulls []bool) *array.Int64 {
	mem := memory.NewGoAllocator()
	b := array.NewInt64Builder(mem)
	defer b.Release()
	for i, v := range vals {
		if nulls != nil && nulls[i] {
			b.AppendNull()
		} else {
			b.Append(v)
		}
	}
	return b.NewArray().(*array.Int64)
}

func TestCompareEquality(t *testing.T) {
	l := int64Arr([]int64{1, 2, 3}, nil)
	r := int64Arr([]int64{1, 0, 3}, nil)
	out, err := Compare(opkind.Eq, l, r)
	require.NoError(t, err)
	b := out.(*array.Boolean)
	assert.True(t, b.Value(0))
	assert.False(t, b.Value(1))
	assert.True(t, b.Value(2))
}

func TestCompareNullPropagates(t *testing.T) {
	l := int64Arr([]int64{1, 2}, []bool{false, true})
	r := int64Arr([]int64{1, 2}, nil)
	out, err := Compare(opkind.Eq, l, r)
	require.NoError(t, err)
	b := out.(*array.Boolean)
	assert.False(t, b.IsNull(0))
	assert.True(t, b.IsNull(1))
}

func TestCompareTypeMismatchErrors(t *testing.T) {
	l := int64Arr([]int64{1}, nil)
	mem := memory.NewGoAllocator()
	fb := array.NewFloat64Builder(mem)
	fb.Append(1.0)
	r := fb.NewArray()
	fb.Release()

	_, err := Compare(opkind.Eq, l, r)
	assert.Error(t, err)
}

func TestArithmeticDivByZeroYieldsNull(t *testing.T) {
	l := int64Arr([]int64{10}, nil)
	r := int64Arr([]int64{0}, nil)
	out, err := Arithmetic(opkind.Div, l, r)
	require.NoError(t, err)
	assert.True(t, out.IsNull(0))
}

func TestArithmeticAdd(t *testing.T) {
	l := int64Arr([]int64{1, 2}, nil)
	r := int64Arr([]int64{10, 20}, nil)
	out, err := Arithmetic(opkind.Add, l, r)
	require.NoError(t, err)
	a := out.(*array.Int64)
	assert.Equal(t, int64(11), a.Value(0))
	assert.Equal(t, int64(22), a.Value(1))
}

func TestLogicalAndThreeValuedLogic(t *testing.T) {
	mem := memory.NewGoAllocator()
	lb := array.NewBooleanBuilder(mem)
	lb.Append(false)
	lb.AppendNull()
	lb.Append(true)
	l := lb.NewArray().(*array.Boolean)
	lb.Release()

	rb := array.NewBooleanBuilder(mem)
	rb.AppendNull()
	rb.AppendNull()
	rb.AppendNull()
	r := rb.NewArray().(*array.Boolean)
	rb.Release()

	out, err := Logical(opkind.And, l, r)
	require.NoError(t, err)
	b := out.(*array.Boolean)
	assert.False(t, b.IsNull(0))
	assert.False(t, b.Value(0)) // false AND null = false
	assert.True(t, b.IsNull(1)) // null AND null = null
	assert.True(t, b.IsNull(2)) // true AND null = null
}

func TestTakeGathersByPosition(t *testing.T) {
	arr := int64Arr([]int64{10, 20, 30}, nil)
	out, err := Take(arr, []int{2, 0})
	require.NoError(t, err)
	a := out.(*array.Int64)
	assert.Equal(t, int64(30), a.Value(0))
	assert.Equal(t, int64(10), a.Value(1))
}

func TestTakeMaskedForcesNulls(t *testing.T) {
	arr := int64Arr([]int64{10, 20}, nil)
	out, err := TakeMasked(arr, []int{0, 1}, []bool{false, true})
	require.NoError(t, err)
	a := out.(*array.Int64)
	assert.Equal(t, int64(10), a.Value(0))
	assert.True(t, a.IsNull(1))
}

func TestConcatJoinsArraysInOrder(t *testing.T) {
	a := int64Arr([]int64{1, 2}, nil)
	b := int64Arr([]int64{3}, nil)
	out, err := Concat(datatype.Int64, []arrow.Array{a, b})
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	arr := out.(*array.Int64)
	assert.Equal(t, int64(1), arr.Value(0))
	assert.Equal(t, int64(2), arr.Value(1))
	assert.Equal(t, int64(3), arr.Value(2))
}

func TestConcatEmptyYieldsZeroLength(t *testing.T) {
	out, err := Concat(datatype.Int64, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}
