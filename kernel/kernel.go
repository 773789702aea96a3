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

// Package kernel bridges the engine's operator set onto arrow-go's
// compute kernels: comparison, boolean and arithmetic evaluation plus
// the take and concat vector operations. Each entry point selects the
// compute function by operator and element type and layers the engine's
// SQL null conventions on top (Kleene and/or, divide-by-zero yields
// null, take-with-null-index for forced-null rows); the elementwise
// work itself happens inside arrow/compute.
package kernel

import (
	"context"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/errkind"
	"github.com/bigboss2063/goqe/opkind"
)

var allocator = memory.NewGoAllocator()

// computeCtx carries the allocator every compute call draws from.
var computeCtx = compute.WithAllocator(context.Background(), allocator)

// callBinary invokes a registered two-argument compute function and
// unwraps the result datum back to an array.
func callBinary(name string, left, right arrow.Array) (arrow.Array, error) {
	ld := compute.NewDatum(left)
	defer ld.Release()
	rd := compute.NewDatum(right)
	defer rd.Release()

	res, err := compute.CallFunction(computeCtx, name, nil, ld, rd)
	if err != nil {
		return nil, errkind.WrapArrow(err)
	}
	defer res.Release()
	return res.(*compute.ArrayDatum).MakeArray(), nil
}

func compareFunc(op opkind.Operator) (string, bool) {
	switch op {
	case opkind.Eq:
		return "equal", true
	case opkind.Neq:
		return "not_equal", true
	case opkind.Lt:
		return "less", true
	case opkind.LtEq:
		return "less_equal", true
	case opkind.Gt:
		return "greater", true
	case opkind.GtEq:
		return "greater_equal", true
	default:
		return "", false
	}
}

// Compare evaluates a typed comparison operator elementwise via the
// compute comparison kernels. If either operand is null at a position
// the result is null at that position. Supported element types: Bool,
// Int64, UInt64, Float64, Utf8 for Eq/Neq; Int64, UInt64, Float64, Utf8
// for ordering comparisons.
func Compare(op opkind.Operator, left, right arrow.Array) (arrow.Array, error) {
	if left.Len() != right.Len() {
		return nil, fmt.Errorf("kernel: compare operands have different lengths %d, %d", left.Len(), right.Len())
	}
	dt := datatype.FromArrow(left.DataType())
	if rdt := datatype.FromArrow(right.DataType()); rdt != dt {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types %s and %s", op.Symbol(), dt, rdt))
	}

	if dt == datatype.Bool {
		return compareBool(op, left.(*array.Boolean), right.(*array.Boolean))
	}

	name, ok := compareFunc(op)
	if !ok {
		return nil, fmt.Errorf("kernel: %v is not a comparison operator", op)
	}
	return callBinary(name, left, right)
}

// compareBool covers Bool equality directly; the compute registry has no
// boolean comparison kernels.
func compareBool(op opkind.Operator, l, r *array.Boolean) (arrow.Array, error) {
	if op != opkind.Eq && op != opkind.Neq {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types Bool and Bool", op.Symbol()))
	}
	out := array.NewBooleanBuilder(allocator)
	defer out.Release()
	for i := 0; i < l.Len(); i++ {
		if l.IsNull(i) || r.IsNull(i) {
			out.AppendNull()
			continue
		}
		eq := l.Value(i) == r.Value(i)
		if op == opkind.Neq {
			eq = !eq
		}
		out.Append(eq)
	}
	return out.NewArray(), nil
}

// Logical evaluates Bool And/Or through the Kleene compute kernels,
// whose three-valued null handling is SQL's: false AND null = false;
// true OR null = true; otherwise a null operand makes the result null.
func Logical(op opkind.Operator, left, right arrow.Array) (arrow.Array, error) {
	if _, ok := left.(*array.Boolean); !ok {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types %s and Bool", op.Symbol(), datatype.FromArrow(left.DataType())))
	}
	if _, ok := right.(*array.Boolean); !ok {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types Bool and %s", op.Symbol(), datatype.FromArrow(right.DataType())))
	}
	if left.Len() != right.Len() {
		return nil, fmt.Errorf("kernel: logical operands have different lengths %d, %d", left.Len(), right.Len())
	}

	switch op {
	case opkind.And:
		return callBinary("and_kleene", left, right)
	case opkind.Or:
		return callBinary("or_kleene", left, right)
	default:
		return nil, fmt.Errorf("kernel: %v is not a logical operator", op)
	}
}

// arith runs one of the compute arithmetic wrappers and unwraps the
// result datum.
func arith(fn func(context.Context, compute.ArithmeticOptions, compute.Datum, compute.Datum) (compute.Datum, error), left, right arrow.Array) (arrow.Array, error) {
	ld := compute.NewDatum(left)
	defer ld.Release()
	rd := compute.NewDatum(right)
	defer rd.Release()

	res, err := fn(computeCtx, compute.ArithmeticOptions{}, ld, rd)
	if err != nil {
		return nil, errkind.WrapArrow(err)
	}
	defer res.Release()
	return res.(*compute.ArrayDatum).MakeArray(), nil
}

// Arithmetic evaluates a numeric +,-,*,/,% elementwise. A null operand
// yields a null result at that position; division and modulus by zero
// also yield null rather than an error.
func Arithmetic(op opkind.Operator, left, right arrow.Array) (arrow.Array, error) {
	if left.Len() != right.Len() {
		return nil, fmt.Errorf("kernel: arithmetic operands have different lengths %d, %d", left.Len(), right.Len())
	}
	dt := datatype.FromArrow(left.DataType())
	if rdt := datatype.FromArrow(right.DataType()); rdt != dt {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types %s and %s", op.Symbol(), dt, rdt))
	}
	if !dt.IsNumeric() {
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %s with types %s and %s", op.Symbol(), dt, dt))
	}

	switch op {
	case opkind.Add:
		return arith(compute.Add, left, right)
	case opkind.Sub:
		return arith(compute.Subtract, left, right)
	case opkind.Mul:
		return arith(compute.Multiply, left, right)
	case opkind.Div:
		return divide(left, right)
	case opkind.Mod:
		return modulo(left, right)
	default:
		return nil, fmt.Errorf("kernel: %v is not an arithmetic operator", op)
	}
}

// divide masks zero divisors before handing the arrays to
// compute.Divide: a zero divisor position is replaced by one so the
// kernel cannot trip, then the result is forced to null there.
func divide(left, right arrow.Array) (arrow.Array, error) {
	mask := zeroMask(right)
	if mask == nil {
		return arith(compute.Divide, left, right)
	}
	cleaned := replaceZeroDivisors(right, mask)
	res, err := arith(compute.Divide, left, cleaned)
	if err != nil {
		return nil, err
	}
	return nullify(res, mask)
}

// zeroMask returns a per-position marker of non-null zero values, or nil
// when the array contains none.
func zeroMask(arr arrow.Array) []bool {
	var mask []bool
	set := func(i int) {
		if mask == nil {
			mask = make([]bool, arr.Len())
		}
		mask[i] = true
	}
	switch a := arr.(type) {
	case *array.Int64:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) && a.Value(i) == 0 {
				set(i)
			}
		}
	case *array.Uint64:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) && a.Value(i) == 0 {
				set(i)
			}
		}
	case *array.Float64:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) && a.Value(i) == 0 {
				set(i)
			}
		}
	}
	return mask
}

// replaceZeroDivisors copies arr with every masked position set to one.
func replaceZeroDivisors(arr arrow.Array, mask []bool) arrow.Array {
	switch a := arr.(type) {
	case *array.Int64:
		b := array.NewInt64Builder(allocator)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			switch {
			case a.IsNull(i):
				b.AppendNull()
			case mask[i]:
				b.Append(1)
			default:
				b.Append(a.Value(i))
			}
		}
		return b.NewArray()
	case *array.Uint64:
		b := array.NewUint64Builder(allocator)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			switch {
			case a.IsNull(i):
				b.AppendNull()
			case mask[i]:
				b.Append(1)
			default:
				b.Append(a.Value(i))
			}
		}
		return b.NewArray()
	case *array.Float64:
		b := array.NewFloat64Builder(allocator)
		defer b.Release()
		for i := 0; i < a.Len(); i++ {
			switch {
			case a.IsNull(i):
				b.AppendNull()
			case mask[i]:
				b.Append(1)
			default:
				b.Append(a.Value(i))
			}
		}
		return b.NewArray()
	default:
		return arr
	}
}

// nullify forces arr to null at every masked position, via an identity
// take whose indices are null there.
func nullify(arr arrow.Array, mask []bool) (arrow.Array, error) {
	idx := make([]int, arr.Len())
	for i := range idx {
		idx[i] = i
	}
	return TakeMasked(arr, idx, mask)
}

// modulo stays a typed loop; the compute registry has no modulo kernel.
// A zero modulus yields null, like divide.
func modulo(left, right arrow.Array) (arrow.Array, error) {
	switch l := left.(type) {
	case *array.Int64:
		r := right.(*array.Int64)
		out := array.NewInt64Builder(allocator)
		defer out.Release()
		for i := 0; i < l.Len(); i++ {
			if l.IsNull(i) || r.IsNull(i) || r.Value(i) == 0 {
				out.AppendNull()
				continue
			}
			out.Append(l.Value(i) % r.Value(i))
		}
		return out.NewArray(), nil
	case *array.Uint64:
		r := right.(*array.Uint64)
		out := array.NewUint64Builder(allocator)
		defer out.Release()
		for i := 0; i < l.Len(); i++ {
			if l.IsNull(i) || r.IsNull(i) || r.Value(i) == 0 {
				out.AppendNull()
				continue
			}
			out.Append(l.Value(i) % r.Value(i))
		}
		return out.NewArray(), nil
	case *array.Float64:
		r := right.(*array.Float64)
		out := array.NewFloat64Builder(allocator)
		defer out.Release()
		for i := 0; i < l.Len(); i++ {
			if l.IsNull(i) || r.IsNull(i) || r.Value(i) == 0 {
				out.AppendNull()
				continue
			}
			out.Append(math.Mod(l.Value(i), r.Value(i)))
		}
		return out.NewArray(), nil
	default:
		return nil, errkind.IntervalError.New(fmt.Sprintf("Cannot evaluate binary expression %% with types %s and %s", datatype.FromArrow(left.DataType()), datatype.FromArrow(right.DataType())))
	}
}

// int64Indices materializes a positional index list as the Int64 array
// the take kernel expects. A position whose nullMask entry is true is
// written as a null index.
func int64Indices(indices []int, nullMask []bool) arrow.Array {
	b := array.NewInt64Builder(allocator)
	defer b.Release()
	for i, v := range indices {
		if nullMask != nil && nullMask[i] {
			b.AppendNull()
			continue
		}
		b.Append(int64(v))
	}
	return b.NewArray()
}

// Take gathers rows from arr by position through the compute take
// kernel.
func Take(arr arrow.Array, indices []int) (arrow.Array, error) {
	out, err := compute.TakeArray(computeCtx, arr, int64Indices(indices, nil))
	if err != nil {
		return nil, errkind.WrapArrow(err)
	}
	return out, nil
}

// TakeMasked gathers rows from arr by position like Take, except that a
// position whose nullMask entry is true is always emitted as null,
// regardless of arr's own value there: the index is written as a null
// and the take kernel propagates it to the output. Selection uses this
// to preserve a row with a null predicate result while blanking every
// column at that position.
func TakeMasked(arr arrow.Array, indices []int, nullMask []bool) (arrow.Array, error) {
	out, err := compute.TakeArray(computeCtx, arr, int64Indices(indices, nullMask))
	if err != nil {
		return nil, errkind.WrapArrow(err)
	}
	return out, nil
}

// Concat concatenates same-typed arrays into one. An empty input list
// returns a zero-length array of the requested type.
func Concat(dt datatype.DataType, arrays []arrow.Array) (arrow.Array, error) {
	if len(arrays) == 0 {
		return array.MakeArrayOfNull(allocator, dt.Arrow(), 0), nil
	}
	out, err := array.Concatenate(arrays, allocator)
	if err != nil {
		return nil, errkind.WrapArrow(err)
	}
	return out, nil
}
