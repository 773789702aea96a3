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

// Package aggr implements the per-group accumulators used by the
// Aggregate physical operator: Sum, Min, Max, Avg and Count, each folding
// one Scalar at a time and clearing back to its zero state between
// groups.
package aggr

import (
	"math"

	"github.com/bigboss2063/goqe/datatype"
)

// AggregateFunc identifies which accumulator a group-by column builds,
// mirroring logicalplan.AggregateFunc.
type AggregateFunc int

const (
	Sum AggregateFunc = iota
	Min
	Max
	Avg
	Count
)

// Accumulator folds a stream of Scalars (one per row of a group) into a
// single result Scalar. Every accumulator, including Count, skips null
// inputs.
//
// Count never produces Null, and over the numeric types neither do Sum,
// Min and Max: an empty group leaves them at their initial state (SUM=0,
// COUNT=0, MIN=type.max, MAX=type.min). Min and Max over Utf8 have no
// such identity and evaluate to a Utf8 null for an empty group; Sum over
// a non-numeric type evaluates to Null. Avg evaluates to Null when it
// has accumulated zero non-null values, rather than dividing by zero.
type Accumulator interface {
	// Accumulate folds v into the running state.
	Accumulate(v datatype.Scalar)

	// Evaluate returns the accumulator's current result.
	Evaluate() datatype.Scalar

	// Clear resets the accumulator to its zero state, ready for a new
	// group.
	Clear()
}

// New builds the accumulator for fn over values of type dt. Count ignores
// dt (its result is always UInt64); Avg always produces Float64; Sum/Min/
// Max preserve dt.
func New(fn AggregateFunc, dt datatype.DataType) Accumulator {
	switch fn {
	case Sum:
		return &sumAcc{dt: dt}
	case Min:
		a := &minAcc{dt: dt}
		a.Clear()
		return a
	case Max:
		a := &maxAcc{dt: dt}
		a.Clear()
		return a
	case Avg:
		return &avgAcc{}
	case Count:
		return &countAcc{}
	default:
		return &sumAcc{dt: dt}
	}
}

// --- Sum ---

type sumAcc struct {
	dt datatype.DataType
	i  int64
	u  uint64
	f  float64
}

func (a *sumAcc) Accumulate(v datatype.Scalar) {
	if v.IsNull() {
		return
	}
	switch a.dt {
	case datatype.Int64:
		a.i += v.Int64Value()
	case datatype.UInt64:
		a.u += v.UInt64Value()
	case datatype.Float64:
		a.f += v.Float64Value()
	}
}

func (a *sumAcc) Evaluate() datatype.Scalar {
	switch a.dt {
	case datatype.Int64:
		return datatype.Int64Value(a.i)
	case datatype.UInt64:
		return datatype.UInt64Value(a.u)
	case datatype.Float64:
		return datatype.Float64Value(a.f)
	default:
		return datatype.NullScalar()
	}
}

func (a *sumAcc) Clear() { *a = sumAcc{dt: a.dt} }

// --- Min / Max ---

// typeMax/typeMin give each numeric DataType its SQL-style MIN/MAX
// identity element: an unmatched MIN stays at the type's maximum, an
// unmatched MAX stays at its minimum, until a real value folds in.
func typeMax(dt datatype.DataType) datatype.Scalar {
	switch dt {
	case datatype.Int64:
		return datatype.Int64Value(math.MaxInt64)
	case datatype.UInt64:
		return datatype.UInt64Value(math.MaxUint64)
	case datatype.Float64:
		return datatype.Float64Value(math.Inf(1))
	case datatype.Utf8:
		return datatype.Utf8Scalar(nil)
	default:
		return datatype.NullScalar()
	}
}

func typeMin(dt datatype.DataType) datatype.Scalar {
	switch dt {
	case datatype.Int64:
		return datatype.Int64Value(math.MinInt64)
	case datatype.UInt64:
		return datatype.UInt64Value(0)
	case datatype.Float64:
		return datatype.Float64Value(math.Inf(-1))
	case datatype.Utf8:
		return datatype.Utf8Scalar(nil)
	default:
		return datatype.NullScalar()
	}
}

type minAcc struct {
	dt  datatype.DataType
	cur datatype.Scalar
}

func (a *minAcc) Accumulate(v datatype.Scalar) {
	if v.IsNull() {
		return
	}
	if a.cur.IsNull() || less(a.dt, v, a.cur) {
		a.cur = v
	}
}

func (a *minAcc) Evaluate() datatype.Scalar { return a.cur }

func (a *minAcc) Clear() { a.cur = typeMax(a.dt) }

type maxAcc struct {
	dt  datatype.DataType
	cur datatype.Scalar
}

func (a *maxAcc) Accumulate(v datatype.Scalar) {
	if v.IsNull() {
		return
	}
	if a.cur.IsNull() || less(a.dt, a.cur, v) {
		a.cur = v
	}
}

func (a *maxAcc) Evaluate() datatype.Scalar { return a.cur }

func (a *maxAcc) Clear() { a.cur = typeMin(a.dt) }

func less(dt datatype.DataType, a, b datatype.Scalar) bool {
	switch dt {
	case datatype.Int64:
		return a.Int64Value() < b.Int64Value()
	case datatype.UInt64:
		return a.UInt64Value() < b.UInt64Value()
	case datatype.Float64:
		return a.Float64Value() < b.Float64Value()
	case datatype.Utf8:
		return a.StringValue() < b.StringValue()
	default:
		return false
	}
}

// --- Avg ---

// avgAcc always accumulates in Float64 and always evaluates to Float64,
// regardless of the input column's numeric type. Its result is Null when
// no non-null value was ever accumulated, not zero and not a
// divide-by-zero.
type avgAcc struct {
	sum   float64
	count int64
}

func (a *avgAcc) Accumulate(v datatype.Scalar) {
	if v.IsNull() {
		return
	}
	a.sum += numericFloat(v)
	a.count++
}

func numericFloat(v datatype.Scalar) float64 {
	switch v.DataType() {
	case datatype.Int64:
		return float64(v.Int64Value())
	case datatype.UInt64:
		return float64(v.UInt64Value())
	case datatype.Float64:
		return v.Float64Value()
	default:
		return 0
	}
}

// Evaluate returns a Float64-typed null for an empty group, so the
// output column it lands in still materializes as a Float64 array.
func (a *avgAcc) Evaluate() datatype.Scalar {
	if a.count == 0 {
		return datatype.Float64Scalar(nil)
	}
	return datatype.Float64Value(a.sum / float64(a.count))
}

func (a *avgAcc) Clear() { *a = avgAcc{} }

// --- Count ---

// countAcc counts non-null values of any element type; it never returns
// Null.
type countAcc struct{ n uint64 }

func (a *countAcc) Accumulate(v datatype.Scalar) {
	if v.IsNull() {
		return
	}
	a.n++
}
func (a *countAcc) Evaluate() datatype.Scalar { return datatype.UInt64Value(a.n) }
func (a *countAcc) Clear()                    { a.n = 0 }
