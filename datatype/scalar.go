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

package datatype

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Scalar is a tagged, nullable value: Null, Bool, Int64, UInt64, Float64 or
// Utf8. Each non-Null variant carries an optional payload; absent ↔ null.
type Scalar struct {
	typ   DataType
	valid bool
	b     bool
	i     int64
	u     uint64
	f     float64
	s     string
}

// NullScalar is the untyped null.
func NullScalar() Scalar { return Scalar{typ: Null} }

// BoolScalar builds a nullable Bool scalar. v == nil means null.
func BoolScalar(v *bool) Scalar {
	if v == nil {
		return Scalar{typ: Bool}
	}
	return Scalar{typ: Bool, valid: true, b: *v}
}

// Int64Scalar builds a nullable Int64 scalar. v == nil means null.
func Int64Scalar(v *int64) Scalar {
	if v == nil {
		return Scalar{typ: Int64}
	}
	return Scalar{typ: Int64, valid: true, i: *v}
}

// UInt64Scalar builds a nullable UInt64 scalar. v == nil means null.
func UInt64Scalar(v *uint64) Scalar {
	if v == nil {
		return Scalar{typ: UInt64}
	}
	return Scalar{typ: UInt64, valid: true, u: *v}
}

// Float64Scalar builds a nullable Float64 scalar. v == nil means null.
func Float64Scalar(v *float64) Scalar {
	if v == nil {
		return Scalar{typ: Float64}
	}
	return Scalar{typ: Float64, valid: true, f: *v}
}

// Utf8Scalar builds a nullable Utf8 scalar. v == nil means null.
func Utf8Scalar(v *string) Scalar {
	if v == nil {
		return Scalar{typ: Utf8}
	}
	return Scalar{typ: Utf8, valid: true, s: *v}
}

func i64(v int64) *int64     { return &v }
func u64(v uint64) *uint64   { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func boolean(v bool) *bool   { return &v }

// Int64Value, Int64Null etc. are convenience constructors used throughout
// the engine and its tests.
func Int64Value(v int64) Scalar     { return Int64Scalar(i64(v)) }
func UInt64Value(v uint64) Scalar   { return UInt64Scalar(u64(v)) }
func Float64Value(v float64) Scalar { return Float64Scalar(f64(v)) }
func Utf8Value(v string) Scalar     { return Utf8Scalar(str(v)) }
func BoolValue(v bool) Scalar       { return BoolScalar(boolean(v)) }

// IsNull reports whether the scalar's payload is absent.
func (s Scalar) IsNull() bool { return s.typ != Null && !s.valid || s.typ == Null }

// DataType reports the scalar's logical data type.
func (s Scalar) DataType() DataType { return s.typ }

func (s Scalar) BoolValue() bool       { return s.b }
func (s Scalar) Int64Value() int64     { return s.i }
func (s Scalar) UInt64Value() uint64   { return s.u }
func (s Scalar) Float64Value() float64 { return s.f }
func (s Scalar) StringValue() string   { return s.s }

// Equals reports whether two scalars carry the same type and value. Two
// nulls of the same type are equal; nulls of different types are not.
func (s Scalar) Equals(other Scalar) bool {
	if s.typ != other.typ {
		return false
	}
	if s.IsNull() || other.IsNull() {
		return s.IsNull() == other.IsNull()
	}
	switch s.typ {
	case Bool:
		return s.b == other.b
	case Int64:
		return s.i == other.i
	case UInt64:
		return s.u == other.u
	case Float64:
		return s.f == other.f
	case Utf8:
		return s.s == other.s
	default:
		return true
	}
}

// String produces the scalar's canonical display form, used e.g. to name a
// literal operand inside a derived BinaryExpr field name.
func (s Scalar) String() string {
	if s.IsNull() {
		return "null"
	}
	switch s.typ {
	case Bool:
		if s.b {
			return "true"
		}
		return "false"
	case Int64:
		return strconv.FormatInt(s.i, 10)
	case UInt64:
		return strconv.FormatUint(s.u, 10)
	case Float64:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	case Utf8:
		return s.s
	default:
		return "null"
	}
}

// ToArray materializes the scalar as a length-n arrow.Array, repeating the
// value (or nulls, for an absent payload) at every position.
func (s Scalar) ToArray(n int) arrow.Array {
	mem := memory.NewGoAllocator()
	switch s.typ {
	case Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if s.valid {
				b.Append(s.b)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if s.valid {
				b.Append(s.i)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case UInt64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if s.valid {
				b.Append(s.u)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if s.valid {
				b.Append(s.f)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	case Utf8:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < n; i++ {
			if s.valid {
				b.Append(s.s)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray()
	default:
		b := array.NewNullBuilder(mem)
		defer b.Release()
		b.AppendNulls(n)
		return b.NewArray()
	}
}

// ScalarAt reads the value at position i out of arr and wraps it as a
// Scalar, preserving nullness. Used by aggregate accumulators and the
// nested-loop join to compare/fold one row at a time.
func ScalarAt(arr arrow.Array, i int) Scalar {
	if arr.IsNull(i) {
		return Scalar{typ: FromArrow(arr.DataType())}
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return BoolValue(a.Value(i))
	case *array.Int64:
		return Int64Value(a.Value(i))
	case *array.Uint64:
		return UInt64Value(a.Value(i))
	case *array.Float64:
		return Float64Value(a.Value(i))
	case *array.String:
		return Utf8Value(a.Value(i))
	default:
		return NullScalar()
	}
}

// ToField derives the Field a Literal logical expression contributes:
// name = scalar's canonical display, nullable = false.
func (s Scalar) ToField() Field {
	return NewField(s.String(), s.typ, false)
}
