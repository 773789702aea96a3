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

// Package datatype implements the engine's closed scalar type system:
// DataType, Field, Schema, Scalar, ColumnArray and RecordBatch. It is a
// thin, typed layer over github.com/apache/arrow-go/v18's array and
// schema types: arrow-go supplies typed arrays, null bitmaps and a
// record container, and this package narrows them to the six DataTypes
// the engine supports.
package datatype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// DataType is the engine's closed type enum. Type equality is structural:
// two DataType values are equal iff the underlying constants are equal.
type DataType int

const (
	Null DataType = iota
	Bool
	Int64
	UInt64
	Float64
	Utf8
)

func (d DataType) String() string {
	switch d {
	case Null:
		return "Null"
	case Bool:
		return "Bool"
	case Int64:
		return "Int64"
	case UInt64:
		return "UInt64"
	case Float64:
		return "Float64"
	case Utf8:
		return "Utf8"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Arrow returns the arrow.DataType that backs this engine DataType.
func (d DataType) Arrow() arrow.DataType {
	switch d {
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case UInt64:
		return arrow.PrimitiveTypes.Uint64
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Utf8:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}

// FromArrow narrows an arrow.DataType to the engine's closed enum.
func FromArrow(t arrow.DataType) DataType {
	switch t.ID() {
	case arrow.BOOL:
		return Bool
	case arrow.INT64:
		return Int64
	case arrow.UINT64:
		return UInt64
	case arrow.FLOAT64:
		return Float64
	case arrow.STRING, arrow.LARGE_STRING:
		return Utf8
	default:
		return Null
	}
}

// IsNumeric reports whether the dispatch table for arithmetic/MIN/MAX/SUM/
// AVG kernels has an arm for this type.
func (d DataType) IsNumeric() bool {
	return d == Int64 || d == UInt64 || d == Float64
}
