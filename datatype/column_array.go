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

import "github.com/apache/arrow-go/v18/arrow"

// ColumnArray is either an owned reference to a materialized columnar
// array, or a deferred literal (Scalar, length) that materializes on
// demand. Both forms answer DataType and ToArray in O(1) amortized time;
// literal materialization allocates.
type ColumnArray struct {
	array   arrow.Array
	literal Scalar
	length  int
	isLit   bool
}

// NewArrayColumn wraps an already-materialized array.
func NewArrayColumn(a arrow.Array) ColumnArray {
	return ColumnArray{array: a}
}

// NewLiteralColumn defers materialization of a scalar repeated length times.
func NewLiteralColumn(s Scalar, length int) ColumnArray {
	return ColumnArray{literal: s, length: length, isLit: true}
}

// DataType reports the element type without materializing.
func (c ColumnArray) DataType() DataType {
	if c.isLit {
		return c.literal.DataType()
	}
	return FromArrow(c.array.DataType())
}

// ToArray materializes the column, repeating the literal value if this
// ColumnArray defers a scalar.
func (c ColumnArray) ToArray() arrow.Array {
	if c.isLit {
		return c.literal.ToArray(c.length)
	}
	return c.array
}
