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

// Package physicalplan implements the executable counterpart of the
// logical plan tree: operators that pull arrow-go record batches through
// Scan, Projection, Selection, a nested-loop equi-Join and grouped
// aggregation (physicalplan/aggr), evaluating a resolved-index
// expression tree (physicalplan.PhysicalExpr) via the kernel package.
package physicalplan

import (
	"fmt"
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/errkind"
	"github.com/bigboss2063/goqe/kernel"
	"github.com/bigboss2063/goqe/opkind"
)

var allocator = memory.NewGoAllocator()

// PhysicalExpr evaluates to one ColumnArray over a RecordBatch: either
// an owned reference to an already-materialized array, or a deferred
// (Scalar, length) literal that materializes only when its caller
// actually calls ToArray. Column references have already been
// resolved to a positional index by the planner; there is no by-name
// lookup left at this layer.
type PhysicalExpr interface {
	Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error)

	// ToField derives the Field this expression contributes when
	// evaluated over batch.
	ToField(batch *datatype.RecordBatch) (datatype.Field, error)

	String() string
}

// ColumnExpr reads column Index verbatim.
type ColumnExpr struct {
	Index int
	Name  string
}

// Col builds a resolved column reference.
func Col(index int, name string) PhysicalExpr { return ColumnExpr{Index: index, Name: name} }

func (c ColumnExpr) Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error) {
	if c.Index < 0 || c.Index >= batch.NumCols() {
		return datatype.ColumnArray{}, errkind.NoSuchColumn.New(c.Name)
	}
	return datatype.NewArrayColumn(batch.Column(c.Index)), nil
}

func (c ColumnExpr) ToField(batch *datatype.RecordBatch) (datatype.Field, error) {
	if c.Index < 0 || c.Index >= batch.Schema().Len() {
		return datatype.Field{}, errkind.NoSuchColumn.New(c.Name)
	}
	return batch.Schema().Field(c.Index), nil
}

func (c ColumnExpr) String() string { return fmt.Sprintf("#%s", c.Name) }

// LiteralExpr broadcasts Value to the batch's row count. Evaluate defers
// materialization to whoever calls ToArray on the returned ColumnArray,
// so a literal that is only inspected for its DataType never allocates.
type LiteralExpr struct{ Value datatype.Scalar }

// Lit builds a literal physical expression.
func Lit(v datatype.Scalar) PhysicalExpr { return LiteralExpr{Value: v} }

func (l LiteralExpr) Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error) {
	return datatype.NewLiteralColumn(l.Value, batch.NumRows()), nil
}

func (l LiteralExpr) ToField(*datatype.RecordBatch) (datatype.Field, error) {
	return l.Value.ToField(), nil
}

func (l LiteralExpr) String() string { return l.Value.String() }

// AliasExpr renames the field Inner contributes; values pass through
// untouched.
type AliasExpr struct {
	Name  string
	Inner PhysicalExpr
}

// Alias wraps inner under name.
func Alias(name string, inner PhysicalExpr) PhysicalExpr {
	return AliasExpr{Name: name, Inner: inner}
}

func (a AliasExpr) Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error) {
	return a.Inner.Evaluate(batch)
}

func (a AliasExpr) ToField(batch *datatype.RecordBatch) (datatype.Field, error) {
	field, err := a.Inner.ToField(batch)
	if err != nil {
		return datatype.Field{}, err
	}
	return datatype.NewField(a.Name, field.Type, field.Nullable), nil
}

func (a AliasExpr) String() string { return fmt.Sprintf("%s as %s", a.Inner, a.Name) }

// BinaryExpr applies Op to the per-row results of Left and Right via the
// kernel package, dispatching to Compare, Logical or Arithmetic by Op's
// kind.
type BinaryExpr struct {
	Left  PhysicalExpr
	Op    opkind.Operator
	Right PhysicalExpr
}

// Binary builds a resolved binary expression.
func Binary(left PhysicalExpr, op opkind.Operator, right PhysicalExpr) PhysicalExpr {
	return BinaryExpr{Left: left, Op: op, Right: right}
}

func (b BinaryExpr) Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error) {
	left, err := b.Left.Evaluate(batch)
	if err != nil {
		return datatype.ColumnArray{}, err
	}
	right, err := b.Right.Evaluate(batch)
	if err != nil {
		return datatype.ColumnArray{}, err
	}

	var result arrow.Array
	switch {
	case b.Op.IsComparison():
		result, err = kernel.Compare(b.Op, left.ToArray(), right.ToArray())
	case b.Op.IsLogical():
		result, err = kernel.Logical(b.Op, left.ToArray(), right.ToArray())
	default:
		result, err = kernel.Arithmetic(b.Op, left.ToArray(), right.ToArray())
	}
	if err != nil {
		return datatype.ColumnArray{}, err
	}
	return datatype.NewArrayColumn(result), nil
}

func (b BinaryExpr) ToField(batch *datatype.RecordBatch) (datatype.Field, error) {
	leftField, err := b.Left.ToField(batch)
	if err != nil {
		return datatype.Field{}, err
	}
	rightField, err := b.Right.ToField(batch)
	if err != nil {
		return datatype.Field{}, err
	}
	name := fmt.Sprintf("%s %s %s", leftField.Name, b.Op.Symbol(), rightField.Name)
	if b.Op.IsComparison() || b.Op.IsLogical() {
		return datatype.NewField(name, datatype.Bool, true), nil
	}
	return datatype.NewField(name, leftField.Type, true), nil
}

func (b BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", b.Left, b.Op.Symbol(), b.Right)
}

// ScalarFunc identifies a resolved scalar function, mirroring
// logicalplan.ScalarFunc.
type ScalarFunc int

const (
	Concat ScalarFunc = iota
	Substring
	Abs
	Sqrt
	Power
)

func (f ScalarFunc) String() string {
	switch f {
	case Concat:
		return "CONCAT"
	case Substring:
		return "SUBSTRING"
	case Abs:
		return "ABS"
	case Sqrt:
		return "SQRT"
	case Power:
		return "POWER"
	default:
		return "UNKNOWN"
	}
}

// ScalarFuncExpr applies Func to Args row by row.
type ScalarFuncExpr struct {
	Func ScalarFunc
	Args []PhysicalExpr
}

// ScalarFn builds a resolved scalar function expression.
func ScalarFn(fn ScalarFunc, args ...PhysicalExpr) PhysicalExpr {
	return ScalarFuncExpr{Func: fn, Args: args}
}

func (s ScalarFuncExpr) Evaluate(batch *datatype.RecordBatch) (datatype.ColumnArray, error) {
	cols := make([]arrow.Array, len(s.Args))
	for i, a := range s.Args {
		v, err := a.Evaluate(batch)
		if err != nil {
			return datatype.ColumnArray{}, err
		}
		cols[i] = v.ToArray()
	}

	n := batch.NumRows()
	var result arrow.Array
	var err error
	switch s.Func {
	case Concat:
		out := array.NewStringBuilder(allocator)
		defer out.Release()
		for i := 0; i < n; i++ {
			var anyNull bool
			var sb strings.Builder
			for _, c := range cols {
				if c.IsNull(i) {
					anyNull = true
					break
				}
				sb.WriteString(c.(*array.String).Value(i))
			}
			if anyNull {
				out.AppendNull()
				continue
			}
			out.Append(sb.String())
		}
		result = out.NewArray()
	case Substring:
		if len(cols) != 3 {
			return datatype.ColumnArray{}, errkind.PhysicalPlanError.New("SUBSTRING requires 3 arguments")
		}
		str, start, length := cols[0].(*array.String), cols[1].(*array.Int64), cols[2].(*array.Int64)
		out := array.NewStringBuilder(allocator)
		defer out.Release()
		for i := 0; i < n; i++ {
			if str.IsNull(i) || start.IsNull(i) || length.IsNull(i) {
				out.AppendNull()
				continue
			}
			out.Append(substring(str.Value(i), int(start.Value(i)), int(length.Value(i))))
		}
		result = out.NewArray()
	case Abs, Sqrt, Power:
		result, err = evaluateMathFunc(s.Func, cols, n)
	default:
		return datatype.ColumnArray{}, errkind.PhysicalPlanError.New(fmt.Sprintf("unknown scalar function %d", s.Func))
	}
	if err != nil {
		return datatype.ColumnArray{}, err
	}
	return datatype.NewArrayColumn(result), nil
}

func substring(s string, start, length int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(r) {
		return ""
	}
	end := start + length
	if end > len(r) || length < 0 {
		end = len(r)
	}
	return string(r[start:end])
}

// evaluateMathFunc computes Abs/Sqrt/Power in float64 and truncates the
// result to Int64 before returning, matching the return type
// logicalplan.ScalarFuncExpr.ToField declares for these functions: the
// schema NewProjection caches at construction time expects an Int64
// column.
func evaluateMathFunc(fn ScalarFunc, cols []arrow.Array, n int) (arrow.Array, error) {
	out := array.NewInt64Builder(allocator)
	defer out.Release()

	toFloat := func(c arrow.Array, i int) (float64, bool) {
		if c.IsNull(i) {
			return 0, false
		}
		switch a := c.(type) {
		case *array.Int64:
			return float64(a.Value(i)), true
		case *array.Uint64:
			return float64(a.Value(i)), true
		case *array.Float64:
			return a.Value(i), true
		default:
			return 0, false
		}
	}

	for i := 0; i < n; i++ {
		v, ok := toFloat(cols[0], i)
		if !ok {
			out.AppendNull()
			continue
		}
		switch fn {
		case Abs:
			out.Append(int64(math.Abs(v)))
		case Sqrt:
			out.Append(int64(math.Sqrt(v)))
		case Power:
			if len(cols) != 2 {
				return nil, errkind.PhysicalPlanError.New("POWER requires 2 arguments")
			}
			p, ok := toFloat(cols[1], i)
			if !ok {
				out.AppendNull()
				continue
			}
			out.Append(int64(math.Pow(v, p)))
		}
	}
	return out.NewArray(), nil
}

func (s ScalarFuncExpr) ToField(*datatype.RecordBatch) (datatype.Field, error) {
	dt := datatype.Int64
	switch s.Func {
	case Concat, Substring:
		dt = datatype.Utf8
	}
	return datatype.NewField(s.String(), dt, true), nil
}

func (s ScalarFuncExpr) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", s.Func, strings.Join(parts, ", "))
}
