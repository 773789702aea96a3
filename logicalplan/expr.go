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

// Package logicalplan implements the immutable logical expression and
// logical plan trees: Scan, Projection, Selection, Aggregate and Join
// over a typed expression algebra (Column, Literal, Alias, BinaryExpr,
// ScalarFunc, AggregateFunc). Every node computes its output schema at
// construction time; schemas are cached and never recomputed.
package logicalplan

import (
	"fmt"
	"strings"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/opkind"
)

// LogicalExpr is an abstract representation of a query condition,
// projection computation or aggregate fold. Every variant can derive the
// Field it contributes to its enclosing Projection/Aggregate's schema.
// The concrete variants (ColumnExpr, LiteralExpr, AliasExpr, BinaryExpr,
// ScalarFuncExpr) are exported so the planner can type-switch on them
// when translating to a physical expression tree.
type LogicalExpr interface {
	// ToField computes the Field this expression contributes, resolving
	// Column references against input's schema.
	ToField(input LogicalPlan) (datatype.Field, error)

	String() string
}

// Col builds a reference to a named column.
func Col(name string) LogicalExpr { return ColumnExpr{Name: name} }

// Lit builds a literal value expression.
func Lit(s datatype.Scalar) LogicalExpr { return LiteralExpr{Value: s} }

// As aliases expr under name.
func As(name string, expr LogicalExpr) LogicalExpr { return AliasExpr{Name: name, Expr: expr} }

// Binary builds a binary expression.
func Binary(left LogicalExpr, op opkind.Operator, right LogicalExpr) LogicalExpr {
	return BinaryExpr{Left: left, Op: op, Right: right}
}

// Eq, Neq, Lt, LtEq, Gt, GtEq, And, Or, Add, Sub, Mul, Div, Mod are
// convenience constructors over Binary.
func Eq(l, r LogicalExpr) LogicalExpr   { return Binary(l, opkind.Eq, r) }
func Neq(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Neq, r) }
func Lt(l, r LogicalExpr) LogicalExpr   { return Binary(l, opkind.Lt, r) }
func LtEq(l, r LogicalExpr) LogicalExpr { return Binary(l, opkind.LtEq, r) }
func Gt(l, r LogicalExpr) LogicalExpr   { return Binary(l, opkind.Gt, r) }
func GtEq(l, r LogicalExpr) LogicalExpr { return Binary(l, opkind.GtEq, r) }
func And(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.And, r) }
func Or(l, r LogicalExpr) LogicalExpr   { return Binary(l, opkind.Or, r) }
func Add(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Add, r) }
func Sub(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Sub, r) }
func Mul(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Mul, r) }
func Div(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Div, r) }
func Mod(l, r LogicalExpr) LogicalExpr  { return Binary(l, opkind.Mod, r) }

// --- Column ---

// ColumnExpr references a named column of the enclosing plan's input.
type ColumnExpr struct{ Name string }

func (c ColumnExpr) ToField(input LogicalPlan) (datatype.Field, error) {
	return input.Schema().Lookup(c.Name)
}

func (c ColumnExpr) String() string { return fmt.Sprintf("Column(%q)", c.Name) }

// --- Literal ---

// LiteralExpr is a constant value, broadcast to every row.
type LiteralExpr struct{ Value datatype.Scalar }

func (l LiteralExpr) ToField(LogicalPlan) (datatype.Field, error) {
	return l.Value.ToField(), nil
}

func (l LiteralExpr) String() string {
	return fmt.Sprintf("Literal(%s(%s))", l.Value.DataType(), l.Value.String())
}

// --- Alias ---

// AliasExpr renames Expr's contributed field to Name.
type AliasExpr struct {
	Name string
	Expr LogicalExpr
}

func (a AliasExpr) ToField(input LogicalPlan) (datatype.Field, error) {
	field, err := a.Expr.ToField(input)
	if err != nil {
		return datatype.Field{}, err
	}
	return datatype.NewField(a.Name, field.Type, field.Nullable), nil
}

func (a AliasExpr) String() string { return fmt.Sprintf("Alias(%q, %s)", a.Name, a.Expr) }

// --- Binary ---

// BinaryExpr applies Op to Left and Right.
type BinaryExpr struct {
	Left  LogicalExpr
	Op    opkind.Operator
	Right LogicalExpr
}

func (b BinaryExpr) ToField(input LogicalPlan) (datatype.Field, error) {
	leftField, err := b.Left.ToField(input)
	if err != nil {
		return datatype.Field{}, err
	}

	var rightName string
	if lit, ok := b.Right.(LiteralExpr); ok {
		rightName = lit.Value.String()
	} else {
		rightField, err := b.Right.ToField(input)
		if err != nil {
			return datatype.Field{}, err
		}
		rightName = rightField.Name
	}

	name := fmt.Sprintf("%s %s %s", leftField.Name, b.Op.Symbol(), rightName)

	if b.Op.IsComparison() || b.Op.IsLogical() {
		return datatype.NewField(name, datatype.Bool, true), nil
	}
	return datatype.NewField(name, leftField.Type, true), nil
}

func (b BinaryExpr) String() string {
	return fmt.Sprintf("BinaryExpr(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}

// ScalarFunc identifies a scalar function.
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

// ScalarFuncExpr applies Func to Args.
type ScalarFuncExpr struct {
	Func ScalarFunc
	Args []LogicalExpr
}

// ScalarFn builds a scalar function expression over args.
func ScalarFn(fn ScalarFunc, args ...LogicalExpr) LogicalExpr {
	return ScalarFuncExpr{Func: fn, Args: args}
}

func (s ScalarFuncExpr) ToField(LogicalPlan) (datatype.Field, error) {
	dt := datatype.Int64
	switch s.Func {
	case Concat, Substring:
		dt = datatype.Utf8
	case Abs, Sqrt, Power:
		dt = datatype.Int64
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

// AggregateFunc identifies an aggregate function.
type AggregateFunc int

const (
	Sum AggregateFunc = iota
	Min
	Max
	Avg
	Count
)

func (f AggregateFunc) String() string {
	switch f {
	case Sum:
		return "SUM"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	default:
		return "UNKNOWN"
	}
}

// AggregateFuncExpr is the logical representation of one aggregate output
// column: a function applied to one input expression.
type AggregateFuncExpr struct {
	Func AggregateFunc
	Arg  LogicalExpr
}

// Aggr builds an AggregateFuncExpr.
func Aggr(fn AggregateFunc, arg LogicalExpr) AggregateFuncExpr {
	return AggregateFuncExpr{Func: fn, Arg: arg}
}

// ToField derives the aggregate's output field: SUM/MIN/MAX/AVG preserve
// the numeric input type except AVG which is always Float64; COUNT is
// always UInt64.
func (a AggregateFuncExpr) ToField(input LogicalPlan) (datatype.Field, error) {
	argField, err := a.Arg.ToField(input)
	if err != nil {
		return datatype.Field{}, err
	}

	name := fmt.Sprintf("%s(%s)", a.Func, argField.Name)

	switch a.Func {
	case Avg:
		return datatype.NewField(name, datatype.Float64, true), nil
	case Count:
		return datatype.NewField(name, datatype.UInt64, true), nil
	default:
		return datatype.NewField(name, argField.Type, true), nil
	}
}

func (a AggregateFuncExpr) String() string {
	return fmt.Sprintf("%s(%s)", a.Func, a.Arg)
}
