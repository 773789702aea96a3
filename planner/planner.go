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

// Package planner translates an immutable logicalplan.LogicalPlan /
// LogicalExpr tree into its executable physicalplan.PhysicalPlan /
// PhysicalExpr counterpart: every column-by-name reference is resolved
// to a positional index, and every aggregate/scalar function is bound to
// its concrete operator implementation.
package planner

import (
	"fmt"

	"github.com/bigboss2063/goqe/errkind"
	"github.com/bigboss2063/goqe/logicalplan"
	"github.com/bigboss2063/goqe/physicalplan"
	"github.com/bigboss2063/goqe/physicalplan/aggr"
)

// QueryPlanner walks a LogicalPlan and produces a PhysicalPlan, resolving
// all name-based references along the way.
type QueryPlanner struct{}

// New returns a QueryPlanner.
func New() *QueryPlanner { return &QueryPlanner{} }

// CreatePhysicalPlan translates plan, erroring if any column or join key
// name cannot be resolved.
func (p *QueryPlanner) CreatePhysicalPlan(plan logicalplan.LogicalPlan) (physicalplan.PhysicalPlan, error) {
	switch n := plan.(type) {
	case *logicalplan.Scan:
		return physicalplan.NewScan(n.Table, n.Projection, n.Schema()), nil

	case *logicalplan.Projection:
		input, err := p.CreatePhysicalPlan(n.Input)
		if err != nil {
			return nil, err
		}
		exprs := make([]physicalplan.PhysicalExpr, len(n.Exprs))
		for i, e := range n.Exprs {
			pe, err := p.createPhysicalExpr(e, n.Input)
			if err != nil {
				return nil, err
			}
			exprs[i] = pe
		}
		return physicalplan.NewProjection(input, exprs, n.Schema()), nil

	case *logicalplan.Selection:
		input, err := p.CreatePhysicalPlan(n.Input)
		if err != nil {
			return nil, err
		}
		expr, err := p.createPhysicalExpr(n.Expr, n.Input)
		if err != nil {
			return nil, err
		}
		return physicalplan.NewSelection(input, expr), nil

	case *logicalplan.Aggregate:
		return p.planAggregate(n)

	case *logicalplan.Join:
		return p.planJoin(n)

	default:
		return nil, errkind.PhysicalPlanError.New(fmt.Sprintf("unsupported logical plan node %T", plan))
	}
}

func (p *QueryPlanner) planAggregate(n *logicalplan.Aggregate) (physicalplan.PhysicalPlan, error) {
	input, err := p.CreatePhysicalPlan(n.Input)
	if err != nil {
		return nil, err
	}

	groupExprs := make([]physicalplan.PhysicalExpr, len(n.GroupExpr))
	for i, e := range n.GroupExpr {
		pe, err := p.createPhysicalExpr(e, n.Input)
		if err != nil {
			return nil, err
		}
		groupExprs[i] = pe
	}

	aggrExprs := make([]physicalplan.AggrExpr, len(n.AggrExpr))
	for i, ae := range n.AggrExpr {
		arg, err := p.createPhysicalExpr(ae.Arg, n.Input)
		if err != nil {
			return nil, err
		}
		argField, err := ae.Arg.ToField(n.Input)
		if err != nil {
			return nil, err
		}
		aggrExprs[i] = physicalplan.AggrExpr{
			Func:    resolveAggregateFunc(ae.Func),
			Arg:     arg,
			ArgType: argField.Type,
		}
	}

	return physicalplan.NewAggregate(input, groupExprs, aggrExprs, n.Schema()), nil
}

func resolveAggregateFunc(fn logicalplan.AggregateFunc) aggr.AggregateFunc {
	switch fn {
	case logicalplan.Sum:
		return aggr.Sum
	case logicalplan.Min:
		return aggr.Min
	case logicalplan.Max:
		return aggr.Max
	case logicalplan.Avg:
		return aggr.Avg
	case logicalplan.Count:
		return aggr.Count
	default:
		return aggr.Sum
	}
}

func (p *QueryPlanner) planJoin(n *logicalplan.Join) (physicalplan.PhysicalPlan, error) {
	left, err := p.CreatePhysicalPlan(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.CreatePhysicalPlan(n.Right)
	if err != nil {
		return nil, err
	}

	if len(n.On) == 0 {
		return nil, errkind.PhysicalPlanError.New("join requires at least one key pair")
	}

	on := make([]physicalplan.JoinKeyIndex, len(n.On))
	for i, pair := range n.On {
		leftField, err := n.Left.Schema().Lookup(pair.Left)
		if err != nil {
			return nil, errkind.NoSuchColumn.New(pair.Left)
		}
		rightField, err := n.Right.Schema().Lookup(pair.Right)
		if err != nil {
			return nil, errkind.NoSuchColumn.New(pair.Right)
		}
		if leftField.Type != rightField.Type {
			return nil, errkind.PhysicalPlanError.New(fmt.Sprintf(
				"join key type mismatch: %s is %s, %s is %s", pair.Left, leftField.Type, pair.Right, rightField.Type))
		}
		li, _ := n.Left.Schema().IndexOf(pair.Left)
		ri, _ := n.Right.Schema().IndexOf(pair.Right)
		on[i] = physicalplan.JoinKeyIndex{LeftIndex: li, RightIndex: ri}
	}

	return physicalplan.NewNestedLoopJoin(left, right, on, n.Schema()), nil
}

// createPhysicalExpr resolves e against input's schema, translating
// Column name references to positional indices.
func (p *QueryPlanner) createPhysicalExpr(e logicalplan.LogicalExpr, input logicalplan.LogicalPlan) (physicalplan.PhysicalExpr, error) {
	switch expr := e.(type) {
	case logicalplan.ColumnExpr:
		idx, err := input.Schema().IndexOf(expr.Name)
		if err != nil {
			return nil, errkind.NoSuchColumn.New(expr.Name)
		}
		return physicalplan.Col(idx, expr.Name), nil

	case logicalplan.LiteralExpr:
		return physicalplan.Lit(expr.Value), nil

	case logicalplan.AliasExpr:
		inner, err := p.createPhysicalExpr(expr.Expr, input)
		if err != nil {
			return nil, err
		}
		return physicalplan.Alias(expr.Name, inner), nil

	case logicalplan.BinaryExpr:
		left, err := p.createPhysicalExpr(expr.Left, input)
		if err != nil {
			return nil, err
		}
		right, err := p.createPhysicalExpr(expr.Right, input)
		if err != nil {
			return nil, err
		}
		return physicalplan.Binary(left, expr.Op, right), nil

	case logicalplan.ScalarFuncExpr:
		args := make([]physicalplan.PhysicalExpr, len(expr.Args))
		for i, a := range expr.Args {
			pa, err := p.createPhysicalExpr(a, input)
			if err != nil {
				return nil, err
			}
			args[i] = pa
		}
		return physicalplan.ScalarFn(resolveScalarFunc(expr.Func), args...), nil

	default:
		return nil, errkind.PhysicalPlanError.New(fmt.Sprintf("unsupported logical expression %T", e))
	}
}

func resolveScalarFunc(fn logicalplan.ScalarFunc) physicalplan.ScalarFunc {
	switch fn {
	case logicalplan.Concat:
		return physicalplan.Concat
	case logicalplan.Substring:
		return physicalplan.Substring
	case logicalplan.Abs:
		return physicalplan.Abs
	case logicalplan.Sqrt:
		return physicalplan.Sqrt
	case logicalplan.Power:
		return physicalplan.Power
	default:
		return physicalplan.Abs
	}
}
