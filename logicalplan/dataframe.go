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

package logicalplan

import "github.com/bigboss2063/goqe/datatype"

// DataFrame is a fluent builder over a LogicalPlan:
// df.Project(...).Filter(...).Aggregate(...).
type DataFrame struct {
	plan LogicalPlan
}

// NewDataFrame wraps plan as the starting point of a fluent chain.
func NewDataFrame(plan LogicalPlan) *DataFrame {
	return &DataFrame{plan: plan}
}

// Plan returns the wrapped LogicalPlan.
func (d *DataFrame) Plan() LogicalPlan { return d.plan }

// Schema returns the wrapped plan's output schema.
func (d *DataFrame) Schema() *datatype.Schema { return d.plan.Schema() }

// Project appends a Projection over exprs.
func (d *DataFrame) Project(exprs ...LogicalExpr) (*DataFrame, error) {
	p, err := NewProjection(d.plan, exprs...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{plan: p}, nil
}

// Filter appends a Selection keeping rows where expr is true.
func (d *DataFrame) Filter(expr LogicalExpr) *DataFrame {
	return &DataFrame{plan: NewSelection(d.plan, expr)}
}

// Aggregate appends an Aggregate grouping by groupExpr and folding
// aggrExpr.
func (d *DataFrame) Aggregate(groupExpr []LogicalExpr, aggrExpr []AggregateFuncExpr) (*DataFrame, error) {
	a, err := NewAggregate(d.plan, groupExpr, aggrExpr)
	if err != nil {
		return nil, err
	}
	return &DataFrame{plan: a}, nil
}

// Join appends an equi-join of this frame (as Left) with right (as
// Right) on the given key pairs.
func (d *DataFrame) Join(right *DataFrame, on []JoinOn, joinType JoinType) *DataFrame {
	return &DataFrame{plan: NewJoin(d.plan, right.plan, on, joinType)}
}

// JoinKeys is Join, but built from two parallel key-name lists paired
// positionally; it errors if the lists differ in length.
func (d *DataFrame) JoinKeys(right *DataFrame, leftKeys, rightKeys []string, joinType JoinType) (*DataFrame, error) {
	on, err := JoinOnKeys(leftKeys, rightKeys)
	if err != nil {
		return nil, err
	}
	return d.Join(right, on, joinType), nil
}
