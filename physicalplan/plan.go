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

package physicalplan

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/bigboss2063/goqe/datasource"
	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/errkind"
	"github.com/bigboss2063/goqe/kernel"
)

// PhysicalPlan is an executable node: it knows its output Schema and can
// pull its full result set of RecordBatches given a context, which is
// checked for cancellation between batches.
type PhysicalPlan interface {
	Schema() *datatype.Schema
	Execute(ctx context.Context) ([]*datatype.RecordBatch, error)
	Children() []PhysicalPlan
	String() string
}

// Scan pulls batches directly from a Table, honoring an optional column
// projection.
type Scan struct {
	Table      datasource.Table
	Projection []int
	schema     *datatype.Schema
}

// NewScan builds a Scan physical operator. schema is the node's
// pre-resolved output schema (computed by the planner from the logical
// Scan it mirrors).
func NewScan(table datasource.Table, projection []int, schema *datatype.Schema) *Scan {
	return &Scan{Table: table, Projection: projection, schema: schema}
}

func (s *Scan) Schema() *datatype.Schema { return s.schema }
func (s *Scan) Children() []PhysicalPlan { return nil }
func (s *Scan) String() string           { return fmt.Sprintf("ScanExec: %s", s.Table.SourceType()) }

func (s *Scan) Execute(ctx context.Context) ([]*datatype.RecordBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Table.Scan(s.Projection)
}

// Projection evaluates Exprs over each of Input's batches.
type Projection struct {
	Input  PhysicalPlan
	Exprs  []PhysicalExpr
	schema *datatype.Schema
}

// NewProjection builds a Projection physical operator over a
// pre-resolved output schema.
func NewProjection(input PhysicalPlan, exprs []PhysicalExpr, schema *datatype.Schema) *Projection {
	return &Projection{Input: input, Exprs: exprs, schema: schema}
}

func (p *Projection) Schema() *datatype.Schema { return p.schema }
func (p *Projection) Children() []PhysicalPlan { return []PhysicalPlan{p.Input} }
func (p *Projection) String() string           { return "ProjectionExec" }

func (p *Projection) Execute(ctx context.Context) ([]*datatype.RecordBatch, error) {
	batches, err := p.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}

	// An identity projection (no output fields at all) passes the input
	// through unchanged rather than producing a zero-column, zero-row
	// result.
	if p.schema.Len() == 0 {
		return batches, nil
	}

	out := make([]*datatype.RecordBatch, 0, len(batches))
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols := make([]arrow.Array, len(p.Exprs))
		for i, e := range p.Exprs {
			col, err := e.Evaluate(batch)
			if err != nil {
				return nil, err
			}
			cols[i] = col.ToArray()
		}
		rb, err := datatype.NewRecordBatch(p.schema, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, nil
}

// Selection keeps rows where Expr evaluates true; a null predicate
// result keeps the row too, but with null forced into every output
// column, while a false predicate drops the row.
type Selection struct {
	Input PhysicalPlan
	Expr  PhysicalExpr
}

// NewSelection builds a Selection physical operator.
func NewSelection(input PhysicalPlan, expr PhysicalExpr) *Selection {
	return &Selection{Input: input, Expr: expr}
}

func (s *Selection) Schema() *datatype.Schema { return s.Input.Schema() }
func (s *Selection) Children() []PhysicalPlan { return []PhysicalPlan{s.Input} }
func (s *Selection) String() string           { return "SelectionExec" }

// Execute concatenates every input batch into one, so the predicate's
// output aligns against all rows at once. A row whose predicate is true
// is kept verbatim; one whose predicate is null is kept with every
// output column forced to null at that position; a false predicate
// drops the row entirely.
func (s *Selection) Execute(ctx context.Context) ([]*datatype.RecordBatch, error) {
	batches, err := s.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := concatBatches(s.Input.Schema(), batches)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask, err := s.Expr.Evaluate(batch)
	if err != nil {
		return nil, err
	}
	boolMask, ok := mask.ToArray().(*array.Boolean)
	if !ok {
		return nil, errkind.PhysicalPlanError.New("selection predicate did not evaluate to Bool")
	}

	indices := make([]int, 0, batch.NumRows())
	nullMask := make([]bool, 0, batch.NumRows())
	for i := 0; i < batch.NumRows(); i++ {
		switch {
		case boolMask.IsNull(i):
			indices = append(indices, i)
			nullMask = append(nullMask, true)
		case boolMask.Value(i):
			indices = append(indices, i)
			nullMask = append(nullMask, false)
		}
	}

	cols := make([]arrow.Array, batch.NumCols())
	for i := 0; i < batch.NumCols(); i++ {
		col, err := kernel.TakeMasked(batch.Column(i), indices, nullMask)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	rb, err := datatype.NewRecordBatch(batch.Schema(), cols)
	if err != nil {
		return nil, err
	}
	out := []*datatype.RecordBatch{rb}
	return out, nil
}

// NestedLoopJoin pairs every row of Left with every row of Right whose
// resolved key columns all compare equal: an AND across every On pair,
// evaluated symmetrically on both sides.
type NestedLoopJoin struct {
	Left, Right PhysicalPlan
	On          []JoinKeyIndex
	schema      *datatype.Schema
}

// JoinKeyIndex is one equi-join key pair, resolved to positional indices
// within Left's and Right's schemas respectively.
type JoinKeyIndex struct {
	LeftIndex  int
	RightIndex int
}

// NewNestedLoopJoin builds a NestedLoopJoin physical operator.
func NewNestedLoopJoin(left, right PhysicalPlan, on []JoinKeyIndex, schema *datatype.Schema) *NestedLoopJoin {
	return &NestedLoopJoin{Left: left, Right: right, On: on, schema: schema}
}

func (j *NestedLoopJoin) Schema() *datatype.Schema { return j.schema }
func (j *NestedLoopJoin) Children() []PhysicalPlan { return []PhysicalPlan{j.Left, j.Right} }
func (j *NestedLoopJoin) String() string           { return "NestedLoopJoinExec" }

// Execute materializes both children by concatenating all their
// batches, then for every (left row, right row) pair where every
// key-pair compares non-null-equal on both sides, emits one joined row
// via positional take against the two materialized batches.
func (j *NestedLoopJoin) Execute(ctx context.Context) ([]*datatype.RecordBatch, error) {
	if len(j.On) == 0 {
		return nil, errkind.PhysicalPlanError.New("join requires at least one key pair")
	}

	leftBatches, err := j.Left.Execute(ctx)
	if err != nil {
		return nil, err
	}
	rightBatches, err := j.Right.Execute(ctx)
	if err != nil {
		return nil, err
	}

	left, err := concatBatches(j.Left.Schema(), leftBatches)
	if err != nil {
		return nil, err
	}
	right, err := concatBatches(j.Right.Schema(), rightBatches)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	leftIdx := make([]int, 0)
	rightIdx := make([]int, 0)
	for li := 0; li < left.NumRows(); li++ {
		for ri := 0; ri < right.NumRows(); ri++ {
			if j.keysMatch(left, li, right, ri) {
				leftIdx = append(leftIdx, li)
				rightIdx = append(rightIdx, ri)
			}
		}
	}

	cols := make([]arrow.Array, 0, left.NumCols()+right.NumCols())
	for i := 0; i < left.NumCols(); i++ {
		col, err := kernel.Take(left.Column(i), leftIdx)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	for i := 0; i < right.NumCols(); i++ {
		col, err := kernel.Take(right.Column(i), rightIdx)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	rb, err := datatype.NewRecordBatch(j.schema, cols)
	if err != nil {
		return nil, err
	}
	return []*datatype.RecordBatch{rb}, nil
}

func (j *NestedLoopJoin) keysMatch(left *datatype.RecordBatch, li int, right *datatype.RecordBatch, ri int) bool {
	for _, on := range j.On {
		lv := datatype.ScalarAt(left.Column(on.LeftIndex), li)
		rv := datatype.ScalarAt(right.Column(on.RightIndex), ri)
		if lv.IsNull() || rv.IsNull() || !lv.Equals(rv) {
			return false
		}
	}
	return true
}

// concatBatches materializes batches into a single RecordBatch of
// schema, column by column, so a predicate or join key can be evaluated
// against every row at once. A nil or empty batches list yields a
// well-typed zero-row batch.
func concatBatches(schema *datatype.Schema, batches []*datatype.RecordBatch) (*datatype.RecordBatch, error) {
	cols := make([]arrow.Array, schema.Len())
	for i, f := range schema.Fields() {
		parts := make([]arrow.Array, len(batches))
		for b, batch := range batches {
			parts[b] = batch.Column(i)
		}
		col, err := kernel.Concat(f.Type, parts)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return datatype.NewRecordBatch(schema, cols)
}
