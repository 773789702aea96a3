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
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/kernel"
	"github.com/bigboss2063/goqe/physicalplan/aggr"
)

// AggrExpr is one output aggregate column: a resolved accumulator kind,
// the expression it folds, and the argument's evaluated type (needed to
// pick Sum/Min/Max's numeric dispatch arm).
type AggrExpr struct {
	Func    aggr.AggregateFunc
	Arg     PhysicalExpr
	ArgType datatype.DataType
}

// Aggregate groups Input's rows by GroupExprs and folds each AggrExprs
// entry within the group, via hash aggregation keyed on the group
// expressions' stringified tuple. With no GroupExprs it always produces
// exactly one output row, even over zero input rows (COUNT=0, SUM=0,
// AVG=null).
type Aggregate struct {
	Input      PhysicalPlan
	GroupExprs []PhysicalExpr
	AggrExprs  []AggrExpr
	schema     *datatype.Schema
}

// NewAggregate builds an Aggregate physical operator over a pre-resolved
// output schema (group fields followed by aggregate fields, in that
// order).
func NewAggregate(input PhysicalPlan, groupExprs []PhysicalExpr, aggrExprs []AggrExpr, schema *datatype.Schema) *Aggregate {
	return &Aggregate{Input: input, GroupExprs: groupExprs, AggrExprs: aggrExprs, schema: schema}
}

func (a *Aggregate) Schema() *datatype.Schema { return a.schema }
func (a *Aggregate) Children() []PhysicalPlan { return []PhysicalPlan{a.Input} }
func (a *Aggregate) String() string           { return "AggregateExec" }

type groupState struct {
	keyScalars []datatype.Scalar
	accs       []aggr.Accumulator
}

// rowHasNullGroupKey reports whether any group expression evaluates to
// null at row i; such rows are dropped from grouping entirely.
func rowHasNullGroupKey(groupArrs []arrow.Array, row int) bool {
	for _, arr := range groupArrs {
		if arr.IsNull(row) {
			return true
		}
	}
	return false
}

func (a *Aggregate) newAccumulators() []aggr.Accumulator {
	accs := make([]aggr.Accumulator, len(a.AggrExprs))
	for i, ae := range a.AggrExprs {
		accs[i] = aggr.New(ae.Func, ae.ArgType)
	}
	return accs
}

func (a *Aggregate) Execute(ctx context.Context) ([]*datatype.RecordBatch, error) {
	batches, err := a.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*groupState)
	var order []string

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if batch.NumRows() == 0 {
			continue
		}

		groupArrs := make([]arrow.Array, len(a.GroupExprs))
		for i, e := range a.GroupExprs {
			col, err := e.Evaluate(batch)
			if err != nil {
				return nil, err
			}
			groupArrs[i] = col.ToArray()
		}
		argArrs := make([]arrow.Array, len(a.AggrExprs))
		for i, ae := range a.AggrExprs {
			col, err := ae.Arg.Evaluate(batch)
			if err != nil {
				return nil, err
			}
			argArrs[i] = col.ToArray()
		}

		for row := 0; row < batch.NumRows(); row++ {
			if len(groupArrs) > 0 && rowHasNullGroupKey(groupArrs, row) {
				continue
			}

			keyScalars := make([]datatype.Scalar, len(groupArrs))
			var keyBuilder strings.Builder
			for i, arr := range groupArrs {
				keyScalars[i] = datatype.ScalarAt(arr, row)
				keyBuilder.WriteString(keyScalars[i].DataType().String())
				keyBuilder.WriteByte(':')
				keyBuilder.WriteString(keyScalars[i].String())
				keyBuilder.WriteByte('|')
			}
			key := keyBuilder.String()

			gs, ok := groups[key]
			if !ok {
				gs = &groupState{keyScalars: keyScalars, accs: a.newAccumulators()}
				groups[key] = gs
				order = append(order, key)
			}

			for i, arr := range argArrs {
				gs.accs[i].Accumulate(datatype.ScalarAt(arr, row))
			}
		}
	}

	if len(a.GroupExprs) == 0 && len(order) == 0 {
		groups[""] = &groupState{accs: a.newAccumulators()}
		order = append(order, "")
	}

	cols := make([]arrow.Array, a.schema.Len())
	numGroups := len(order)

	for i := range a.GroupExprs {
		scalars := make([]datatype.Scalar, numGroups)
		for gi, key := range order {
			scalars[gi] = groups[key].keyScalars[i]
		}
		col, err := buildArrayFromScalars(a.schema.Field(i).Type, scalars)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	for i := range a.AggrExprs {
		scalars := make([]datatype.Scalar, numGroups)
		for gi, key := range order {
			scalars[gi] = groups[key].accs[i].Evaluate()
		}
		fieldIdx := len(a.GroupExprs) + i
		col, err := buildArrayFromScalars(a.schema.Field(fieldIdx).Type, scalars)
		if err != nil {
			return nil, err
		}
		cols[fieldIdx] = col
	}

	rb, err := datatype.NewRecordBatch(a.schema, cols)
	if err != nil {
		return nil, err
	}
	return []*datatype.RecordBatch{rb}, nil
}

// buildArrayFromScalars materializes one array of type dt from scalars,
// each contributing a length-1 slice that Concat stitches together.
func buildArrayFromScalars(dt datatype.DataType, scalars []datatype.Scalar) (arrow.Array, error) {
	parts := make([]arrow.Array, len(scalars))
	for i, s := range scalars {
		parts[i] = s.ToArray(1)
	}
	return kernel.Concat(dt, parts)
}
