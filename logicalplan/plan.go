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

import (
	"fmt"
	"strings"

	"github.com/bigboss2063/goqe/datasource"
	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/errkind"
)

// LogicalPlan is an immutable node in a logical query tree. Every node
// knows its output Schema and its child plans; the set of concrete
// variants (Scan, Projection, Selection, Aggregate, Join) is closed to
// this package.
type LogicalPlan interface {
	// Schema returns this node's output schema.
	Schema() *datatype.Schema

	// Children returns this node's direct input plans, in display order.
	Children() []LogicalPlan

	String() string

	render(depth int) string
}

// indent returns depth*2 spaces, matching the two-space tree indent used
// throughout this engine's plan rendering.
func indent(depth int) string { return strings.Repeat("  ", depth) }

// Render prints p's full tree using the field ordering and depth rules
// each node defines.
func Render(p LogicalPlan) string { return p.render(0) }

// field writes one "name: value\n" line at depth.
func field(b *strings.Builder, depth int, name, value string) {
	fmt.Fprintf(b, "%s%s: %s\n", indent(depth), name, value)
}

// subplan writes one "name:\n" line at depth (the enclosing node's field
// depth, i.e. parent depth + 1), followed by child rendered one level
// deeper still, so child ends up at parent depth + 2.
func subplan(b *strings.Builder, depth int, name string, child LogicalPlan) {
	fmt.Fprintf(b, "%s%s:\n", indent(depth), name)
	b.WriteString(child.render(depth + 1))
}

// --- Scan ---

// Scan reads a Table, optionally projected to a column subset.
type Scan struct {
	Table      datasource.Table
	Projection []int

	schema *datatype.Schema
}

// NewScan builds a Scan over table. projection may be nil to select every
// column.
func NewScan(table datasource.Table, projection []int) *Scan {
	s := &Scan{Table: table, Projection: projection}
	full := table.Schema()
	if projection == nil {
		s.schema = full
		return s
	}
	fields := make([]datatype.Field, len(projection))
	for i, idx := range projection {
		fields[i] = full.Field(idx)
	}
	s.schema = datatype.NewSchema(fields...)
	return s
}

func (s *Scan) Schema() *datatype.Schema { return s.schema }
func (s *Scan) Children() []LogicalPlan  { return nil }
func (s *Scan) String() string           { return Render(s) }

func (s *Scan) render(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sScan:\n", indent(depth))
	field(&b, depth+1, "source_type", s.Table.SourceType())
	field(&b, depth+1, "projection", projectionNames(s.Table.Schema(), s.Projection))
	return b.String()
}

func projectionNames(full *datatype.Schema, projection []int) string {
	if projection == nil {
		return "[]"
	}
	names := make([]string, len(projection))
	for i, idx := range projection {
		names[i] = full.Field(idx).Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// --- Projection ---

// Projection computes a fixed list of output expressions over Input.
type Projection struct {
	Input LogicalPlan
	Exprs []LogicalExpr

	schema *datatype.Schema
}

// NewProjection builds a Projection, deriving its schema by resolving
// each expr against input's schema.
func NewProjection(input LogicalPlan, exprs ...LogicalExpr) (*Projection, error) {
	fields := make([]datatype.Field, len(exprs))
	for i, e := range exprs {
		f, err := e.ToField(input)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return &Projection{Input: input, Exprs: exprs, schema: datatype.NewSchema(fields...)}, nil
}

func (p *Projection) Schema() *datatype.Schema { return p.schema }
func (p *Projection) Children() []LogicalPlan  { return []LogicalPlan{p.Input} }
func (p *Projection) String() string           { return Render(p) }

func (p *Projection) render(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sProjection:\n", indent(depth))
	parts := make([]string, len(p.Exprs))
	for i, e := range p.Exprs {
		parts[i] = e.String()
	}
	field(&b, depth+1, "exprs", "["+strings.Join(parts, ", ")+"]")
	subplan(&b, depth+1, "input", p.Input)
	field(&b, depth+1, "schema", schemaString(p.schema))
	return b.String()
}

// --- Selection ---

// Selection (aka Filter/WHERE) keeps the rows of Input for which Expr
// evaluates true.
type Selection struct {
	Input LogicalPlan
	Expr  LogicalExpr
}

// NewSelection builds a Selection. Selection never changes its input's
// schema.
func NewSelection(input LogicalPlan, expr LogicalExpr) *Selection {
	return &Selection{Input: input, Expr: expr}
}

func (s *Selection) Schema() *datatype.Schema { return s.Input.Schema() }
func (s *Selection) Children() []LogicalPlan  { return []LogicalPlan{s.Input} }
func (s *Selection) String() string           { return Render(s) }

func (s *Selection) render(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sSelection:\n", indent(depth))
	field(&b, depth+1, "expr", s.Expr.String())
	subplan(&b, depth+1, "input", s.Input)
	return b.String()
}

// --- Aggregate ---

// Aggregate groups Input's rows by GroupExpr and folds AggrExpr over each
// group.
type Aggregate struct {
	Input     LogicalPlan
	GroupExpr []LogicalExpr
	AggrExpr  []AggregateFuncExpr

	schema *datatype.Schema
}

// NewAggregate builds an Aggregate, deriving a schema of GroupExpr's
// fields followed by AggrExpr's fields, in that order.
func NewAggregate(input LogicalPlan, groupExpr []LogicalExpr, aggrExpr []AggregateFuncExpr) (*Aggregate, error) {
	fields := make([]datatype.Field, 0, len(groupExpr)+len(aggrExpr))
	for _, e := range groupExpr {
		f, err := e.ToField(input)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	for _, a := range aggrExpr {
		f, err := a.ToField(input)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return &Aggregate{
		Input:     input,
		GroupExpr: groupExpr,
		AggrExpr:  aggrExpr,
		schema:    datatype.NewSchema(fields...),
	}, nil
}

func (a *Aggregate) Schema() *datatype.Schema { return a.schema }
func (a *Aggregate) Children() []LogicalPlan  { return []LogicalPlan{a.Input} }
func (a *Aggregate) String() string           { return Render(a) }

func (a *Aggregate) render(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sAggregate:\n", indent(depth))
	subplan(&b, depth+1, "input", a.Input)
	field(&b, depth+1, "group_expr", exprList(a.GroupExpr))
	aggrParts := make([]string, len(a.AggrExpr))
	for i, e := range a.AggrExpr {
		aggrParts[i] = e.String()
	}
	field(&b, depth+1, "aggr_expr", "["+strings.Join(aggrParts, ", ")+"]")
	field(&b, depth+1, "schema", schemaString(a.schema))
	return b.String()
}

func exprList(exprs []LogicalExpr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// --- Join ---

// JoinType distinguishes the supported join kinds.
type JoinType int

const (
	InnerJoin JoinType = iota
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "Inner"
	default:
		return "Unknown"
	}
}

// JoinOn is one equi-join key pair: Left and Right name columns of the
// join's left and right plans respectively that must compare equal.
type JoinOn struct {
	Left  string
	Right string
}

// JoinOnKeys pairs leftKeys with rightKeys positionally. It errors with
// LogicalPlanError when the two lists differ in length.
func JoinOnKeys(leftKeys, rightKeys []string) ([]JoinOn, error) {
	if len(leftKeys) != len(rightKeys) {
		return nil, errkind.LogicalPlanError.New(fmt.Sprintf(
			"join key lists must be the same length: %d left keys, %d right keys", len(leftKeys), len(rightKeys)))
	}
	on := make([]JoinOn, len(leftKeys))
	for i := range leftKeys {
		on[i] = JoinOn{Left: leftKeys[i], Right: rightKeys[i]}
	}
	return on, nil
}

// Join is a nested-loop equi-join of Left and Right on the conjunction of
// On's key pairs.
type Join struct {
	Left     LogicalPlan
	Right    LogicalPlan
	On       []JoinOn
	JoinType JoinType

	schema *datatype.Schema
}

// NewJoin builds a Join, deriving a schema that is Left's schema
// concatenated with Right's schema.
func NewJoin(left, right LogicalPlan, on []JoinOn, joinType JoinType) *Join {
	return &Join{
		Left:     left,
		Right:    right,
		On:       on,
		JoinType: joinType,
		schema:   left.Schema().Join(right.Schema()),
	}
}

func (j *Join) Schema() *datatype.Schema { return j.schema }
func (j *Join) Children() []LogicalPlan  { return []LogicalPlan{j.Left, j.Right} }
func (j *Join) String() string           { return Render(j) }

func (j *Join) render(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sJoin:\n", indent(depth))
	subplan(&b, depth+1, "left", j.Left)
	subplan(&b, depth+1, "right", j.Right)
	onParts := make([]string, len(j.On))
	for i, o := range j.On {
		onParts[i] = fmt.Sprintf("%s = %s", o.Left, o.Right)
	}
	field(&b, depth+1, "on", "["+strings.Join(onParts, ", ")+"]")
	field(&b, depth+1, "join_type", j.JoinType.String())
	field(&b, depth+1, "schema", schemaString(j.schema))
	return b.String()
}

func schemaString(s *datatype.Schema) string {
	parts := make([]string, s.Len())
	for i, f := range s.Fields() {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
