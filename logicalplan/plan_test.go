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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigboss2063/goqe/datasource"
	"github.com/bigboss2063/goqe/datatype"
)

// stubTable is a minimal datasource.Table used to build plans without
// touching the filesystem.
type stubTable struct {
	schema *datatype.Schema
}

func (s *stubTable) Schema() *datatype.Schema { return s.schema }
func (s *stubTable) SourceType() string       { return "CSV file" }
func (s *stubTable) Scan(projection []int) ([]*datatype.RecordBatch, error) {
	return nil, nil
}

var _ datasource.Table = (*stubTable)(nil)

func peopleTable() *stubTable {
	return &stubTable{schema: datatype.NewSchema(
		datatype.NewField("id", datatype.Int64, false),
		datatype.NewField("name", datatype.Utf8, false),
		datatype.NewField("age", datatype.Int64, false),
		datatype.NewField("score", datatype.Float64, false),
	)}
}

// Projection.Schema() has exactly one field per expression.
func TestProjectionSchemaFieldCount(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	proj, err := NewProjection(scan, Col("name"), Col("score"))
	require.NoError(t, err)
	assert.Equal(t, 2, proj.Schema().Len())
}

// Aggregate.Schema() has group field count plus aggregate field count.
func TestAggregateSchemaFieldCount(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	agg, err := NewAggregate(scan, []LogicalExpr{Col("age")}, []AggregateFuncExpr{Aggr(Sum, Col("score"))})
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Schema().Len())
}

// Join.Schema() is left field count plus right field count.
func TestJoinSchemaIsConcatenation(t *testing.T) {
	left := NewScan(peopleTable(), nil)
	right := NewScan(peopleTable(), nil)
	join := NewJoin(left, right, []JoinOn{{Left: "id", Right: "id"}}, InnerJoin)
	assert.Equal(t, left.Schema().Len()+right.Schema().Len(), join.Schema().Len())
}

func TestColumnExprNoSuchField(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	_, err := NewProjection(scan, Col("nope"))
	assert.Error(t, err)
}

func TestAliasPreservesNullability(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	f, err := As("n", Col("name")).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, "n", f.Name)
	assert.False(t, f.Nullable)
}

func TestBinaryExprFieldIsBoolForComparison(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	f, err := Gt(Col("age"), Lit(datatype.Int64Value(18))).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, datatype.Bool, f.Type)
}

func TestBinaryExprFieldPreservesArithmeticType(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	f, err := Add(Col("score"), Lit(datatype.Float64Value(1.0))).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, datatype.Float64, f.Type)
}

func TestAggregateFuncExprFieldTypes(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	sumField, err := Aggr(Sum, Col("score")).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, datatype.Float64, sumField.Type)

	avgField, err := Aggr(Avg, Col("score")).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, datatype.Float64, avgField.Type)

	countField, err := Aggr(Count, Col("id")).ToField(scan)
	require.NoError(t, err)
	assert.Equal(t, datatype.UInt64, countField.Type)
}

// Rendering filter(age >= 24).project([name, score]) produces the
// indented tree form: two-space indent per depth, Projection fields in
// order exprs/input/schema.
func TestRenderLogicalPlan(t *testing.T) {
	scan := NewScan(peopleTable(), nil)
	sel := NewSelection(scan, GtEq(Col("age"), Lit(datatype.Int64Value(24))))
	proj, err := NewProjection(sel, Col("name"), Col("score"))
	require.NoError(t, err)

	out := Render(proj)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "Projection:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  exprs:"))
	assert.True(t, strings.HasPrefix(lines[2], "  input:"))
	assert.True(t, strings.HasPrefix(lines[3], "    Selection:"))
	assert.True(t, strings.HasPrefix(lines[4], "      expr:"))
	assert.True(t, strings.HasPrefix(lines[5], "      input:"))
	assert.True(t, strings.HasPrefix(lines[6], "        Scan:"))
}

// JoinOnKeys requires length-equal key lists, LogicalPlanError
// otherwise.
func TestJoinOnKeysLengthMismatchErrors(t *testing.T) {
	_, err := JoinOnKeys([]string{"a", "b"}, []string{"x"})
	assert.Error(t, err)
}

func TestDataFrameJoinKeys(t *testing.T) {
	left := NewDataFrame(NewScan(peopleTable(), nil))
	right := NewDataFrame(NewScan(peopleTable(), nil))

	joined, err := left.JoinKeys(right, []string{"id"}, []string{"id"}, InnerJoin)
	require.NoError(t, err)
	assert.Equal(t, 8, joined.Schema().Len())

	_, err = left.JoinKeys(right, []string{"id", "age"}, []string{"id"}, InnerJoin)
	assert.Error(t, err)
}

func TestDataFrameFluentChain(t *testing.T) {
	df := NewDataFrame(NewScan(peopleTable(), nil))
	df = df.Filter(GtEq(Col("age"), Lit(datatype.Int64Value(24))))
	df, err := df.Project(Col("name"), Col("score"))
	require.NoError(t, err)
	assert.Equal(t, 2, df.Schema().Len())
}
