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

package goqe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/logicalplan"
)

const (
	peopleCSV = "testdata/test.csv"
	deptCSV   = "testdata/department.csv"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewDefault()
	require.NoError(t, e.RegisterCSV("people", peopleCSV))
	require.NoError(t, e.RegisterCSV("department", deptCSV))
	return e
}

func col(b *datatype.RecordBatch, i int) []datatype.Scalar {
	out := make([]datatype.Scalar, b.NumRows())
	for r := 0; r < b.NumRows(); r++ {
		out[r] = datatype.ScalarAt(b.Column(i), r)
	}
	return out
}

// Scanning the whole table yields 1 batch, 5 rows, 4 columns.
func TestScanAll(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	require.Len(t, batches, 1)

	b := batches[0]
	assert.Equal(t, 5, b.NumRows())
	assert.Equal(t, 4, b.NumCols())

	ids := col(b, 0)
	for i, want := range []int64{1, 2, 3, 4, 5} {
		assert.Equal(t, want, ids[i].Int64Value())
	}
	scores := col(b, 3)
	for i, want := range []float64{0.0, 100.0, 99.99, 99.98, 99.97} {
		assert.InDelta(t, want, scores[i].Float64Value(), 1e-9)
	}
}

// filter(age >= 24).project([name, score]) keeps 3 rows.
func TestFilterProject(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	df = df.Filter(logicalplan.GtEq(logicalplan.Col("age"), logicalplan.Lit(datatype.Int64Value(24))))
	df, err = df.Project(logicalplan.Col("name"), logicalplan.Col("score"))
	require.NoError(t, err)

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	require.Len(t, batches, 1)

	b := batches[0]
	require.Equal(t, 3, b.NumRows())
	names := col(b, 0)
	scores := col(b, 1)
	wantNames := []string{"bigboss2063", "Vincent Hu", "Brian"}
	wantScores := []float64{0.0, 100.0, 99.97}
	for i := range wantNames {
		assert.Equal(t, wantNames[i], names[i].StringValue())
		assert.InDelta(t, wantScores[i], scores[i].Float64Value(), 1e-9)
	}
}

// project([id, score + 1.0]) computes a derived column.
func TestProjectionArithmetic(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	df, err = df.Project(logicalplan.Col("id"), logicalplan.Add(logicalplan.Col("score"), logicalplan.Lit(datatype.Float64Value(1.0))))
	require.NoError(t, err)

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	b := batches[0]

	ids := col(b, 0)
	plusOne := col(b, 1)
	wantIDs := []int64{1, 2, 3, 4, 5}
	wantScores := []float64{1.0, 101.0, 100.99, 100.98, 100.97}
	for i := range wantIDs {
		assert.Equal(t, wantIDs[i], ids[i].Int64Value())
		assert.InDelta(t, wantScores[i], plusOne[i].Float64Value(), 1e-9)
	}
}

// ScalarFunc Abs/Sqrt/Power are declared Int64-returning by
// logicalplan.ScalarFuncExpr.ToField, and NewProjection
// caches that Int64 field into its schema at construction time. Exercise
// project([id, ABS(score)]) end to end through Execute to confirm the
// physical evaluator's output actually matches the cached Int64 schema
// instead of failing RecordBatch's column-type check.
func TestScalarFuncAbsProjectsAsInt64(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	df, err = df.Project(logicalplan.Col("id"), logicalplan.ScalarFn(logicalplan.Abs, logicalplan.Col("score")))
	require.NoError(t, err)

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	b := batches[0]

	ids := col(b, 0)
	abs := col(b, 1)
	wantIDs := []int64{1, 2, 3, 4, 5}
	wantAbs := []int64{0, 100, 99, 99, 99}
	for i := range wantIDs {
		assert.Equal(t, wantIDs[i], ids[i].Int64Value())
		assert.Equal(t, datatype.Int64, abs[i].DataType())
		assert.Equal(t, wantAbs[i], abs[i].Int64Value())
	}
}

// project([name, score - 1.0]).filter(score - 1.0 > 0.0) keeps 4 rows.
func TestSelectionAfterProjection(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	minusOne := logicalplan.As("score - 1.0", logicalplan.Sub(logicalplan.Col("score"), logicalplan.Lit(datatype.Float64Value(1.0))))
	df, err = df.Project(logicalplan.Col("name"), minusOne)
	require.NoError(t, err)
	df = df.Filter(logicalplan.Gt(logicalplan.Col("score - 1.0"), logicalplan.Lit(datatype.Float64Value(0.0))))

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	b := batches[0]

	require.Equal(t, 4, b.NumRows())
	names := col(b, 0)
	scores := col(b, 1)
	wantNames := []string{"Vincent Hu", "KamenRider", "nutswalker", "Brian"}
	wantScores := []float64{99.0, 98.99, 98.98, 98.97}
	for i := range wantNames {
		assert.Equal(t, wantNames[i], names[i].StringValue())
		assert.InDelta(t, wantScores[i], scores[i].Float64Value(), 1e-9)
	}
}

// Grouping by (age <= 24) with MAX/MIN/COUNT/AVG/SUM over score yields
// two groups whose counts sum to 5, with each group's SUM bounded by its
// MIN/MAX times its count.
func TestGroupedAggregation(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)

	groupKey := logicalplan.As("age <= 24", logicalplan.LtEq(logicalplan.Col("age"), logicalplan.Lit(datatype.Int64Value(24))))
	df, err = df.Aggregate(
		[]logicalplan.LogicalExpr{groupKey},
		[]logicalplan.AggregateFuncExpr{
			logicalplan.Aggr(logicalplan.Max, logicalplan.Col("score")),
			logicalplan.Aggr(logicalplan.Min, logicalplan.Col("score")),
			logicalplan.Aggr(logicalplan.Count, logicalplan.Col("score")),
			logicalplan.Aggr(logicalplan.Avg, logicalplan.Col("score")),
			logicalplan.Aggr(logicalplan.Sum, logicalplan.Col("score")),
		},
	)
	require.NoError(t, err)

	batches, err := e.Execute(context.Background(), df.Plan())
	require.NoError(t, err)
	b := batches[0]

	require.Equal(t, 2, b.NumRows())

	counts := col(b, 3)
	sums := col(b, 5)
	maxes := col(b, 1)
	mins := col(b, 2)

	var totalCount uint64
	for i := 0; i < b.NumRows(); i++ {
		n := float64(counts[i].UInt64Value())
		totalCount += counts[i].UInt64Value()
		assert.True(t, maxes[i].Float64Value() >= mins[i].Float64Value())
		assert.True(t, sums[i].Float64Value() >= mins[i].Float64Value()*n)
		assert.True(t, sums[i].Float64Value() <= maxes[i].Float64Value()*n)
	}
	assert.Equal(t, uint64(5), totalCount)
}

// Rendering a filter+project plan produces the indented tree form, with
// field ordering exprs/input/schema for Projection.
func TestPlanDisplay(t *testing.T) {
	e := newTestEngine(t)
	df, err := e.Scan("people")
	require.NoError(t, err)
	df = df.Filter(logicalplan.GtEq(logicalplan.Col("age"), logicalplan.Lit(datatype.Int64Value(24))))
	df, err = df.Project(logicalplan.Col("name"), logicalplan.Col("score"))
	require.NoError(t, err)

	rendered := logicalplan.Render(df.Plan())
	assert.Contains(t, rendered, "Projection:\n")
	assert.Contains(t, rendered, "  exprs:")
	assert.Contains(t, rendered, "  input:\n")
	assert.Contains(t, rendered, "    Selection:\n")
}

// Join is commutative in match membership for unique left keys (up to
// column order).
func TestJoinCommutesInMatchMembership(t *testing.T) {
	e := newTestEngine(t)

	people, err := e.Scan("people")
	require.NoError(t, err)
	dept, err := e.Scan("department")
	require.NoError(t, err)

	lr := people.Join(dept, []logicalplan.JoinOn{{Left: "id", Right: "id"}}, logicalplan.InnerJoin)
	rl := dept.Join(people, []logicalplan.JoinOn{{Left: "id", Right: "id"}}, logicalplan.InnerJoin)

	lrBatches, err := e.Execute(context.Background(), lr.Plan())
	require.NoError(t, err)
	rlBatches, err := e.Execute(context.Background(), rl.Plan())
	require.NoError(t, err)

	assert.Equal(t, lrBatches[0].NumRows(), rlBatches[0].NumRows())
	assert.Equal(t, 5, lrBatches[0].NumRows())
}

func TestEngineRegisterCSVMissingFile(t *testing.T) {
	e := NewDefault()
	err := e.RegisterCSV("ghost", "testdata/does-not-exist.csv")
	assert.Error(t, err)
}

func TestEngineScanUnknownTable(t *testing.T) {
	e := NewDefault()
	_, err := e.Scan("nope")
	assert.Error(t, err)
}
