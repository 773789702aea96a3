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

package benchmark

import (
	"context"
	"testing"

	goqe "github.com/bigboss2063/goqe"
	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/logicalplan"
)

const (
	peopleCSV = "../testdata/test.csv"
	deptCSV   = "../testdata/department.csv"
)

func newBenchEngine(b *testing.B) *goqe.Engine {
	e := goqe.NewDefault()
	if err := e.RegisterCSV("people", peopleCSV); err != nil {
		b.Fatal(err)
	}
	if err := e.RegisterCSV("department", deptCSV); err != nil {
		b.Fatal(err)
	}
	return e
}

// BenchmarkScanFilterProject measures a Scan -> Selection -> Projection
// pipeline, the engine's most common shape.
func BenchmarkScanFilterProject(b *testing.B) {
	e := newBenchEngine(b)
	ctx := context.Background()

	df, err := e.Scan("people")
	if err != nil {
		b.Fatal(err)
	}
	df = df.Filter(logicalplan.GtEq(logicalplan.Col("age"), logicalplan.Lit(datatype.Int64Value(18))))
	df, err = df.Project(logicalplan.Col("name"), logicalplan.Col("score"))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := e.Execute(ctx, df.Plan()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkJoinAggregate measures an equi-join followed by a grouped
// aggregation, the most expensive operator pairing this engine supports.
func BenchmarkJoinAggregate(b *testing.B) {
	e := newBenchEngine(b)
	ctx := context.Background()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		people, err := e.Scan("people")
		if err != nil {
			b.Fatal(err)
		}
		dept, err := e.Scan("department")
		if err != nil {
			b.Fatal(err)
		}
		joined := people.Join(dept, []logicalplan.JoinOn{{Left: "id", Right: "id"}}, logicalplan.InnerJoin)

		grouped, err := joined.Aggregate(
			[]logicalplan.LogicalExpr{logicalplan.Col("dept")},
			[]logicalplan.AggregateFuncExpr{
				logicalplan.Aggr(logicalplan.Count, logicalplan.Col("id")),
				logicalplan.Aggr(logicalplan.Avg, logicalplan.Col("score")),
			},
		)
		if err != nil {
			b.Fatal(err)
		}

		if _, err := e.Execute(ctx, grouped.Plan()); err != nil {
			b.Fatal(err)
		}
	}
}
