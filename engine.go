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

// Package goqe wires the catalog, planner and audit log into one
// top-level entry point for building and running logical plans.
package goqe

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bigboss2063/goqe/audit"
	"github.com/bigboss2063/goqe/catalog"
	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/logicalplan"
	"github.com/bigboss2063/goqe/planner"
)

// Config holds the tunables an Engine is built with. Fields are set
// through EngineOpt functions passed to New; the zero Config plus
// defaultConfig() is what NewDefault uses.
type Config struct {
	// CSVDelimiter is the field separator CSVTable expects.
	CSVDelimiter rune
	// SchemaInferenceSampleRows is how many leading data rows CSVTable
	// samples to infer each column's DataType.
	SchemaInferenceSampleRows int
	// AuditLogger receives the Engine's audit events: table
	// registrations, planner rejections, per-batch traces and one entry
	// per executed query. Nil disables auditing.
	AuditLogger *logrus.Logger
}

func defaultConfig() *Config {
	return &Config{
		CSVDelimiter:              ',',
		SchemaInferenceSampleRows: 3,
		AuditLogger:               logrus.StandardLogger(),
	}
}

// EngineOpt customizes a Config. Use WithCSVDelimiter, WithSampleRows
// and WithAuditLogger to build one up.
type EngineOpt func(*Config)

// WithCSVDelimiter overrides the field separator used when registering
// CSV tables.
func WithCSVDelimiter(r rune) EngineOpt {
	return func(c *Config) { c.CSVDelimiter = r }
}

// WithSampleRows overrides how many rows CSVTable samples to infer
// column types.
func WithSampleRows(n int) EngineOpt {
	return func(c *Config) { c.SchemaInferenceSampleRows = n }
}

// WithAuditLogger overrides the logrus.Logger queries are audited
// against. Passing nil disables auditing.
func WithAuditLogger(l *logrus.Logger) EngineOpt {
	return func(c *Config) { c.AuditLogger = l }
}

// Engine owns a Catalog of registered tables, a QueryPlanner that lowers
// logical plans to physical ones, and an audit.Logger that records every
// Execute call.
type Engine struct {
	Catalog *catalog.Catalog
	Planner *planner.QueryPlanner
	Audit   *audit.Logger
	cfg     *Config
}

// New builds an Engine from opts, starting from defaultConfig.
func New(opts ...EngineOpt) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	aud := audit.NewLogger(cfg.AuditLogger)
	return &Engine{
		Catalog: catalog.NewWithAudit(aud),
		Planner: planner.New(),
		Audit:   aud,
		cfg:     cfg,
	}
}

// NewDefault builds an Engine with every default left in place.
func NewDefault() *Engine { return New() }

// RegisterCSV registers a CSV-backed table under name, using the
// Engine's configured delimiter and schema-inference sample size.
func (e *Engine) RegisterCSV(name, path string) error {
	return e.Catalog.AddCSVTableWithOptions(name, path, e.cfg.CSVDelimiter, e.cfg.SchemaInferenceSampleRows)
}

// Scan starts a DataFrame over the named registered table.
func (e *Engine) Scan(name string) (*logicalplan.DataFrame, error) {
	return e.Catalog.GetTableDataFrame(name)
}

// Execute lowers plan to a physical plan and runs it to completion,
// auditing the attempt against the Engine's audit.Logger: a planner
// rejection logs at Warn, each emitted batch traces at Debug, and the
// query itself logs at Info or, on an execution failure, Error.
func (e *Engine) Execute(ctx context.Context, plan logicalplan.LogicalPlan) ([]*datatype.RecordBatch, error) {
	start := time.Now()
	physical, err := e.Planner.CreatePhysicalPlan(plan)
	if err != nil {
		e.Audit.PlanningFailed(logicalplan.Render(plan), err)
		return nil, err
	}

	batches, err := physical.Execute(ctx)
	rows := 0
	for i, b := range batches {
		rows += b.NumRows()
		e.Audit.Batch(i, b.NumRows())
	}
	e.Audit.Query(logicalplan.Render(plan), rows, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return batches, nil
}
