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

// Package catalog maps case-sensitive table names to a shared Table
// handle, and provides the embedding API's entry point: registering CSV
// tables and obtaining an initial DataFrame over one.
package catalog

import (
	"sync"

	"github.com/bigboss2063/goqe/audit"
	"github.com/bigboss2063/goqe/datasource"
	"github.com/bigboss2063/goqe/errkind"
	"github.com/bigboss2063/goqe/logicalplan"
)

// Catalog stores metadata for every registered table. It is safe for
// concurrent registration and lookup; tables themselves are read-only
// after construction and may be shared by many plans.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]datasource.Table
	audit  *audit.Logger
}

// New returns an empty Catalog with auditing disabled.
func New() *Catalog {
	return NewWithAudit(nil)
}

// NewWithAudit returns an empty Catalog whose mutations log through l.
func NewWithAudit(l *audit.Logger) *Catalog {
	return &Catalog{tables: make(map[string]datasource.Table), audit: l}
}

// AddTable registers an already-constructed Table under name, overwriting
// any previous registration.
func (c *Catalog) AddTable(name string, table datasource.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = table
}

// AddCSVTable reads filename, infers its schema from the leading data
// rows and registers it under name. The mutation is audited: Info on
// success, Warn on failure.
func (c *Catalog) AddCSVTable(name, filename string) error {
	return c.AddCSVTableWithOptions(name, filename, ',', 0)
}

// AddCSVTableWithOptions is AddCSVTable, but reading filename with a
// caller-chosen delimiter and schema-inference sample size.
func (c *Catalog) AddCSVTableWithOptions(name, filename string, delimiter rune, sampleRows int) error {
	table, err := datasource.NewCSVTableWithOptions(filename, delimiter, sampleRows)
	c.audit.TableRegistration(name, filename, err)
	if err != nil {
		return err
	}
	c.AddTable(name, table)
	return nil
}

// GetTable returns the table registered under name.
func (c *Catalog) GetTable(name string) (datasource.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[name]
	if !ok {
		return nil, errkind.NoSuchTable.New(name)
	}
	return table, nil
}

// GetTableDataFrame materializes a DataFrame wrapping a Scan over the
// table registered under name.
func (c *Catalog) GetTableDataFrame(name string) (*logicalplan.DataFrame, error) {
	table, err := c.GetTable(name)
	if err != nil {
		return nil, err
	}
	return logicalplan.NewDataFrame(logicalplan.NewScan(table, nil)), nil
}
