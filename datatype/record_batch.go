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

package datatype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// RecordBatch is a schema plus one array per field, all arrays of equal
// length (the batch's row count). NewRecordBatch enforces the invariant
// len(schema.Fields()) == len(columns) and per-column type agreement.
type RecordBatch struct {
	schema  *Schema
	columns []arrow.Array
}

// NewRecordBatch validates and constructs a RecordBatch.
func NewRecordBatch(schema *Schema, columns []arrow.Array) (*RecordBatch, error) {
	if schema.Len() != len(columns) {
		return nil, fmt.Errorf("record batch: schema has %d fields but %d columns were given", schema.Len(), len(columns))
	}
	var n int
	if len(columns) > 0 {
		n = columns[0].Len()
	}
	for i, col := range columns {
		if col.Len() != n {
			return nil, fmt.Errorf("record batch: column %d has length %d, want %d", i, col.Len(), n)
		}
		want := schema.Field(i).Type
		if got := FromArrow(col.DataType()); got != want {
			return nil, fmt.Errorf("record batch: column %d has type %s, schema says %s", i, got, want)
		}
	}
	return &RecordBatch{schema: schema, columns: columns}, nil
}

// Schema returns the batch's schema.
func (b *RecordBatch) Schema() *Schema { return b.schema }

// NumRows returns the row count (0 for a batch with no columns).
func (b *RecordBatch) NumRows() int {
	if len(b.columns) == 0 {
		return 0
	}
	return b.columns[0].Len()
}

// NumCols returns the column count.
func (b *RecordBatch) NumCols() int { return len(b.columns) }

// Column returns the array backing column i.
func (b *RecordBatch) Column(i int) arrow.Array { return b.columns[i] }

// Columns returns all columns in schema order. Callers must not mutate it.
func (b *RecordBatch) Columns() []arrow.Array { return b.columns }
