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

// Package datasource defines the Table capability: a fixed schema plus a
// scan that yields a finite sequence of record batches. A CSV file loader
// is the only concrete data source in this engine; persistent storage and
// other file formats are external collaborators.
package datasource

import "github.com/bigboss2063/goqe/datatype"

// Table is implemented by each data source kind (here, only CSV). It is
// shared by every plan that scans it and outlives all of them.
type Table interface {
	// Schema returns the table's full (unprojected) schema.
	Schema() *datatype.Schema

	// Scan produces the table's record batches. When projection is
	// non-nil every index must be in range; the returned batches contain
	// only the selected columns, in the given order.
	Scan(projection []int) ([]*datatype.RecordBatch, error)

	// SourceType names the kind of data source, for display only.
	SourceType() string
}
