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

package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bigboss2063/goqe/datatype"
	"github.com/bigboss2063/goqe/errkind"
)

// defaultInferSampleRows is how many data rows CSVTable samples to infer
// each column's type by default.
const defaultInferSampleRows = 3

// CSVTable stores the schema and the single record batch read from a CSV
// file. UTF-8, first row is a header; Int64, Float64 and Utf8 are
// inferred column types.
type CSVTable struct {
	schema *datatype.Schema
	batch  *datatype.RecordBatch
}

var _ Table = (*CSVTable)(nil)

// NewCSVTable loads filename in full using the default comma delimiter
// and sample size, infers its schema and materializes one record batch.
func NewCSVTable(filename string) (*CSVTable, error) {
	return NewCSVTableWithOptions(filename, ',', defaultInferSampleRows)
}

// NewCSVTableWithOptions loads filename using delimiter as the field
// separator, sampling up to sampleRows data rows to infer each column's
// type.
func NewCSVTableWithOptions(filename string, delimiter rune, sampleRows int) (*CSVTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errkind.WrapIO(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if delimiter != 0 {
		r.Comma = delimiter
	}

	header, err := r.Read()
	if err != nil {
		return nil, errkind.WrapIO(err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errkind.WrapIO(err)
		}
		rows = append(rows, row)
	}

	if sampleRows <= 0 {
		sampleRows = defaultInferSampleRows
	}
	colTypes := inferColumnTypes(header, rows, sampleRows)

	fields := make([]datatype.Field, len(header))
	for i, name := range header {
		fields[i] = datatype.NewField(name, colTypes[i], false)
	}
	schema := datatype.NewSchema(fields...)

	columns, err := buildColumns(colTypes, header, rows)
	if err != nil {
		return nil, err
	}

	batch, err := datatype.NewRecordBatch(schema, columns)
	if err != nil {
		return nil, err
	}

	return &CSVTable{schema: schema, batch: batch}, nil
}

// Schema implements Table.
func (t *CSVTable) Schema() *datatype.Schema { return t.schema }

// SourceType implements Table.
func (t *CSVTable) SourceType() string { return "CSV file" }

// Scan implements Table: it returns the whole file as a single batch,
// projected to the requested columns if projection is non-nil.
func (t *CSVTable) Scan(projection []int) ([]*datatype.RecordBatch, error) {
	if projection == nil {
		return []*datatype.RecordBatch{t.batch}, nil
	}

	fields := make([]datatype.Field, len(projection))
	columns := make([]arrow.Array, len(projection))
	for i, idx := range projection {
		if idx < 0 || idx >= t.schema.Len() {
			return nil, fmt.Errorf("datasource: projection index %d out of range for schema of %d fields", idx, t.schema.Len())
		}
		fields[i] = t.schema.Field(idx)
		columns[i] = t.batch.Column(idx)
	}

	projected, err := datatype.NewRecordBatch(datatype.NewSchema(fields...), columns)
	if err != nil {
		return nil, err
	}
	return []*datatype.RecordBatch{projected}, nil
}

// inferColumnTypes widens Int64 -> Float64 -> Utf8 across the sampled
// rows; it never narrows once a column has been widened.
func inferColumnTypes(header []string, rows [][]string, sampleRows int) []datatype.DataType {
	types := make([]datatype.DataType, len(header))
	for i := range types {
		types[i] = datatype.Int64
	}

	sampleCount := len(rows)
	if sampleCount > sampleRows {
		sampleCount = sampleRows
	}

	for _, row := range rows[:sampleCount] {
		for i := range header {
			if i >= len(row) {
				continue
			}
			types[i] = widen(types[i], row[i])
		}
	}

	return types
}

func widen(current datatype.DataType, value string) datatype.DataType {
	if current == datatype.Utf8 {
		return datatype.Utf8
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return current
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		if current == datatype.Int64 {
			return datatype.Float64
		}
		return current
	}
	return datatype.Utf8
}

func buildColumns(colTypes []datatype.DataType, header []string, rows [][]string) ([]arrow.Array, error) {
	mem := memory.NewGoAllocator()
	columns := make([]arrow.Array, len(header))

	for i, dt := range colTypes {
		switch dt {
		case datatype.Int64:
			b := array.NewInt64Builder(mem)
			for _, row := range rows {
				v, err := strconv.ParseInt(cell(row, i), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("datasource: column %q: %w", header[i], err)
				}
				b.Append(v)
			}
			columns[i] = b.NewArray()
			b.Release()
		case datatype.Float64:
			b := array.NewFloat64Builder(mem)
			for _, row := range rows {
				v, err := strconv.ParseFloat(cell(row, i), 64)
				if err != nil {
					return nil, fmt.Errorf("datasource: column %q: %w", header[i], err)
				}
				b.Append(v)
			}
			columns[i] = b.NewArray()
			b.Release()
		default:
			b := array.NewStringBuilder(mem)
			for _, row := range rows {
				b.Append(cell(row, i))
			}
			columns[i] = b.NewArray()
			b.Release()
		}
	}

	return columns, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
