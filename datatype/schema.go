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
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/bigboss2063/goqe/errkind"
)

// Schema is an ordered sequence of fields. Field names need not be unique;
// name-based lookup returns the first match. Callers that require
// uniqueness (joins, grouping) must enforce it themselves.
type Schema struct {
	fields []Field
}

// NewSchema builds a Schema from an ordered field list. A nil or empty
// slice yields the null schema (used by e.g. an identity projection).
func NewSchema(fields ...Field) *Schema {
	return &Schema{fields: fields}
}

// Fields returns the ordered field list. Callers must not mutate it.
func (s *Schema) Fields() []Field {
	return s.fields
}

// Field returns the field at position i.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Len returns the field count.
func (s *Schema) Len() int {
	return len(s.fields)
}

// IndexOf returns the position of the first field named name, or
// errkind.NoSuchField if absent.
func (s *Schema) IndexOf(name string) (int, error) {
	for i, f := range s.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, errkind.NoSuchField.New()
}

// Lookup returns the first field named name, or errkind.NoSuchField if
// absent.
func (s *Schema) Lookup(name string) (Field, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Field{}, err
	}
	return s.fields[i], nil
}

// Join concatenates this schema with right's fields, used by the join
// logical plan to compute left.schema ⧺ right.schema.
func (s *Schema) Join(right *Schema) *Schema {
	fields := make([]Field, 0, len(s.fields)+len(right.fields))
	fields = append(fields, s.fields...)
	fields = append(fields, right.fields...)
	return NewSchema(fields...)
}

// Arrow converts to the backing *arrow.Schema.
func (s *Schema) Arrow() *arrow.Schema {
	afields := make([]arrow.Field, len(s.fields))
	for i, f := range s.fields {
		afields[i] = f.Arrow()
	}
	return arrow.NewSchema(afields, nil)
}

// SchemaFromArrow narrows an *arrow.Schema to the engine's Schema.
func SchemaFromArrow(as *arrow.Schema) *Schema {
	fields := make([]Field, as.NumFields())
	for i, af := range as.Fields() {
		fields[i] = FieldFromArrow(af)
	}
	return NewSchema(fields...)
}
