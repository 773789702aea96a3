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

import "github.com/apache/arrow-go/v18/arrow"

// Field is a name, a DataType and a nullability flag. Two fields are equal
// iff all three match.
type Field struct {
	Name     string
	Type     DataType
	Nullable bool
}

// NewField builds a Field. name must be non-empty; callers that can't
// guarantee that (e.g. deriving a field from a Scalar's display form)
// should fall back to the scalar's canonical name, which is always
// non-empty.
func NewField(name string, t DataType, nullable bool) Field {
	return Field{Name: name, Type: t, Nullable: nullable}
}

// Equals reports structural equality of name, type and nullability.
func (f Field) Equals(other Field) bool {
	return f.Name == other.Name && f.Type == other.Type && f.Nullable == other.Nullable
}

// Arrow converts to the arrow.Field this engine Field is backed by.
func (f Field) Arrow() arrow.Field {
	return arrow.Field{Name: f.Name, Type: f.Type.Arrow(), Nullable: f.Nullable}
}

// FieldFromArrow narrows an arrow.Field to the engine's Field.
func FieldFromArrow(af arrow.Field) Field {
	return Field{Name: af.Name, Type: FromArrow(af.Type), Nullable: af.Nullable}
}
