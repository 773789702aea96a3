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

// Package errkind defines the flat error taxonomy used across the engine.
//
// Each variable is a Kind: a parameterized error template that callers
// instantiate with .New(args...) and that call sites further up the stack
// can test for with Kind.Is(err).
package errkind

import (
	"github.com/pkg/errors"
	kind "gopkg.in/src-d/go-errors.v1"
)

var (
	// NoSuchField is raised when a schema name lookup fails during
	// expression field derivation.
	NoSuchField = kind.NewKind("no such field")

	// NoSuchTable is raised when the catalog has no table registered
	// under the given name.
	NoSuchTable = kind.NewKind("table not found: %s")

	// NoSuchColumn is raised when the planner resolves a column name that
	// is absent from the input plan's schema.
	NoSuchColumn = kind.NewKind("column not found: %s")

	// LogicalPlanError is raised for invalid logical plan construction,
	// such as a join key-list length mismatch.
	LogicalPlanError = kind.NewKind("invalid logical plan: %s")

	// PhysicalPlanError is raised for invalid physical execution, such as
	// an empty join `on` list or mismatched join key types.
	PhysicalPlanError = kind.NewKind("invalid physical plan: %s")

	// IntervalError is raised for binary expression operand type
	// mismatches or unsupported type combinations.
	IntervalError = kind.NewKind("type error: %s")
)

// WrapIO wraps an I/O error before it crosses a package boundary.
func WrapIO(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, "io error")
}

// WrapArrow wraps an error surfaced by the columnar array library.
func WrapArrow(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, "arrow error")
}
