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

// Package opkind defines the binary operator enum shared by the logical
// expression tree, the physical expression tree and the compute kernels
// that evaluate them, so all three agree on one set of symbols.
package opkind

// Operator is a comparison, logical or arithmetic binary operator.
type Operator int

const (
	Eq Operator = iota
	Neq
	Lt
	LtEq
	Gt
	GtEq
	And
	Or
	Add
	Sub
	Mul
	Div
	Mod
)

// Symbol returns the display form used when deriving a BinaryExpr field
// name: "{l.name} {op_sym} {r.name}".
func (o Operator) Symbol() string {
	switch o {
	case Eq:
		return "="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case And:
		return "and"
	case Or:
		return "or"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator's result type is Bool from a
// pairwise compare kernel (as opposed to a logical And/Or or an
// arithmetic op).
func (o Operator) IsComparison() bool {
	switch o {
	case Eq, Neq, Lt, LtEq, Gt, GtEq:
		return true
	default:
		return false
	}
}

// IsLogical reports whether the operator is a boolean And/Or.
func (o Operator) IsLogical() bool {
	return o == And || o == Or
}

// IsArithmetic reports whether the operator is a numeric +,-,*,/,%.
func (o Operator) IsArithmetic() bool {
	switch o {
	case Add, Sub, Mul, Div, Mod:
		return true
	default:
		return false
	}
}
