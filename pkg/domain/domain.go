// Copyright 2025 The eqsat-ai Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package domain defines the parametric abstract-domain framework the
// interpreter drives: a Value algebra every domain's values implement,
// an AbstractDomain interface every domain (Interval, Concrete, Unit,
// ESSA) implements, and the shared LatticeDomain map that backs the
// first three.
package domain

// Variable is the interpreter's key into an abstract-domain state. For
// a plain domain it is a variable name's symbol.Symbol; for an ESSA
// domain's inner layer it is a uf.ClassId. Both are dense uint32
// tokens, so the domain layer treats them uniformly.
type Variable uint32

// BinOp names a binary operator the interpreter can ask a domain to
// evaluate.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

// Value is the per-variable lattice element every domain's values
// implement. Top is the join identity (absent/unconstrained); Bottom
// is the neutral value seeded for a freshly introduced variable
// (over-approximation of "could be anything").
type Value interface {
	Top() Value
	Bottom() Value
	Join(other Value) Value
	Meet(other Value) Value
	Widen(other Value) Value
	Equal(other Value) bool
	IsKnownTrue() bool
	IsKnownFalse() bool
}

// AbstractDomain is the operation set every domain implementation
// (Interval, Concrete, Unit, ESSA) provides. Domains are immutable
// value types: Assign/Join/Widen return a new AbstractDomain rather
// than mutating the receiver, matching the interpreter's practice of
// cloning state at branches while still sharing the underlying
// e-graph/union-find/finished-sink context by reference.
type AbstractDomain interface {
	// Bottom is the neutral value assigned to a freshly introduced
	// variable (e.g. a function parameter before any constraint).
	Bottom() Value
	// Lookup returns v's current value, or Top if v was never
	// assigned.
	Lookup(v Variable) Value
	// Assign returns a new domain state with v bound to val.
	Assign(v Variable, val Value) AbstractDomain
	// TransferConst evaluates an integer literal.
	TransferConst(n int32) Value
	// TransferBinOp evaluates a binary operator over two already
	// evaluated operands.
	TransferBinOp(op BinOp, lhs, rhs Value) Value
	// Branch splits along cond: the first result is nil only when cond
	// is known-false and not known-true, the second only when cond is
	// known-true and not known-false; a cond that is both or neither
	// keeps both states.
	Branch(cond Value) (thenState, elseState AbstractDomain)
	// Join merges two states reaching the same control-flow point,
	// identified by siteID so per-site bookkeeping (ESSA's phi table)
	// can be kept.
	Join(other AbstractDomain, siteID int) AbstractDomain
	// Widen accelerates convergence at a loop back-edge, again keyed
	// by the loop's siteID.
	Widen(other AbstractDomain, siteID int) AbstractDomain
	// Finish records a returned value at a return statement's unique
	// siteID into the domain's shared sink.
	Finish(val Value, siteID int)
	// Equal reports whether two states are indistinguishable for the
	// purpose of the interpreter's widening-stationarity check (spec
	// §4.9): the while loop stops iterating once a widen produces a
	// state Equal to the previous iteration's.
	Equal(other AbstractDomain) bool
}

// ParameterSeeder is an optional extension a domain may implement when
// introducing a parameter requires more than Assign(v, Bottom()) — the
// ESSA domain uses it to additionally intern a Parameter term into the
// e-graph.
type ParameterSeeder interface {
	// SeedParameter returns a new domain state and the value to bind
	// parameter index idx to.
	SeedParameter(idx int) (AbstractDomain, Value)
}
