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

// Package lattice defines the join/meet/widen algebra used by the
// lattice-valued dependent columns of the Datalog engine in pkg/xlog
// (pkg/domain's abstract values do not build on it), plus the two
// concrete lattices (Reachability, Constant) the Datalog layer ships
// with.
package lattice

// JoinSemilattice is the accumulate-evidence half of a lattice: a
// neutral element for Join and a commutative, associative, idempotent
// combine.
type JoinSemilattice interface {
	Bottom() Lattice
	Join(other Lattice) Lattice
}

// MeetSemilattice is the dual: a neutral element for Meet and a
// commutative, associative, idempotent combine.
type MeetSemilattice interface {
	Top() Lattice
	Meet(other Lattice) Lattice
}

// Lattice is anything with both a join- and a meet-semilattice
// structure. Every concrete lattice in this package, and every
// dependent-column value the Datalog engine manipulates, implements
// this interface.
type Lattice interface {
	JoinSemilattice
	MeetSemilattice
	// Equal reports whether two lattice values are the same element.
	Equal(other Lattice) bool
}

// Widenable additionally provides an accelerating join used at loop
// back-edges, so that an ascending chain of Joins converges in bounded
// steps instead of following every intermediate rung.
type Widenable interface {
	Lattice
	Widen(other Lattice) Lattice
}
