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

// Package uf implements a union-find (disjoint-set) structure over dense
// 32-bit class ids, with the class representative defined as the
// numerically smallest live element.
package uf

// ClassId is the opaque identity the rest of the system uses to name an
// equivalence class. The only operations on it are those exposed by
// UnionFind; clients never construct one except via Makeset.
type ClassId uint32

// UnionFind is a disjoint-set forest with the "min-root" convention:
// the representative of any class is always its numerically smallest
// member. This makes representative choice deterministic without any
// rank or weight bookkeeping, at the cost of potentially longer chains
// than union-by-rank; path compression in Find keeps amortized cost low.
type UnionFind struct {
	parent []ClassId
}

// New returns an empty union-find with no classes.
func New() *UnionFind {
	return &UnionFind{}
}

// NewAllSingletons returns a union-find of size amount where every id is
// its own class (no two ids are merged).
func NewAllSingletons(amount uint32) *UnionFind {
	parent := make([]ClassId, amount)
	for i := range parent {
		parent[i] = ClassId(i)
	}
	return &UnionFind{parent: parent}
}

// NewAllCollapsed returns a union-find of size amount where every id
// belongs to a single class (all merged into class 0).
func NewAllCollapsed(amount uint32) *UnionFind {
	parent := make([]ClassId, amount)
	return &UnionFind{parent: parent}
}

// Makeset mints a new class id, initially its own representative.
func (uf *UnionFind) Makeset() ClassId {
	id := ClassId(len(uf.parent))
	uf.parent = append(uf.parent, id)
	return id
}

// NumClasses returns the total number of ids minted, not the number of
// distinct equivalence classes among them.
func (uf *UnionFind) NumClasses() uint32 {
	return uint32(len(uf.parent))
}

func (uf *UnionFind) parentOf(id ClassId) ClassId {
	return uf.parent[id]
}

func (uf *UnionFind) setParent(id, parent ClassId) {
	uf.parent[id] = parent
}

// Find returns the representative of id's class, path-compressing one
// step at a time as it walks up.
func (uf *UnionFind) Find(id ClassId) ClassId {
	for id != uf.parentOf(id) {
		uf.setParent(id, uf.parentOf(uf.parentOf(id)))
		id = uf.parentOf(id)
	}
	return id
}

// Merge unions the classes of x and y and returns the resulting
// representative, which is always min(Find(x), Find(y)). Repeatedly
// rewires whichever side currently has the larger parent to point at the
// other side's parent, until both sides agree.
func (uf *UnionFind) Merge(x, y ClassId) ClassId {
	for uf.parentOf(x) != uf.parentOf(y) {
		if uf.parentOf(x) > uf.parentOf(y) {
			if x == uf.parentOf(x) {
				uf.setParent(x, uf.parentOf(y))
				break
			}
			z := uf.parentOf(x)
			uf.setParent(x, uf.parentOf(y))
			x = z
		} else {
			if y == uf.parentOf(y) {
				uf.setParent(y, uf.parentOf(x))
				break
			}
			z := uf.parentOf(y)
			uf.setParent(y, uf.parentOf(x))
			y = z
		}
	}
	return uf.parentOf(x)
}
