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

// Package egraph implements a relational e-graph: one table.Table per
// distinct node shape (its Signature), a shared union-find of e-classes,
// and the two congruence-maintenance procedures, naive rebuild and
// upward-closure corebuild, that keep every table's class-id columns
// canonical and every pair of structurally-identical rows merged.
package egraph

import (
	"github.com/RArbore/eqsat-ai/pkg/table"
	"github.com/RArbore/eqsat-ai/pkg/uf"
)

// Signature names one node shape: how many determinant and dependent
// columns its row has, which of those columns (by bit position over the
// concatenation of determinant then dependent columns) hold e-class ids
// needing union-find canonicalization, and a symbol id distinguishing
// this shape from others of the same arity. Two ENodes with equal
// Signatures share a table.
type Signature struct {
	ClassIDMask uint64
	NumDet      int
	NumDep      int
	SymbolID    int
}

func (s Signature) numColumns() int { return s.NumDet + s.NumDep }

func (s Signature) isClassID(col int) bool {
	return s.ClassIDMask&(uint64(1)<<uint(col)) != 0
}

// ENode is anything that can be interned into an e-graph: a function
// symbol applied to a tuple of e-class ids, plus whatever non-class-id
// payload that symbol carries (e.g. a literal, a block id). The
// dependent columns always end with the node's own result class id in
// column NumDet (NumDep is always 1; see EncodeToRow).
type ENode interface {
	// Signature describes this node's row shape.
	Signature() Signature
	// EncodeToRow writes this node's determinant columns into det and
	// its single dependent column (its declared, not-yet-canonical,
	// result class id) into dep.
	EncodeToRow(det, dep []table.Value)
}

// EGraph owns one table per Signature plus the union-find shared by
// every class id appearing in any of them.
type EGraph struct {
	classes *uf.UnionFind
	tables  map[Signature]*table.Table
}

// New returns an empty e-graph.
func New() *EGraph {
	return &EGraph{
		classes: uf.New(),
		tables:  make(map[Signature]*table.Table),
	}
}

// Makeset mints a fresh, singleton e-class.
func (g *EGraph) Makeset() uf.ClassId { return g.classes.Makeset() }

// Find returns id's current canonical representative.
func (g *EGraph) Find(id uf.ClassId) uf.ClassId { return g.classes.Find(id) }

// Merge unions the classes of a and b and returns the surviving
// representative.
func (g *EGraph) Merge(a, b uf.ClassId) uf.ClassId { return g.classes.Merge(a, b) }

// NumClasses is the number of e-class ids ever minted.
func (g *EGraph) NumClasses() uint32 { return g.classes.NumClasses() }

func (g *EGraph) tableFor(sig Signature) *table.Table {
	t, ok := g.tables[sig]
	if !ok {
		t = table.New(sig.NumDet, sig.NumDep)
		g.tables[sig] = t
	}
	return t
}

// Tables exposes the live signature -> table map for callers (e.g. the
// ESSA domain) that need to walk every interned node of a given shape.
func (g *EGraph) Tables() map[Signature]*table.Table { return g.tables }

func (g *EGraph) canonicalizeRow(sig Signature, row []table.Value) {
	for i := 0; i < sig.numColumns(); i++ {
		if sig.isClassID(i) {
			row[i] = table.Value(g.classes.Find(uf.ClassId(row[i])))
		}
	}
}

// Insert interns n: its row is encoded and every class-id column
// canonicalized, then looked up in (or added to) the table for n's
// signature. On a fresh determinant, n's declared result class is
// returned unchanged. On a determinant collision with a pre-existing
// row, the two rows' result classes are merged in the union-find and
// the surviving representative is returned — this is congruence: two
// nodes applying the same symbol to the same (canonical) arguments
// denote the same value.
func (g *EGraph) Insert(n ENode) uf.ClassId {
	sig := n.Signature()
	row := make([]table.Value, sig.numColumns())
	n.EncodeToRow(row[:sig.NumDet], row[sig.NumDet:])
	g.canonicalizeRow(sig, row)

	t := g.tableFor(sig)
	declaredRoot := uf.ClassId(row[sig.NumDet])
	wouldBeNewID := t.NumRows()
	inRow, rowID := t.Insert(row)
	if rowID == wouldBeNewID {
		return declaredRoot
	}
	existingRoot := uf.ClassId(inRow[sig.NumDet])
	return g.classes.Merge(declaredRoot, existingRoot)
}

// mergeRow merges the result-class columns of two colliding rows
// through the union-find; determinant columns are assumed already
// identical and are simply carried over from newRow.
func (g *EGraph) mergeRow(sig Signature) table.MergeFunc {
	return func(oldRow, newRow, dst []table.Value) {
		copy(dst, newRow)
		for i := sig.NumDet; i < sig.numColumns(); i++ {
			if sig.isClassID(i) {
				dst[i] = table.Value(g.classes.Merge(uf.ClassId(oldRow[i]), uf.ClassId(newRow[i])))
			}
		}
	}
}

func (g *EGraph) canonRow(sig Signature) table.CanonFunc {
	return func(row, dst []table.Value) {
		copy(dst, row)
		g.canonicalizeRow(sig, dst)
	}
}

// Rebuild makes one pass over every table, deleting and re-inserting in
// canonical form any row whose class-id columns no longer match their
// union-find representatives, merging result classes on any collision
// this creates. Repeats across the whole e-graph until a full pass
// leaves every table unchanged. Returns whether anything changed.
func (g *EGraph) Rebuild() bool {
	everChanged := false
	for {
		changed := false
		for sig, t := range g.tables {
			if table.Rebuild(t, g.mergeRow(sig), g.canonRow(sig)) {
				changed = true
			}
		}
		if !changed {
			return everChanged
		}
		everChanged = true
	}
}

// partitionSignature normalizes u's partition of [0, n) into a slice
// where equal entries mark ids in the same class, labeled by order of
// first occurrence. Two union-finds with equal signatures represent the
// identical partition, independent of which element each happened to
// pick as its internal root.
func partitionSignature(u *uf.UnionFind, n uint32) []uint32 {
	sig := make([]uint32, n)
	labels := make(map[uf.ClassId]uint32)
	for i := uint32(0); i < n; i++ {
		root := u.Find(uf.ClassId(i))
		label, ok := labels[root]
		if !ok {
			label = uint32(len(labels))
			labels[root] = label
		}
		sig[i] = label
	}
	return sig
}

func partitionsEqual(a, b *uf.UnionFind, n uint32) bool {
	sa, sb := partitionSignature(a, n), partitionSignature(b, n)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// corebuildPass computes, from the current approximation last of "which
// classes are equal", the set of merges in next that the approximation
// self-consistently witnesses: two rows of the same table that
// canonicalize to the same determinant under last prove that their
// result classes are equal, regardless of what the real union-find
// currently believes.
func (g *EGraph) corebuildPass(last, next *uf.UnionFind) {
	for sig, t := range g.tables {
		groups := make(map[string]uf.ClassId)
		t.Rows(false)(func(row []table.Value, _ table.RowId) bool {
			canon := make([]table.Value, sig.NumDet)
			copy(canon, row[:sig.NumDet])
			for i := 0; i < sig.NumDet; i++ {
				if sig.isClassID(i) {
					canon[i] = table.Value(last.Find(uf.ClassId(canon[i])))
				}
			}
			det := determinantKey(canon)
			root := uf.ClassId(row[sig.NumDet])
			if witness, ok := groups[det]; ok {
				next.Merge(witness, root)
			} else {
				groups[det] = root
			}
			return true
		})
	}
}

func determinantKey(det []table.Value) string {
	out := make([]byte, 0, len(det)*4)
	for _, v := range det {
		out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(out)
}

// Corebuild performs upward congruence closure: it repeatedly assumes an
// approximate equivalence (starting from the coarsest possible, "every
// class is equal"), computes which merges that assumption witnesses,
// and stops when the witnessed merges reproduce the assumption exactly
// — a fixpoint. Because it starts from the top rather than building up
// from nothing, it finds merges that rebuild alone cannot: e.g. two
// mutually-recursive phi nodes whose equality depends on each other's.
// Once stable, the discovered partition is folded into the e-graph's
// real union-find. Returns whether any merge resulted.
func (g *EGraph) Corebuild() bool {
	n := g.classes.NumClasses()
	if n == 0 {
		return false
	}
	last := uf.NewAllCollapsed(n)
	for {
		next := uf.NewAllSingletons(n)
		g.corebuildPass(last, next)
		if partitionsEqual(next, last, n) {
			last = next
			break
		}
		last = next
	}

	changed := false
	for i := uf.ClassId(0); i < uf.ClassId(n); i++ {
		a, b := g.classes.Find(i), g.classes.Find(last.Find(i))
		if a != b {
			g.classes.Merge(a, b)
			changed = true
		}
	}
	return changed
}

// FullRepair alternates Rebuild and Corebuild until a full round of
// both leaves the e-graph unchanged, i.e. every determinant is unique
// up to the current equivalence and no further congruences are
// discoverable even by upward closure. Returns whether anything changed
// across the whole run.
func (g *EGraph) FullRepair() bool {
	everChanged := false
	for {
		r := g.Rebuild()
		c := g.Corebuild()
		if !r && !c {
			return everChanged
		}
		everChanged = true
	}
}
