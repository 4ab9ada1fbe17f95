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

package egraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RArbore/eqsat-ai/pkg/egraph"
	"github.com/RArbore/eqsat-ai/pkg/table"
	"github.com/RArbore/eqsat-ai/pkg/uf"
)

// addNode is a two-argument commutative-free symbol: add(a, b) -> result.
type addNode struct {
	a, b, result uf.ClassId
}

func (n addNode) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b111, NumDet: 2, NumDep: 1, SymbolID: 1}
}

func (n addNode) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(n.a)
	det[1] = table.Value(n.b)
	dep[0] = table.Value(n.result)
}

// phiNode models a two-predecessor join point, e.g. a loop header: the
// determinant names which two classes are being merged, the result is
// the class id standing for "the value after the join".
type phiNode struct {
	a, b, result uf.ClassId
}

func (n phiNode) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b111, NumDet: 2, NumDep: 1, SymbolID: 2}
}

func (n phiNode) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(n.a)
	det[1] = table.Value(n.b)
	dep[0] = table.Value(n.result)
}

// useNode is a single-argument symbol, used to show congruence cascading
// from one table into another.
type useNode struct {
	arg, result uf.ClassId
}

func (n useNode) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b11, NumDet: 1, NumDep: 1, SymbolID: 3}
}

func (n useNode) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(n.arg)
	dep[0] = table.Value(n.result)
}

func TestInsertMergesOnDeterminantCollision(t *testing.T) {
	g := egraph.New()
	a, b := g.Makeset(), g.Makeset()
	r1, r2 := g.Makeset(), g.Makeset()

	root1 := g.Insert(addNode{a, b, r1})
	assert.Equal(t, r1, root1)

	root2 := g.Insert(addNode{a, b, r2})
	assert.Equal(t, r1, root2, "same symbol applied to the same args must denote the same class")
	assert.Equal(t, g.Find(r1), g.Find(r2))
}

func TestInsertDistinctArgsStaySeparate(t *testing.T) {
	g := egraph.New()
	a, b, c := g.Makeset(), g.Makeset(), g.Makeset()
	r1, r2 := g.Makeset(), g.Makeset()

	g.Insert(addNode{a, b, r1})
	g.Insert(addNode{a, c, r2})

	assert.NotEqual(t, g.Find(r1), g.Find(r2))
}

func TestRebuildCanonicalizesAfterExternalMerge(t *testing.T) {
	g := egraph.New()
	a, b, c := g.Makeset(), g.Makeset(), g.Makeset()
	r1, r2 := g.Makeset(), g.Makeset()

	g.Insert(addNode{a, b, r1})
	g.Insert(addNode{a, c, r2})
	assert.NotEqual(t, g.Find(r1), g.Find(r2))

	g.Merge(b, c)
	changed := g.Rebuild()
	assert.True(t, changed)
	assert.Equal(t, g.Find(r1), g.Find(r2), "add(a,b) and add(a,c) must merge once b and c are known equal")
}

func TestRebuildNoopWhenAlreadyCanonical(t *testing.T) {
	g := egraph.New()
	a, b := g.Makeset(), g.Makeset()
	r := g.Makeset()
	g.Insert(addNode{a, b, r})

	assert.False(t, g.Rebuild())
}

// TestCorebuildDiscoversMutualCongruence covers the case plain Rebuild
// cannot: two phi nodes whose results are self-referential (each one's
// own result class appears in its own determinant). Whether the two
// results denote the same class depends on assuming they do and
// checking self-consistency, which is exactly what Corebuild does.
func TestCorebuildDiscoversMutualCongruence(t *testing.T) {
	g := egraph.New()
	x := g.Makeset()
	ra := g.Makeset()
	rb := g.Makeset()

	g.Insert(phiNode{x, ra, ra})
	g.Insert(phiNode{x, rb, rb})

	assert.False(t, g.Rebuild(), "naive rebuild cannot find a congruence that assumes its own conclusion")
	assert.NotEqual(t, g.Find(ra), g.Find(rb))

	assert.True(t, g.Corebuild())
	assert.Equal(t, g.Find(ra), g.Find(rb))
}

func TestFullRepairCascadesAcrossTables(t *testing.T) {
	g := egraph.New()
	x := g.Makeset()
	ra := g.Makeset()
	rb := g.Makeset()
	g.Insert(phiNode{x, ra, ra})
	g.Insert(phiNode{x, rb, rb})

	u1 := g.Makeset()
	u2 := g.Makeset()
	g.Insert(useNode{ra, u1})
	g.Insert(useNode{rb, u2})

	assert.NotEqual(t, g.Find(u1), g.Find(u2))

	changed := g.FullRepair()
	assert.True(t, changed)
	assert.Equal(t, g.Find(ra), g.Find(rb))
	assert.Equal(t, g.Find(u1), g.Find(u2), "use(ra) and use(rb) must merge once corebuild proves ra == rb")

	assert.False(t, g.FullRepair(), "a second full repair over a stable e-graph changes nothing")
}

func TestFullRepairOnEmptyGraph(t *testing.T) {
	g := egraph.New()
	assert.False(t, g.FullRepair())
}
