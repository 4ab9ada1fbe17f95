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

package xlog

import (
	"testing"

	"github.com/RArbore/eqsat-ai/pkg/lattice"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
	"github.com/RArbore/eqsat-ai/pkg/table"
	"github.com/RArbore/eqsat-ai/pkg/uf"
)

func rowCount(t *table.Table) int {
	n := 0
	t.Rows(false)(func(row []table.Value, _ table.RowId) bool {
		n++
		return true
	})
	return n
}

// TestGraphReachabilityFixpoint mirrors the "graph reachability"
// scenario: seven Edge facts, a transitive-closure Path rule, and a
// Success fact gated on Path(3,5) being derivable.
func TestGraphReachabilityFixpoint(t *testing.T) {
	tbl := symbol.NewTable()
	db := NewDatabase(uf.New())

	edgeID := db.RegisterTable(tbl.Intern("Edge"), Schema{Determinant: []ColumnKind{ColInt, ColInt}})
	pathID := db.RegisterTable(tbl.Intern("Path"), Schema{Determinant: []ColumnKind{ColInt, ColInt}})
	successID := db.RegisterTable(tbl.Intern("Success"), Schema{Dependent: []ColumnKind{ColInt}})

	a, b, c := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("c")

	var rules []Rule
	// Edge(a b) => Path(a b);
	rules = append(rules, Rule{
		Query:  Query{Atoms: []Atom{{Table: edgeID, Slots: []Slot{Variable(a), Variable(b)}}}},
		Action: InsertAction([]Atom{{Table: pathID, Slots: []Slot{Variable(a), Variable(b)}}}),
	})
	// Path(a b) Edge(b c) => Path(a c);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: pathID, Slots: []Slot{Variable(a), Variable(b)}},
			{Table: edgeID, Slots: []Slot{Variable(b), Variable(c)}},
		}},
		Action: InsertAction([]Atom{{Table: pathID, Slots: []Slot{Variable(a), Variable(c)}}}),
	})
	for _, e := range [][2]int32{{0, 1}, {0, 2}, {0, 3}, {2, 4}, {4, 3}, {4, 5}, {3, 0}} {
		rules = append(rules, Rule{
			Action: InsertAction([]Atom{{Table: edgeID, Slots: []Slot{IntSlot(e[0]), IntSlot(e[1])}}}),
		})
	}
	// Path(3 5) => Success(1);
	rules = append(rules, Rule{
		Query:  Query{Atoms: []Atom{{Table: pathID, Slots: []Slot{IntSlot(3), IntSlot(5)}}}},
		Action: InsertAction([]Atom{{Table: successID, Slots: []Slot{IntSlot(1)}}}),
	})

	Fixpoint(db, rules, nil)

	if got := rowCount(db.Table(edgeID)); got != 7 {
		t.Fatalf("expected 7 Edge rows, got %d", got)
	}
	if got := rowCount(db.Table(pathID)); got != 24 {
		t.Fatalf("expected 24 Path rows, got %d", got)
	}
	if got := rowCount(db.Table(successID)); got != 1 {
		t.Fatalf("expected 1 Success row, got %d", got)
	}
}

// TestCommutativeAdderChase mirrors the "commutative adder" scenario:
// two Constant facts chased onto distinct class ids, a commutative Add
// rule, and a cross-product rule that chases a fresh class per pair.
func TestCommutativeAdderChase(t *testing.T) {
	tbl := symbol.NewTable()
	db := NewDatabase(uf.New())

	constantID := db.RegisterTable(tbl.Intern("Constant"), Schema{
		Determinant: []ColumnKind{ColInt},
		Dependent:   []ColumnKind{ColEClassId},
	})
	addID := db.RegisterTable(tbl.Intern("Add"), Schema{
		Determinant: []ColumnKind{ColEClassId, ColEClassId},
		Dependent:   []ColumnKind{ColEClassId},
	})

	x, y, z, av, bv := tbl.Intern("x"), tbl.Intern("y"), tbl.Intern("z"), tbl.Intern("a"), tbl.Intern("b")

	var rules []Rule
	// Add(x y z) => Add(y x z);
	rules = append(rules, Rule{
		Query:  Query{Atoms: []Atom{{Table: addID, Slots: []Slot{Variable(x), Variable(y), Variable(z)}}}},
		Action: InsertAction([]Atom{{Table: addID, Slots: []Slot{Variable(y), Variable(x), Variable(z)}}}),
	})
	// => Constant(1 a); => Constant(2 a);
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(1), Variable(av)}}})})
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(2), Variable(av)}}})})
	// Constant(_ a) Constant(_ b) => Add(a b z);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: constantID, Slots: []Slot{Wildcard(), Variable(av)}},
			{Table: constantID, Slots: []Slot{Wildcard(), Variable(bv)}},
		}},
		Action: InsertAction([]Atom{{Table: addID, Slots: []Slot{Variable(av), Variable(bv), Variable(z)}}}),
	})

	Fixpoint(db, rules, nil)

	if got := rowCount(db.Table(constantID)); got != 2 {
		t.Fatalf("expected 2 Constant rows, got %d", got)
	}
	if got := rowCount(db.Table(addID)); got != 4 {
		t.Fatalf("expected 4 Add rows, got %d", got)
	}
}

// TestSimpleRewriteChase mirrors
// _examples/original_source/xlog/src/fixpoint.rs's simple_rewrite
// test: a commutative Add rule plus an associativity-flavored rule
// chase three seeded Constant facts through every rewrite combination.
// Lower priority than the rest of this file since
// TestCommutativeAdderChase already exercises the same commutative
// chase machinery, but ported directly for parity with the original's
// exact fact counts.
func TestSimpleRewriteChase(t *testing.T) {
	tbl := symbol.NewTable()
	db := NewDatabase(uf.New())

	constantID := db.RegisterTable(tbl.Intern("Constant"), Schema{
		Determinant: []ColumnKind{ColInt},
		Dependent:   []ColumnKind{ColEClassId},
	})
	addID := db.RegisterTable(tbl.Intern("Add"), Schema{
		Determinant: []ColumnKind{ColEClassId, ColEClassId},
		Dependent:   []ColumnKind{ColEClassId},
	})

	x, y, z := tbl.Intern("x"), tbl.Intern("y"), tbl.Intern("z")
	a, b, ab, c, total, bc := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("ab"), tbl.Intern("c"), tbl.Intern("total"), tbl.Intern("bc")
	one, two, three := tbl.Intern("one"), tbl.Intern("two"), tbl.Intern("three")
	onePlusTwo, onePlusTwoPlusThree := tbl.Intern("one_plus_two"), tbl.Intern("one_plus_two_plus_three")

	var rules []Rule
	// Add(x y z) => Add(y x z);
	rules = append(rules, Rule{
		Query:  Query{Atoms: []Atom{{Table: addID, Slots: []Slot{Variable(x), Variable(y), Variable(z)}}}},
		Action: InsertAction([]Atom{{Table: addID, Slots: []Slot{Variable(y), Variable(x), Variable(z)}}}),
	})
	// Add(a b ab) Add(ab c total) => Add(a bc total) Add(b c bc);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: addID, Slots: []Slot{Variable(a), Variable(b), Variable(ab)}},
			{Table: addID, Slots: []Slot{Variable(ab), Variable(c), Variable(total)}},
		}},
		Action: InsertAction([]Atom{
			{Table: addID, Slots: []Slot{Variable(a), Variable(bc), Variable(total)}},
			{Table: addID, Slots: []Slot{Variable(b), Variable(c), Variable(bc)}},
		}),
	})
	// => Constant(1 one); => Constant(2 two); => Constant(3 three);
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(1), Variable(one)}}})})
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(2), Variable(two)}}})})
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(3), Variable(three)}}})})
	// Constant(1 one) Constant(2 two) Constant(3 three) => Add(one two one_plus_two) Add(one_plus_two three one_plus_two_plus_three);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: constantID, Slots: []Slot{IntSlot(1), Variable(one)}},
			{Table: constantID, Slots: []Slot{IntSlot(2), Variable(two)}},
			{Table: constantID, Slots: []Slot{IntSlot(3), Variable(three)}},
		}},
		Action: InsertAction([]Atom{
			{Table: addID, Slots: []Slot{Variable(one), Variable(two), Variable(onePlusTwo)}},
			{Table: addID, Slots: []Slot{Variable(onePlusTwo), Variable(three), Variable(onePlusTwoPlusThree)}},
		}),
	})

	Fixpoint(db, rules, nil)

	if got := rowCount(db.Table(constantID)); got != 3 {
		t.Fatalf("expected 3 Constant rows, got %d", got)
	}
	if got := rowCount(db.Table(addID)); got != 12 {
		t.Fatalf("expected 12 Add rows, got %d", got)
	}
}

// TestComputedActionMax supplements S1-S7 with the computed-action
// scenario: a pure Go function runs on the substitution (picking the
// max of two constants) before its result is chased into a new fact.
func TestComputedActionMax(t *testing.T) {
	tbl := symbol.NewTable()
	db := NewDatabase(uf.New())

	constantID := db.RegisterTable(tbl.Intern("Constant"), Schema{
		Determinant: []ColumnKind{ColInt},
		Dependent:   []ColumnKind{ColEClassId},
	})
	maxID := db.RegisterTable(tbl.Intern("Max"), Schema{
		Determinant: []ColumnKind{ColEClassId, ColEClassId},
		Dependent:   []ColumnKind{ColEClassId},
	})

	firstClass, secondClass := tbl.Intern("first_class"), tbl.Intern("second_class")
	first, second, firstMaxSecond := tbl.Intern("first"), tbl.Intern("second"), tbl.Intern("first_max_second")
	lhsCons, rhs, rhsCons, lhs, maxVar := tbl.Intern("lhs_cons"), tbl.Intern("rhs"), tbl.Intern("rhs_cons"), tbl.Intern("lhs"), tbl.Intern("max")
	lhsMaxRhs := tbl.Intern("lhs_max_rhs")
	computeMax := tbl.Intern("compute_max")

	library := FunctionLibrary{
		computeMax: func(s Substitution) bool {
			l, r := s[lhsCons], s[rhsCons]
			if l > r {
				s[lhsMaxRhs] = l
			} else {
				s[lhsMaxRhs] = r
			}
			return true
		},
	}

	var rules []Rule
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(77), Variable(firstClass)}}})})
	rules = append(rules, Rule{Action: InsertAction([]Atom{{Table: constantID, Slots: []Slot{IntSlot(42), Variable(secondClass)}}})})
	// Constant(_ first) Constant(_ second) => Max(first second first_max_second);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: constantID, Slots: []Slot{Wildcard(), Variable(first)}},
			{Table: constantID, Slots: []Slot{Wildcard(), Variable(second)}},
		}},
		Action: InsertAction([]Atom{{Table: maxID, Slots: []Slot{Variable(first), Variable(second), Variable(firstMaxSecond)}}}),
	})
	// Constant(lhs_cons lhs) Constant(rhs_cons rhs) Max(lhs rhs max) => 'compute_max => Constant(lhs_max_rhs max);
	rules = append(rules, Rule{
		Query: Query{Atoms: []Atom{
			{Table: constantID, Slots: []Slot{Variable(lhsCons), Variable(lhs)}},
			{Table: constantID, Slots: []Slot{Variable(rhsCons), Variable(rhs)}},
			{Table: maxID, Slots: []Slot{Variable(lhs), Variable(rhs), Variable(maxVar)}},
		}},
		Action: ComputeAction(computeMax, InsertAction([]Atom{{Table: constantID, Slots: []Slot{Variable(lhsMaxRhs), Variable(maxVar)}}})),
	})

	Fixpoint(db, rules, library)

	if got := rowCount(db.Table(constantID)); got != 2 {
		t.Fatalf("expected 2 Constant rows, got %d", got)
	}
	if got := rowCount(db.Table(maxID)); got != 4 {
		t.Fatalf("expected 4 Max rows, got %d", got)
	}
	found77 := false
	db.Table(constantID).Rows(false)(func(row []table.Value, _ table.RowId) bool {
		if row[0] == 77 {
			found77 = true
		}
		return true
	})
	if !found77 {
		t.Fatalf("expected a Constant row with determinant 77 to survive")
	}
}

// TestCustomLatticeColumnMeetsOnMerge supplements S6: a CustomLattice
// dependent column (Reachability) collapses two conflicting facts
// about the same determinant to their meet, rather than set semantics.
func TestCustomLatticeColumnMeetsOnMerge(t *testing.T) {
	tbl := symbol.NewTable()
	db := NewDatabase(uf.New())

	seenID := db.RegisterTable(tbl.Intern("Seen"), Schema{
		Determinant: []ColumnKind{ColInt},
		Dependent:   []ColumnKind{ColCustomLattice},
		Codecs:      []LatticeCodec{ReachabilityCodec{}},
	})

	rules := []Rule{
		{Action: InsertAction([]Atom{{Table: seenID, Slots: []Slot{IntSlot(5), ConcreteSlot(table.Value(lattice.ReachReachable))}}})},
		{Action: InsertAction([]Atom{{Table: seenID, Slots: []Slot{IntSlot(5), ConcreteSlot(table.Value(lattice.ReachUnreachable))}}})},
	}
	Fixpoint(db, rules, nil)

	rows := db.Table(seenID).CollectRows(false)
	if len(rows) != 1 {
		t.Fatalf("expected determinant uniqueness to collapse to one row, got %d", len(rows))
	}
	if got := lattice.Reachability(rows[0][1]); got != lattice.ReachUnreachable {
		t.Fatalf("expected meet(Reachable, Unreachable) = Unreachable, got %v", got)
	}
}
