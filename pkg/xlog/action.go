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
	"github.com/RArbore/eqsat-ai/pkg/symbol"
	"github.com/RArbore/eqsat-ai/pkg/table"
)

// ComputeFunc runs on a substitution in place, binding any computed
// variables, and reports whether the chain should continue.
type ComputeFunc func(Substitution) bool

// FunctionLibrary resolves the symbols a ComputeAction's 'funcname
// references to the function that implements it.
type FunctionLibrary map[symbol.Symbol]ComputeFunc

// executeActions runs action over every substitution in substs,
// reporting whether any of them changed the database.
func executeActions(db *Database, library FunctionLibrary, action *Action, substs []Substitution) bool {
	changed := false
	for _, subst := range substs {
		if runAction(db, library, action, subst) {
			changed = true
		}
	}
	return changed
}

func runAction(db *Database, library FunctionLibrary, action *Action, subst Substitution) bool {
	switch action.Kind {
	case ActionInsert:
		return insertPattern(db, action.Atoms, subst)

	case ActionCompute:
		fn, ok := library[action.Func]
		if !ok {
			panic("xlog: computed action references an unregistered function")
		}
		if !fn(subst) || action.Next == nil {
			return false
		}
		return runAction(db, library, action.Next, subst)

	default:
		panic("xlog: unknown action kind")
	}
}

func resolveDeterminant(atom Atom, schema Schema, subst Substitution) ([]table.Value, bool) {
	numDet := len(schema.Determinant)
	det := make([]table.Value, numDet)
	for i := 0; i < numDet; i++ {
		switch atom.Slots[i].Kind {
		case SlotConcrete:
			det[i] = atom.Slots[i].Value
		case SlotVariable:
			v, ok := subst[atom.Slots[i].Var]
			if !ok {
				return nil, false
			}
			det[i] = v
		default: // SlotWildcard
			return nil, false
		}
	}
	return det, true
}

// lookupByDeterminant linearly scans t for a live row whose determinant
// columns equal det. The table has no exposed determinant index
// outside its own package, so the chase's read side pays the same
// naive-scan cost as query matching.
func lookupByDeterminant(t *table.Table, det []table.Value) ([]table.Value, bool) {
	numDet := t.NumDeterminant()
	var found []table.Value
	ok := false
	t.Rows(false)(func(row []table.Value, _ table.RowId) bool {
		for i := 0; i < numDet; i++ {
			if row[i] != det[i] {
				return true
			}
		}
		found = append([]table.Value(nil), row...)
		ok = true
		return false
	})
	return found, ok
}

func buildRow(atom Atom, subst Substitution) []table.Value {
	row := make([]table.Value, len(atom.Slots))
	for i, slot := range atom.Slots {
		switch slot.Kind {
		case SlotConcrete:
			row[i] = slot.Value
		case SlotVariable:
			v, ok := subst[slot.Var]
			if !ok {
				panic("xlog: unbound variable in insert pattern")
			}
			row[i] = v
		default: // SlotWildcard
			panic("xlog: cannot insert a wildcard slot")
		}
	}
	return row
}

func equalValues(a, b []table.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// insertPattern performs the chase: it first propagates known values
// between atoms (reading existing dependent columns whenever an atom's
// determinant is fully resolved), then mints a fresh class id for any
// dependent variable still unbound on a class-id column, then inserts
// every atom's row. Reports whether any table changed.
func insertPattern(db *Database, atoms []Atom, subst Substitution) bool {
	for pass := 0; pass < len(atoms)+1; pass++ {
		progressed := false
		for _, atom := range atoms {
			schema := db.schemas[atom.Table]
			numDet := len(schema.Determinant)
			det, ok := resolveDeterminant(atom, schema, subst)
			if !ok {
				continue
			}
			row, found := lookupByDeterminant(db.tables[atom.Table], det)
			if !found {
				continue
			}
			for j, slot := range atom.Slots[numDet:] {
				if slot.Kind == SlotVariable {
					if _, bound := subst[slot.Var]; !bound {
						subst[slot.Var] = row[numDet+j]
						progressed = true
					}
				}
			}
		}
		if !progressed {
			break
		}
	}

	for _, atom := range atoms {
		schema := db.schemas[atom.Table]
		numDet := len(schema.Determinant)
		for j, slot := range atom.Slots[numDet:] {
			if slot.Kind != SlotVariable {
				continue
			}
			if _, bound := subst[slot.Var]; bound {
				continue
			}
			if schema.Dependent[j] != ColEClassId {
				panic("xlog: chase has no fresh value to mint for a non-class-id dependent slot")
			}
			subst[slot.Var] = table.Value(db.classes.Makeset())
		}
	}

	changed := false
	for _, atom := range atoms {
		schema := db.schemas[atom.Table]
		t := db.tables[atom.Table]
		row := buildRow(atom, subst)
		before := t.NumRows()
		merger := table.NewMerger(schema.numColumns(), db.mergeFunc(schema))
		merger.Insert(t, row)
		// A new or replaced row always appends; a merge that keeps the
		// stored row as it was leaves the row count alone.
		if t.NumRows() != before {
			changed = true
		}
	}
	return changed
}
