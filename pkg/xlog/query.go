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

// Substitution binds query/action variables to column values.
type Substitution map[symbol.Symbol]table.Value

func cloneSubst(s Substitution) Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DumbProductQuery evaluates q against db by naive recursive product:
// match the first atom against every live row of its table, extending
// the substitution variable by variable and rejecting on
// concrete-value mismatch, then recurse on the remaining atoms. An
// empty query matches exactly once, against the empty substitution —
// this is how a fact (a Rule with no antecedent) fires on every round.
func DumbProductQuery(db *Database, q Query) []Substitution {
	return matchAtoms(db, q.Atoms, Substitution{})
}

func matchAtoms(db *Database, atoms []Atom, subst Substitution) []Substitution {
	if len(atoms) == 0 {
		return []Substitution{cloneSubst(subst)}
	}
	atom := atoms[0]
	rest := atoms[1:]
	t := db.tables[atom.Table]
	var out []Substitution
	t.Rows(false)(func(row []table.Value, _ table.RowId) bool {
		if extended, ok := matchRow(atom, row, subst); ok {
			out = append(out, matchAtoms(db, rest, extended)...)
		}
		return true
	})
	return out
}

func matchRow(atom Atom, row []table.Value, subst Substitution) (Substitution, bool) {
	next := cloneSubst(subst)
	for i, slot := range atom.Slots {
		switch slot.Kind {
		case SlotWildcard:
			continue
		case SlotConcrete:
			if row[i] != slot.Value {
				return nil, false
			}
		case SlotVariable:
			if bound, ok := next[slot.Var]; ok {
				if bound != row[i] {
					return nil, false
				}
			} else {
				next[slot.Var] = row[i]
			}
		}
	}
	return next, true
}
