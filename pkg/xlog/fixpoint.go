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

// Step runs a single fixpoint round: every rule's query evaluates
// against the round's starting snapshot, then every rule's action
// runs against its own captured matches, then db.Repair runs once —
// mirroring semi-naive evaluation: an action's insert is visible to
// the next round's queries, never to the same round's. Returns
// whether anything changed, so a caller driving its own loop (e.g. to
// cap the round count, or report per-round progress) can stop early.
func Step(db *Database, rules []Rule, library FunctionLibrary) bool {
	type pendingAction struct {
		action *Action
		substs []Substitution
	}
	pending := make([]pendingAction, len(rules))
	for i := range rules {
		pending[i] = pendingAction{
			action: &rules[i].Action,
			substs: DumbProductQuery(db, rules[i].Query),
		}
	}

	changed := false
	for _, p := range pending {
		if executeActions(db, library, p.action, p.substs) {
			changed = true
		}
	}
	if db.Repair() {
		changed = true
	}
	return changed
}

// Fixpoint repeats Step until a full round changes nothing.
func Fixpoint(db *Database, rules []Rule, library FunctionLibrary) {
	for Step(db, rules, library) {
	}
}
