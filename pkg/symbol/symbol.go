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

// Package symbol is the minimal string interner consumed (not owned)
// by the core: an opaque token per distinct name, with total equality
// and ordering and a projection back to an index for printing. The
// core never constructs a Symbol except by interning a name through a
// Table.
package symbol

// Symbol is an opaque interned-name token. Two Symbols are equal iff
// they were interned from equal strings by the same Table.
type Symbol uint32

// ToIndex projects a Symbol to the dense index a caller can use to
// print or otherwise look the name back up.
func (s Symbol) ToIndex() uint32 { return uint32(s) }

// Table interns strings into Symbols, first-occurrence order.
type Table struct {
	names []string
	ids   map[string]Symbol
}

// NewTable returns an empty interner.
func NewTable() *Table {
	return &Table{ids: make(map[string]Symbol)}
}

// Intern returns name's Symbol, minting a new one on first occurrence.
func (t *Table) Intern(name string) Symbol {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := Symbol(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

// Name returns the string a Symbol was interned from.
func (t *Table) Name(s Symbol) string { return t.names[s.ToIndex()] }
