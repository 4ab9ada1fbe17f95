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
	"github.com/RArbore/eqsat-ai/pkg/lattice"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
	"github.com/RArbore/eqsat-ai/pkg/table"
	"github.com/RArbore/eqsat-ai/pkg/uf"
)

// LatticeCodec lets a CustomLattice dependent column hold an arbitrary
// lattice.Lattice value inside a single table.Value (uint32) column,
// so the generic table/merge machinery never needs to know the
// concrete lattice type.
type LatticeCodec interface {
	Decode(table.Value) lattice.Lattice
	Encode(lattice.Lattice) table.Value
}

// ReachabilityCodec is the LatticeCodec for pkg/lattice.Reachability,
// which already fits a single bit of a table.Value.
type ReachabilityCodec struct{}

func (ReachabilityCodec) Decode(v table.Value) lattice.Lattice { return lattice.Reachability(v) }
func (ReachabilityCodec) Encode(l lattice.Lattice) table.Value {
	return table.Value(l.(lattice.Reachability))
}

// Database owns every registered table plus the union-find their
// class-id columns share with the e-graph (or a standalone one, for a
// pure-Datalog program with no e-graph involved).
type Database struct {
	classes *uf.UnionFind
	tables  []*table.Table
	schemas []Schema
	names   map[symbol.Symbol]TableId
}

// NewDatabase returns an empty database whose EClassId columns
// canonicalize against classes.
func NewDatabase(classes *uf.UnionFind) *Database {
	return &Database{classes: classes, names: make(map[symbol.Symbol]TableId)}
}

// Classes exposes the shared union-find, e.g. so a caller can Makeset
// a class id before inserting a fact that references it.
func (db *Database) Classes() *uf.UnionFind { return db.classes }

// RegisterTable declares a new relation under name with the given
// schema and returns its id.
func (db *Database) RegisterTable(name symbol.Symbol, schema Schema) TableId {
	id := TableId(len(db.tables))
	db.tables = append(db.tables, table.New(len(schema.Determinant), len(schema.Dependent)))
	db.schemas = append(db.schemas, schema)
	db.names[name] = id
	return id
}

// TableID looks up a table registered under name.
func (db *Database) TableID(name symbol.Symbol) (TableId, bool) {
	id, ok := db.names[name]
	return id, ok
}

// Names returns every registered table name to id, e.g. so a caller
// can report per-table row counts without knowing the schema upfront.
func (db *Database) Names() map[symbol.Symbol]TableId {
	return db.names
}

// Table returns the underlying relation for id.
func (db *Database) Table(id TableId) *table.Table { return db.tables[id] }

// Schema returns the schema id was registered with.
func (db *Database) Schema(id TableId) Schema { return db.schemas[id] }

func (db *Database) mergeFunc(schema Schema) table.MergeFunc {
	numDet := len(schema.Determinant)
	return func(oldRow, newRow, dst []table.Value) {
		copy(dst, newRow)
		for j, kind := range schema.Dependent {
			col := numDet + j
			switch kind {
			case ColEClassId:
				dst[col] = table.Value(db.classes.Merge(uf.ClassId(oldRow[col]), uf.ClassId(newRow[col])))
			case ColCustomLattice:
				codec := schema.Codecs[j]
				merged := codec.Decode(oldRow[col]).Meet(codec.Decode(newRow[col]))
				dst[col] = codec.Encode(merged)
			}
		}
	}
}

func (db *Database) canonFunc(schema Schema) table.CanonFunc {
	return func(row, dst []table.Value) {
		copy(dst, row)
		for i, kind := range schema.Determinant {
			if kind == ColEClassId {
				dst[i] = table.Value(db.classes.Find(uf.ClassId(row[i])))
			}
		}
	}
}

// Repair runs rebuild over every table (find-canonicalize class-id
// determinant columns; meet dependent lattice columns, merge dependent
// class-id columns), repeating across the whole database until a full
// pass changes nothing. Returns whether anything changed.
func (db *Database) Repair() bool {
	everChanged := false
	for {
		changed := false
		for i, t := range db.tables {
			schema := db.schemas[i]
			if table.Rebuild(t, db.mergeFunc(schema), db.canonFunc(schema)) {
				changed = true
			}
		}
		if !changed {
			return everChanged
		}
		everChanged = true
	}
}
