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

// Package table implements the insertion-ordered, determinant-unique
// relational table that both the e-graph and the Datalog engine are
// built on top of: a fixed-width row store plus a hash index from
// determinant tuple to row id, supporting idempotent insert,
// tombstone-delete, and semi-naive (delta) iteration.
package table

import (
	"unsafe"
)

// Value is the scalar element type stored in every column. Depending on
// a column's role it may hold a raw integer, a symbol id, or (via the
// class-id mask kept by callers) a uf.ClassId.
type Value = uint32

// RowId identifies a row within a single Table for its lifetime. Row ids
// are never reused; a deleted row's id is simply retired.
type RowId = uint64

// Table is a (numDeterminant, numDependent)-typed relation: an
// insertion-ordered sequence of fixed-width rows, plus a hash index from
// determinant tuple to row id so inserts can detect a pre-existing row
// in O(1). Rows are never rewritten in place — updates are delete +
// re-insert.
type Table struct {
	numDet int
	numDep int

	buffer []Value // flat storage, numDet+numDep Values per row

	index map[string]RowId // determinant-as-bytes -> row id

	deleted     map[RowId]struct{}
	deltaMarker RowId
}

// New creates an empty table with the given determinant/dependent column
// counts.
func New(numDet, numDep int) *Table {
	return &Table{
		numDet:  numDet,
		numDep:  numDep,
		index:   make(map[string]RowId),
		deleted: make(map[RowId]struct{}),
	}
}

// NumDeterminant returns the number of determinant (key) columns.
func (t *Table) NumDeterminant() int { return t.numDet }

// NumDependent returns the number of dependent (value) columns.
func (t *Table) NumDependent() int { return t.numDep }

func (t *Table) numColumns() int { return t.numDet + t.numDep }

func (t *Table) numRows() RowId { return RowId(len(t.buffer) / t.numColumns()) }

// NumRows returns the number of rows ever inserted (live or tombstoned).
// The id that the next Insert would assign, absent a determinant
// collision, equals NumRows().
func (t *Table) NumRows() RowId { return t.numRows() }

func (t *Table) rowSlice(id RowId) []Value {
	n := t.numColumns()
	start := int(id) * n
	return t.buffer[start : start+n]
}

func determinantKey(determinant []Value) string {
	if len(determinant) == 0 {
		return ""
	}
	// Byte-view of the uint32 slice; valid because we copy it into the
	// map key immediately (Go copies the bytes backing a string key).
	b := unsafe.Slice((*byte)(unsafe.Pointer(&determinant[0])), len(determinant)*4)
	return string(b)
}

// Insert hashes row[0:numDet] and looks up an existing entry. If the
// determinant was already present, the pre-existing row is returned
// unchanged (insert never overwrites on collision); otherwise row is
// appended and its new id is returned.
func (t *Table) Insert(row []Value) ([]Value, RowId) {
	if len(row) != t.numColumns() {
		panic("table: row width does not match table signature")
	}
	key := determinantKey(row[:t.numDet])
	if id, ok := t.index[key]; ok {
		return t.rowSlice(id), id
	}
	id := t.numRows()
	t.buffer = append(t.buffer, row...)
	t.index[key] = id
	return t.rowSlice(id), id
}

// Delete tombstones row_id: it is removed from the hash index and
// marked so future calls to Rows skip it. Returns the row's last live
// contents.
func (t *Table) Delete(id RowId) []Value {
	row := t.rowSlice(id)
	key := determinantKey(row[:t.numDet])
	delete(t.index, key)
	t.deleted[id] = struct{}{}
	return row
}

// MarkDelta records the current row count as the delta marker, so a
// subsequent Rows(true) call only sees rows inserted after this point
// (semi-naive iteration).
func (t *Table) MarkDelta() {
	t.deltaMarker = t.numRows()
}

// Rows returns a function-based iterator over live rows. When delta is
// true, iteration starts at the last MarkDelta() point instead of row 0.
func (t *Table) Rows(delta bool) func(yield func(row []Value, id RowId) bool) {
	start := RowId(0)
	if delta {
		start = t.deltaMarker
	}
	return func(yield func(row []Value, id RowId) bool) {
		for id := start; id < t.numRows(); id++ {
			if _, dead := t.deleted[id]; dead {
				continue
			}
			if !yield(t.rowSlice(id), id) {
				return
			}
		}
	}
}

// CollectRows materializes Rows(delta) into a slice, useful for callers
// that need to mutate the table while iterating (Rebuild does this).
func (t *Table) CollectRows(delta bool) [][]Value {
	var out [][]Value
	t.Rows(delta)(func(row []Value, _ RowId) bool {
		cp := make([]Value, len(row))
		copy(cp, row)
		out = append(out, cp)
		return true
	})
	return out
}

// CollectRowIDs is like CollectRows but returns (row, id) pairs.
func (t *Table) CollectRowIDs(delta bool) ([][]Value, []RowId) {
	var rows [][]Value
	var ids []RowId
	t.Rows(delta)(func(row []Value, id RowId) bool {
		cp := make([]Value, len(row))
		copy(cp, row)
		rows = append(rows, cp)
		ids = append(ids, id)
		return true
	})
	return rows, ids
}

// MergeFunc combines two rows sharing a determinant into dst.
type MergeFunc func(oldRow, newRow []Value, dst []Value)

// Merger wraps a MergeFunc with scratch storage so repeated Insert calls
// avoid reallocating.
type Merger struct {
	mergeFn MergeFunc
	scratch []Value
}

// NewMerger creates a Merger over rows of width numColumns.
func NewMerger(numColumns int, mergeFn MergeFunc) *Merger {
	return &Merger{mergeFn: mergeFn, scratch: make([]Value, numColumns)}
}

// Insert attempts to insert row into table. On collision with an
// existing determinant it invokes the merge function; if the merged
// dependent columns differ from the stored ones, the stale row is
// deleted and the merged row inserted in its place. Returns the row
// that ended up live in the table.
func (m *Merger) Insert(t *Table, row []Value) []Value {
	numDet := t.NumDeterminant()
	wouldBeNewID := t.numRows()
	inRow, rowID := t.Insert(row)
	if rowID == wouldBeNewID {
		return inRow[numDet:]
	}
	copy(m.scratch, row)
	m.mergeFn(row, inRow, m.scratch)
	if equalValues(inRow[numDet:], m.scratch[numDet:]) {
		return inRow[numDet:]
	}
	t.Delete(rowID)
	merged, _ := t.Insert(m.scratch)
	return merged[numDet:]
}

func equalValues(a, b []Value) bool {
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

// CanonFunc writes row's canonical form into dst.
type CanonFunc func(row []Value, dst []Value)

// Canonizer wraps a CanonFunc with scratch storage.
type Canonizer struct {
	canonFn CanonFunc
	scratch []Value
}

// NewCanonizer creates a Canonizer over rows of width numColumns.
func NewCanonizer(numColumns int, canonFn CanonFunc) *Canonizer {
	return &Canonizer{canonFn: canonFn, scratch: make([]Value, numColumns)}
}

// Canon computes row's canonical form. Returns (nil, false) when the row
// is already canonical (unchanged), or (canonical, true) otherwise; the
// returned slice is reused across calls and must be consumed before the
// next call.
func (c *Canonizer) Canon(row []Value) ([]Value, bool) {
	c.canonFn(row, c.scratch)
	if equalValues(c.scratch, row) {
		return nil, false
	}
	return c.scratch, true
}

// Rebuild iterates all rows of t; for each row whose canonical form (via
// cf) differs from its stored form, deletes the stale row and
// re-inserts the canonical form via a Merger built from mf. Repeats to
// fixpoint (a canonicalization or merge may produce a row that itself
// needs re-canonicalizing). Returns whether any change occurred across
// the whole run.
func Rebuild(t *Table, mf MergeFunc, cf CanonFunc) bool {
	numColumns := t.NumDeterminant() + t.NumDependent()
	canonizer := NewCanonizer(numColumns, cf)
	merger := NewMerger(numColumns, mf)

	everChanged := false
	for {
		changed := false
		var canonized []Value
		var toDelete []RowId

		t.Rows(false)(func(row []Value, id RowId) bool {
			if canonRow, ok := canonizer.Canon(row); ok {
				changed = true
				canonized = append(canonized, canonRow...)
				toDelete = append(toDelete, id)
			}
			return true
		})

		for _, id := range toDelete {
			t.Delete(id)
		}

		numNewRows := len(canonized) / numColumns
		for i := 0; i < numNewRows; i++ {
			merger.Insert(t, canonized[i*numColumns:(i+1)*numColumns])
		}

		if !changed {
			return everChanged
		}
		everChanged = true
	}
}
