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

package domain

// ValueOps is the per-domain plugin LatticeDomain needs: the concrete
// value algebra (Interval arithmetic, Concrete constant-folding, ...).
// Join/Meet/Widen at the map level are generic (pointwise,
// intersect-on-common-keys); only the per-value operations are
// domain-specific.
type ValueOps interface {
	Top() Value
	Bottom() Value
	Const(n int32) Value
	BinOp(op BinOp, lhs, rhs Value) Value
}

// LatticeDomain is "a mapping from variable to lattice value, plus a
// reference to a shared finished sink" (spec §3): the generic map
// machinery Interval, Concrete, and Unit all share. Absence of a key
// means Top (unconstrained); Join/Widen only consider keys present in
// both operands, per the intersect-on-merge invariant.
type LatticeDomain struct {
	values   map[Variable]Value
	finished *Finished
	ops      ValueOps
}

// NewLatticeDomain returns an empty state sharing finished and backed
// by ops.
func NewLatticeDomain(ops ValueOps, finished *Finished) *LatticeDomain {
	return &LatticeDomain{values: map[Variable]Value{}, finished: finished, ops: ops}
}

func (d *LatticeDomain) Bottom() Value { return d.ops.Bottom() }

func (d *LatticeDomain) Lookup(v Variable) Value {
	if val, ok := d.values[v]; ok {
		return val
	}
	return d.ops.Top()
}

func (d *LatticeDomain) Assign(v Variable, val Value) AbstractDomain {
	nv := make(map[Variable]Value, len(d.values)+1)
	for k, existing := range d.values {
		nv[k] = existing
	}
	nv[v] = val
	return &LatticeDomain{values: nv, finished: d.finished, ops: d.ops}
}

func (d *LatticeDomain) TransferConst(n int32) Value { return d.ops.Const(n) }

func (d *LatticeDomain) TransferBinOp(op BinOp, lhs, rhs Value) Value {
	return d.ops.BinOp(op, lhs, rhs)
}

func (d *LatticeDomain) Branch(cond Value) (AbstractDomain, AbstractDomain) {
	isTrue, isFalse := cond.IsKnownTrue(), cond.IsKnownFalse()
	if isTrue && !isFalse {
		return d, nil
	}
	if isFalse && !isTrue {
		return nil, d
	}
	return d, d
}

func (d *LatticeDomain) merge(other AbstractDomain, combine func(a, b Value) Value) AbstractDomain {
	o := other.(*LatticeDomain)
	nv := make(map[Variable]Value)
	for k, v := range d.values {
		if ov, ok := o.values[k]; ok {
			nv[k] = combine(v, ov)
		}
	}
	return &LatticeDomain{values: nv, finished: d.finished, ops: d.ops}
}

func (d *LatticeDomain) Join(other AbstractDomain, siteID int) AbstractDomain {
	return d.merge(other, func(a, b Value) Value { return a.Join(b) })
}

func (d *LatticeDomain) Widen(other AbstractDomain, siteID int) AbstractDomain {
	return d.merge(other, func(a, b Value) Value { return a.Widen(b) })
}

func (d *LatticeDomain) Finish(val Value, siteID int) {
	d.finished.Record(siteID, val)
}

func (d *LatticeDomain) Equal(other AbstractDomain) bool {
	o, ok := other.(*LatticeDomain)
	if !ok || len(d.values) != len(o.values) {
		return false
	}
	for k, v := range d.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Canonicalize re-syncs a class-id-keyed LatticeDomain (an ESSA inner
// domain) with the union-find's current partition: for every key that
// is not its own representative under find, its value is folded into
// the representative's entry via Meet and the stale key is dropped.
// This is how equalities the e-graph discovers after the fact (e.g.
// via FullRepair) propagate back into already-computed abstract state.
func (d *LatticeDomain) Canonicalize(find func(Variable) Variable) *LatticeDomain {
	nv := make(map[Variable]Value, len(d.values))
	for k, v := range d.values {
		rep := find(k)
		if existing, ok := nv[rep]; ok {
			nv[rep] = existing.Meet(v)
		} else {
			nv[rep] = v
		}
	}
	return &LatticeDomain{values: nv, finished: d.finished, ops: d.ops}
}
