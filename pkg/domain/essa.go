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

import (
	"fmt"

	"github.com/RArbore/eqsat-ai/pkg/egraph"
	"github.com/RArbore/eqsat-ai/pkg/table"
	"github.com/RArbore/eqsat-ai/pkg/uf"
)

// Term node shapes interned by the ESSA domain. Each carries enough of
// its operands as e-graph determinant columns that two syntactically
// identical terms (after class-id canonicalization) collide and are
// congruence-merged automatically by egraph.Insert.

type parameterTerm struct {
	idx    int32
	result uf.ClassId
}

func (parameterTerm) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b10, NumDet: 1, NumDep: 1, SymbolID: 1}
}
func (t parameterTerm) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(t.idx)
	dep[0] = table.Value(t.result)
}

type constTerm struct {
	value  int32
	result uf.ClassId
}

func (constTerm) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b10, NumDet: 1, NumDep: 1, SymbolID: 2}
}
func (t constTerm) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(t.value)
	dep[0] = table.Value(t.result)
}

type binOpTerm struct {
	op          BinOp
	lhs, rhs    uf.ClassId
	result      uf.ClassId
}

func (binOpTerm) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b1110, NumDet: 3, NumDep: 1, SymbolID: 3}
}
func (t binOpTerm) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(t.op)
	det[1] = table.Value(t.lhs)
	det[2] = table.Value(t.rhs)
	dep[0] = table.Value(t.result)
}

// phiTerm names the merge of two incoming class ids at control-flow
// join siteID — an if-else merge when used from Join, a loop
// back-edge when used from Widen.
type phiTerm struct {
	site       int
	left, right uf.ClassId
	result     uf.ClassId
}

func (phiTerm) Signature() egraph.Signature {
	return egraph.Signature{ClassIDMask: 0b1110, NumDet: 3, NumDep: 1, SymbolID: 4}
}
func (t phiTerm) EncodeToRow(det, dep []table.Value) {
	det[0] = table.Value(t.site)
	det[1] = table.Value(t.left)
	det[2] = table.Value(t.right)
	dep[0] = table.Value(t.result)
}

// phiKey identifies one widening site's bookkeeping for one variable.
type phiKey struct {
	site int
	v    Variable
}

// phiEntry is the static phi table's per-(site,variable) pair: a
// stable class id naming "this variable across the whole loop", and
// the most recently interned transient Phi node for the current
// iteration.
type phiEntry struct {
	static        uf.ClassId
	lastTransient uf.ClassId
}

// essaContext is the state every clone of an ESSA analysis run's
// domain shares by reference: the e-graph, the running parameter
// counter, and the per-site static-phi bookkeeping.
type essaContext struct {
	egraph      *egraph.EGraph
	paramCount  int
	staticPhi   map[phiKey]*phiEntry
}

// NewESSAContext allocates the shared state for one analysis run.
func NewESSAContext() *essaContext {
	return &essaContext{
		egraph:    egraph.New(),
		staticPhi: make(map[phiKey]*phiEntry),
	}
}

// FullRepair repairs ctx's shared e-graph to convergence. A caller
// should run this after an analysis completes and before trusting
// class-id congruence between terms interned on different branches
// (spec.md §8's S3/S4 scenarios both depend on this).
func (ctx *essaContext) FullRepair() bool {
	return ctx.egraph.FullRepair()
}

// essaValue is the Value ESSA hands the interpreter: the class id
// standing for this term, paired with a snapshot of the inner
// domain's value at that class (used to answer IsKnownTrue/False
// without needing the whole domain state in hand).
type essaValue struct {
	class uf.ClassId
	inner Value
}

func (v essaValue) Top() Value    { return essaValue{class: v.class, inner: v.inner.Top()} }
func (v essaValue) Bottom() Value { return essaValue{class: v.class, inner: v.inner.Bottom()} }

// Join/Meet/Widen on essaValue combine only the inner snapshots; the
// interesting phi-insertion logic happens at the ESSADomain (map)
// level in Join/Widen below, which is where a variable name and two
// distinct class ids are both available.
func (v essaValue) Join(other Value) Value {
	o := other.(essaValue)
	return essaValue{class: v.class, inner: v.inner.Join(o.inner)}
}
func (v essaValue) Meet(other Value) Value {
	o := other.(essaValue)
	return essaValue{class: v.class, inner: v.inner.Meet(o.inner)}
}
func (v essaValue) Widen(other Value) Value {
	o := other.(essaValue)
	return essaValue{class: v.class, inner: v.inner.Widen(o.inner)}
}
func (v essaValue) Equal(other Value) bool {
	o, ok := other.(essaValue)
	return ok && v.inner.Equal(o.inner)
}
func (v essaValue) IsKnownTrue() bool  { return v.inner.IsKnownTrue() }
func (v essaValue) IsKnownFalse() bool { return v.inner.IsKnownFalse() }

// String renders an essaValue as its inner value alongside the e-class
// it denotes, so a caller printing results (e.g. cmd/eqsat interp
// --domain essa) shows something more useful than the struct's default
// formatting.
func (v essaValue) String() string {
	return fmt.Sprintf("%v (class %d)", v.inner, v.class)
}

// Class exposes the e-class id an essaValue denotes, e.g. for a
// caller that wants to ask the e-graph an equality question directly
// after full repair, as spec.md's S3 scenario does.
func (v essaValue) Class() uf.ClassId { return v.class }

// Inner exposes the wrapped inner-domain value, e.g. for a caller
// that only cares what the underlying Concrete/Interval answer was
// once the e-class identity itself isn't the interesting part, as
// spec.md's S4 scenario does.
func (v essaValue) Inner() Value { return v.inner }

// ESSADomain composes term interning (an e-graph, shared via ctx) with
// an inner abstract domain keyed by class id instead of variable. This
// indirection is what makes the analysis equality-aware: once two
// variables' terms are proven congruent, looking either up after
// canonicalizing through the union-find yields the same inner value.
type ESSADomain struct {
	varToClass map[Variable]uf.ClassId
	inner      AbstractDomain
	ctx        *essaContext
}

// NewESSADomain returns an empty ESSA state layered over inner,
// sharing ctx (and therefore its e-graph) with every other state
// clone from the same analysis run.
func NewESSADomain(inner AbstractDomain, ctx *essaContext) *ESSADomain {
	return &ESSADomain{varToClass: map[Variable]uf.ClassId{}, inner: inner, ctx: ctx}
}

func (d *ESSADomain) canonClass(c uf.ClassId) uf.ClassId { return d.ctx.egraph.Find(c) }

// NewParameterValue interns a Parameter(idx) term bound to a
// caller-supplied inner value, rather than the inner domain's Bottom()
// that SeedParameter would assign. This is how a caller pre-abstracts
// a parameter to a known value before calling RunFunction (spec.md
// §4.8's param_abstractions path, e.g. "x pre-abstracted to Value(5)"
// in the loop-aware e-graph scenario): the interpreter's RunFunction
// assigns paramAbstractions entries directly via Assign, so the
// e-graph interning that would otherwise happen in SeedParameter has
// to happen here instead.
func (d *ESSADomain) NewParameterValue(idx int, inner Value) Value {
	declared := d.ctx.egraph.Makeset()
	root := d.ctx.egraph.Insert(parameterTerm{idx: int32(idx), result: declared})
	return essaValue{class: root, inner: inner}
}

func (d *ESSADomain) Bottom() Value {
	root := d.ctx.egraph.Makeset()
	return essaValue{class: root, inner: d.inner.Bottom()}
}

// SeedParameter implements ParameterSeeder: it mints a fresh class,
// interns a Parameter(idx) term, binds the inner domain's bottom value
// at that class, and returns both the new domain state and the value
// a caller should Assign to the parameter's variable.
func (d *ESSADomain) SeedParameter(idx int) (AbstractDomain, Value) {
	declared := d.ctx.egraph.Makeset()
	root := d.ctx.egraph.Insert(parameterTerm{idx: int32(idx), result: declared})
	innerBottom := d.inner.Bottom()
	newInner := d.inner.Assign(Variable(root), innerBottom)
	d.ctx.paramCount++
	return &ESSADomain{varToClass: d.varToClass, inner: newInner, ctx: d.ctx}, essaValue{class: root, inner: innerBottom}
}

func (d *ESSADomain) Lookup(v Variable) Value {
	class, ok := d.varToClass[v]
	if !ok {
		return essaValue{inner: d.inner.Bottom().Top()}
	}
	class = d.canonClass(class)
	return essaValue{class: class, inner: d.inner.Lookup(Variable(class))}
}

func (d *ESSADomain) Assign(v Variable, val Value) AbstractDomain {
	ev := val.(essaValue)
	class := d.canonClass(ev.class)
	nv := make(map[Variable]uf.ClassId, len(d.varToClass)+1)
	for k, c := range d.varToClass {
		nv[k] = c
	}
	nv[v] = class
	newInner := d.inner.Assign(Variable(class), ev.inner)
	return &ESSADomain{varToClass: nv, inner: newInner, ctx: d.ctx}
}

func (d *ESSADomain) TransferConst(n int32) Value {
	declared := d.ctx.egraph.Makeset()
	root := d.ctx.egraph.Insert(constTerm{value: n, result: declared})
	return essaValue{class: root, inner: d.inner.TransferConst(n)}
}

func (d *ESSADomain) TransferBinOp(op BinOp, lhs, rhs Value) Value {
	l, r := lhs.(essaValue), rhs.(essaValue)
	declared := d.ctx.egraph.Makeset()
	root := d.ctx.egraph.Insert(binOpTerm{op: op, lhs: l.class, rhs: r.class, result: declared})
	innerVal := d.inner.TransferBinOp(op, l.inner, r.inner)
	return essaValue{class: root, inner: innerVal}
}

func (d *ESSADomain) Branch(cond Value) (AbstractDomain, AbstractDomain) {
	ev := cond.(essaValue)
	isTrue, isFalse := ev.inner.IsKnownTrue(), ev.inner.IsKnownFalse()
	if isTrue && !isFalse {
		return d, nil
	}
	if isFalse && !isTrue {
		return nil, d
	}
	return d, d
}

// Join implements spec §4.8's merge-site phi insertion: variables
// bound to the same class on both sides are kept as-is; variables
// that diverge get a fresh class, a Phi(siteID, left, right) term, and
// both sides' inner values stamped onto that fresh class before the
// inner states themselves are joined.
func (d *ESSADomain) Join(otherAD AbstractDomain, siteID int) AbstractDomain {
	other := otherAD.(*ESSADomain)
	nv := make(map[Variable]uf.ClassId)
	leftInner, rightInner := d.inner, other.inner

	for v, leftClass := range d.varToClass {
		rightClass, ok := other.varToClass[v]
		if !ok {
			continue
		}
		leftClass, rightClass = d.canonClass(leftClass), d.canonClass(rightClass)
		if leftClass == rightClass {
			nv[v] = leftClass
			continue
		}
		leftVal := leftInner.Lookup(Variable(leftClass))
		rightVal := rightInner.Lookup(Variable(rightClass))
		declared := d.ctx.egraph.Makeset()
		newRoot := d.ctx.egraph.Insert(phiTerm{site: siteID, left: leftClass, right: rightClass, result: declared})
		leftInner = leftInner.Assign(Variable(newRoot), leftVal)
		rightInner = rightInner.Assign(Variable(newRoot), rightVal)
		nv[v] = newRoot
	}

	mergedInner := leftInner.Join(rightInner, siteID)
	return &ESSADomain{varToClass: nv, inner: mergedInner, ctx: d.ctx}
}

// Widen implements spec §4.8's loop back-edge phi insertion: the first
// time a variable diverges at siteID a stable "static" phi class is
// minted and remembered; later iterations reuse the same static class
// while re-interning a fresh transient Phi node for the current
// operand classes. Once an iteration introduces no new static phi, the
// set of loop-carried variables has stabilized, so every static phi at
// this site is merged with its last transient node (teaching the
// e-graph the loop-carried identity) and the site's bookkeeping is
// cleared.
func (d *ESSADomain) Widen(otherAD AbstractDomain, siteID int) AbstractDomain {
	other := otherAD.(*ESSADomain)
	nv := make(map[Variable]uf.ClassId)
	leftInner, rightInner := d.inner, other.inner
	introducedNewStatic := false

	for v, leftClass := range d.varToClass {
		rightClass, ok := other.varToClass[v]
		if !ok {
			continue
		}
		leftClass, rightClass = d.canonClass(leftClass), d.canonClass(rightClass)
		if leftClass == rightClass {
			nv[v] = leftClass
			continue
		}

		leftVal := leftInner.Lookup(Variable(leftClass))
		rightVal := rightInner.Lookup(Variable(rightClass))
		key := phiKey{site: siteID, v: v}
		entry, seen := d.ctx.staticPhi[key]
		if !seen {
			static := d.ctx.egraph.Makeset()
			declared := d.ctx.egraph.Makeset()
			transient := d.ctx.egraph.Insert(phiTerm{site: siteID, left: leftClass, right: rightClass, result: declared})
			d.ctx.staticPhi[key] = &phiEntry{static: static, lastTransient: transient}
			entry = d.ctx.staticPhi[key]
			introducedNewStatic = true
		} else {
			declared := d.ctx.egraph.Makeset()
			transient := d.ctx.egraph.Insert(phiTerm{site: siteID, left: leftClass, right: rightClass, result: declared})
			entry.lastTransient = transient
		}
		leftInner = leftInner.Assign(Variable(entry.static), leftVal)
		rightInner = rightInner.Assign(Variable(entry.static), rightVal)
		nv[v] = entry.static
	}

	if !introducedNewStatic {
		for key, entry := range d.ctx.staticPhi {
			if key.site != siteID {
				continue
			}
			d.ctx.egraph.Merge(entry.static, entry.lastTransient)
			delete(d.ctx.staticPhi, key)
		}
	}

	mergedInner := leftInner.Widen(rightInner, siteID)
	return &ESSADomain{varToClass: nv, inner: mergedInner, ctx: d.ctx}
}

func (d *ESSADomain) Finish(val Value, siteID int) {
	d.inner.Finish(val.(essaValue), siteID)
}

func (d *ESSADomain) Equal(otherAD AbstractDomain) bool {
	other, ok := otherAD.(*ESSADomain)
	if !ok || len(d.varToClass) != len(other.varToClass) {
		return false
	}
	for v, c := range d.varToClass {
		oc, ok := other.varToClass[v]
		if !ok || d.canonClass(c) != d.canonClass(oc) {
			return false
		}
	}
	return d.inner.Equal(other.inner)
}
