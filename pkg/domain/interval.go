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

import "math"

// Interval is a closed [low, high] range over i32. Top is the empty
// range [MaxInt32, MinInt32] (no possible value, absorbing for meet,
// identity for join); Bottom is the full range [MinInt32, MaxInt32]
// (could be anything).
type Interval struct {
	Low, High int32
}

func IntervalTop() Interval    { return Interval{Low: math.MaxInt32, High: math.MinInt32} }
func IntervalBottom() Interval { return Interval{Low: math.MinInt32, High: math.MaxInt32} }

func (v Interval) Top() Value    { return IntervalTop() }
func (v Interval) Bottom() Value { return IntervalBottom() }

// Join is the interval hull. The endpoint-wise min/max formula happens
// to also implement Top-as-identity and Bottom-as-absorbing without a
// special case: Top's endpoints are already the most permissive
// possible inputs to min/max.
func (v Interval) Join(other Value) Value {
	o := other.(Interval)
	return Interval{Low: min(v.Low, o.Low), High: max(v.High, o.High)}
}

// Meet is the clipped intersection, collapsing to Top when disjoint.
func (v Interval) Meet(other Value) Value {
	o := other.(Interval)
	lo, hi := max(v.Low, o.Low), min(v.High, o.High)
	if lo > hi {
		return IntervalTop()
	}
	return Interval{Low: lo, High: hi}
}

// Widen extends whichever endpoint grew to the i32 extreme, which
// guarantees termination in at most one growth step per endpoint.
func (v Interval) Widen(other Value) Value {
	o := other.(Interval)
	lo, hi := v.Low, v.High
	if o.Low < v.Low {
		lo = math.MinInt32
	}
	if o.High > v.High {
		hi = math.MaxInt32
	}
	return Interval{Low: lo, High: hi}
}

func (v Interval) Equal(other Value) bool {
	o, ok := other.(Interval)
	return ok && v == o
}

func (v Interval) IsKnownTrue() bool { return v.Low >= 1 || v.High <= -1 }
func (v Interval) IsKnownFalse() bool {
	return (v.Low == 0 && v.High == 0) || v == IntervalTop()
}

// IntervalOps is the Interval ValueOps plugin, driving
// TransferConst/TransferBinOp for a LatticeDomain.
type IntervalOps struct{}

func (IntervalOps) Top() Value    { return IntervalTop() }
func (IntervalOps) Bottom() Value { return IntervalBottom() }
func (IntervalOps) Const(n int32) Value {
	return Interval{Low: n, High: n}
}

func (IntervalOps) BinOp(op BinOp, lhs, rhs Value) Value {
	a, b := lhs.(Interval), rhs.(Interval)
	switch op {
	case Add:
		return intervalAddSub(a, b, false)
	case Sub:
		return intervalAddSub(a, b, true)
	case Mul:
		return intervalMul(a, b)
	case Div:
		return intervalDiv(a, b)
	case Mod:
		panic("interval domain: Mod is unimplemented")
	case Eq:
		return intervalEq(a, b)
	case Ne:
		return intervalNe(a, b)
	case Lt:
		return intervalLt(a, b)
	case Le:
		return intervalLe(a, b)
	case Gt:
		return intervalLt(b, a)
	case Ge:
		return intervalLe(b, a)
	default:
		panic("interval domain: unknown operator")
	}
}

func addI64(a, b int32) (int64, bool) {
	r := int64(a) + int64(b)
	return r, r >= math.MinInt32 && r <= math.MaxInt32
}

func subI64(a, b int32) (int64, bool) {
	r := int64(a) - int64(b)
	return r, r >= math.MinInt32 && r <= math.MaxInt32
}

func mulI64(a, b int32) (int64, bool) {
	r := int64(a) * int64(b)
	return r, r >= math.MinInt32 && r <= math.MaxInt32
}

func intervalAddSub(a, b Interval, isSub bool) Value {
	var lo, hi int64
	var loOK, hiOK bool
	if isSub {
		// a.Low - b.High gives the true minimum, a.High - b.Low the max.
		lo, loOK = subI64(a.Low, b.High)
		hi, hiOK = subI64(a.High, b.Low)
	} else {
		lo, loOK = addI64(a.Low, b.Low)
		hi, hiOK = addI64(a.High, b.High)
	}
	if !loOK || !hiOK {
		return IntervalBottom()
	}
	return Interval{Low: int32(lo), High: int32(hi)}
}

func intervalMul(a, b Interval) Value {
	corners := [4]int64{}
	inputs := [4][2]int32{{a.Low, b.Low}, {a.Low, b.High}, {a.High, b.Low}, {a.High, b.High}}
	for i, in := range inputs {
		r, ok := mulI64(in[0], in[1])
		if !ok {
			return IntervalBottom()
		}
		corners[i] = r
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return Interval{Low: int32(lo), High: int32(hi)}
}

// divEndpoint substitutes a zero divisor with +-1 rather than signaling
// division by zero, per the documented (deliberate) imprecision. The
// substitute's sign depends on which corner of b it stands in for: a
// zero b.Low substitutes 1, a zero b.High substitutes -1, so the
// substitute still sits on the correct side of the divisor's true
// (excluded) zero.
func divEndpoint(n, d int32, lowCorner bool) int32 {
	if d == 0 {
		if lowCorner {
			d = 1
		} else {
			d = -1
		}
	}
	return n / d
}

func intervalDiv(a, b Interval) Value {
	corners := [4]int32{
		divEndpoint(a.Low, b.Low, true),
		divEndpoint(a.Low, b.High, false),
		divEndpoint(a.High, b.Low, true),
		divEndpoint(a.High, b.High, false),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return Interval{Low: lo, High: hi}
}

func boolInterval(known, value bool) Interval {
	if !known {
		return Interval{Low: 0, High: 1}
	}
	if value {
		return Interval{Low: 1, High: 1}
	}
	return Interval{Low: 0, High: 0}
}

func intervalLt(a, b Interval) Value {
	if a.High < b.Low {
		return boolInterval(true, true)
	}
	if a.Low >= b.High {
		return boolInterval(true, false)
	}
	return boolInterval(false, false)
}

func intervalLe(a, b Interval) Value {
	if a.High <= b.Low {
		return boolInterval(true, true)
	}
	if a.Low > b.High {
		return boolInterval(true, false)
	}
	return boolInterval(false, false)
}

func intervalEq(a, b Interval) Value {
	if a.Low == a.High && b.Low == b.High && a.Low == b.Low {
		return boolInterval(true, true)
	}
	if a.High < b.Low || b.High < a.Low {
		return boolInterval(true, false)
	}
	return boolInterval(false, false)
}

func intervalNe(a, b Interval) Value {
	if a.High < b.Low || b.High < a.Low {
		return boolInterval(true, true)
	}
	if a.Low == a.High && b.Low == b.High && a.Low == b.Low {
		return boolInterval(true, false)
	}
	return boolInterval(false, false)
}
