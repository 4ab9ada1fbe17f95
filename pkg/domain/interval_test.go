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
	"math"
	"testing"
)

func TestIntervalJoinIsHull(t *testing.T) {
	a := Interval{Low: -5, High: 2}
	b := Interval{Low: 0, High: 10}
	got := a.Join(b).(Interval)
	want := Interval{Low: -5, High: 10}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIntervalMeetDisjointIsTop(t *testing.T) {
	a := Interval{Low: 0, High: 2}
	b := Interval{Low: 5, High: 10}
	got := a.Meet(b).(Interval)
	if got != IntervalTop() {
		t.Fatalf("got %+v, want Top", got)
	}
}

func TestIntervalAdd(t *testing.T) {
	a := Interval{Low: 1, High: 3}
	b := Interval{Low: -2, High: 5}
	got := IntervalOps{}.BinOp(Add, a, b).(Interval)
	want := Interval{Low: -1, High: 8}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIntervalMul(t *testing.T) {
	a := Interval{Low: -2, High: 3}
	b := Interval{Low: -1, High: 4}
	got := IntervalOps{}.BinOp(Mul, a, b).(Interval)
	want := Interval{Low: -8, High: 12}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// TestIntervalDivZeroDivisorCorner mirrors
// _examples/original_source/ai/src/interval.rs's zero-divisor
// substitution: a zero b.Low corner substitutes 1, a zero b.High
// corner substitutes -1, rather than the same sign for both. For
// a=[-10,-10], b=[-1,0], every corner divides by either -1 or the
// substituted -1, landing on [10,10]; the wrong (symmetric +1)
// substitution would instead have produced [-10,10].
func TestIntervalDivZeroDivisorCorner(t *testing.T) {
	a := Interval{Low: -10, High: -10}
	b := Interval{Low: -1, High: 0}
	got := intervalDiv(a, b).(Interval)
	want := Interval{Low: 10, High: 10}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIntervalDivNoZeroDivisor(t *testing.T) {
	a := Interval{Low: 10, High: 20}
	b := Interval{Low: 2, High: 5}
	got := intervalDiv(a, b).(Interval)
	want := Interval{Low: 2, High: 10}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIntervalLt(t *testing.T) {
	a := Interval{Low: 1, High: 3}
	b := Interval{Low: 5, High: 10}
	got := intervalLt(a, b).(Interval)
	if got != (Interval{Low: 1, High: 1}) {
		t.Fatalf("got %+v, want known-true boolean interval", got)
	}
}

func TestIntervalWidenGrowsToExtremes(t *testing.T) {
	a := Interval{Low: 0, High: 10}
	b := Interval{Low: -1, High: 20}
	got := a.Widen(b).(Interval)
	if got.Low != math.MinInt32 || got.High != math.MaxInt32 {
		t.Fatalf("got %+v, want both endpoints widened to extremes", got)
	}
}
