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

// Unit is the no-op inner domain: a single value carrying no
// information at all. It exists so an ESSA domain can be run for its
// e-graph/congruence tracking alone, with no abstract value riding
// along.
type Unit struct{}

func (Unit) Top() Value            { return Unit{} }
func (Unit) Bottom() Value         { return Unit{} }
func (Unit) Join(Value) Value      { return Unit{} }
func (Unit) Meet(Value) Value      { return Unit{} }
func (Unit) Widen(Value) Value     { return Unit{} }
func (Unit) Equal(Value) bool      { return true }
func (Unit) IsKnownTrue() bool     { return false }
func (Unit) IsKnownFalse() bool    { return false }

// UnitOps is the Unit ValueOps plugin: every operation returns Unit{}.
type UnitOps struct{}

func (UnitOps) Top() Value                        { return Unit{} }
func (UnitOps) Bottom() Value                     { return Unit{} }
func (UnitOps) Const(int32) Value                 { return Unit{} }
func (UnitOps) BinOp(BinOp, Value, Value) Value    { return Unit{} }
