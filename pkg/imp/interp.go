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

package imp

import (
	"github.com/RArbore/eqsat-ai/pkg/domain"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
)

// siteCounter hands out the monotonically increasing statement ids
// that drive Join/Widen/Finish's siteID parameter (spec.md §4.9): one
// shared counter threaded by pointer through an entire function walk,
// incremented once per statement visited, mirroring the original
// driver's "*unique_id = *unique_id + 1" at the top of every
// statement dispatch.
type siteCounter struct{ next int }

func (c *siteCounter) advance() int {
	c.next++
	return c.next
}

// RunFunction seeds fn's parameters and walks its body to completion.
// Parameters named in paramAbstractions are assigned that starting
// value; every other parameter gets the domain's Bottom(), or — when
// ad implements ParameterSeeder — the domain-specific seeding that
// extension provides (the ESSA domain uses it to additionally intern
// a Parameter term). The returned abstract values accumulate in
// whatever Finished sink the domain shares internally; this function
// returns nothing because every path through a function's block
// either returns (recorded via Finish) or falls off the end (silently
// discarded, matching the original driver's Option<AD> plumbing).
func RunFunction(ad domain.AbstractDomain, fn *FunctionAST, paramAbstractions map[symbol.Symbol]domain.Value) {
	counter := &siteCounter{}
	for _, param := range fn.Params {
		if abstraction, ok := paramAbstractions[param]; ok {
			ad = ad.Assign(domain.Variable(param), abstraction)
			continue
		}
		if seeder, ok := ad.(domain.ParameterSeeder); ok {
			next, val := seeder.SeedParameter(int(param))
			ad = next.Assign(domain.Variable(param), val)
			continue
		}
		ad = ad.Assign(domain.Variable(param), ad.Bottom())
	}
	runBlock(ad, &fn.Block, counter)
}

// runBlock threads state through every statement in order, stopping
// early (returning nil) the moment a statement returns.
func runBlock(ad domain.AbstractDomain, block *BlockAST, counter *siteCounter) domain.AbstractDomain {
	for i := range block.Stmts {
		ad = runStmt(ad, &block.Stmts[i], counter)
		if ad == nil {
			return nil
		}
	}
	return ad
}

// runStmt dispatches on Kind with a dense switch, per spec.md §9's
// instruction to avoid virtual dispatch over AST sum types.
func runStmt(ad domain.AbstractDomain, stmt *StatementAST, counter *siteCounter) domain.AbstractDomain {
	siteID := counter.advance()

	switch stmt.Kind {
	case StmtBlock:
		return runBlock(ad, stmt.AsBlock, counter)

	case StmtAssign:
		val := evalExpr(ad, &stmt.AsAssign.Expr)
		return ad.Assign(domain.Variable(stmt.AsAssign.Var), val)

	case StmtIfElse:
		mergeSite := siteID
		cond := evalExpr(ad, &stmt.AsIf.Cond)
		thenAD, elseAD := ad.Branch(cond)

		if thenAD != nil {
			thenAD = runBlock(thenAD, &stmt.AsIf.Then, counter)
		}
		if elseAD != nil {
			if stmt.AsIf.Else != nil {
				elseAD = runBlock(elseAD, stmt.AsIf.Else, counter)
			}
		}

		switch {
		case thenAD != nil && elseAD != nil:
			return thenAD.Join(elseAD, mergeSite)
		case thenAD != nil:
			return thenAD
		case elseAD != nil:
			return elseAD
		default:
			return nil
		}

	case StmtWhile:
		loopSite := siteID
		initial := ad
		for {
			cond := evalExpr(ad, &stmt.AsWhile.Cond)
			contAD, exitAD := ad.Branch(cond)

			var bodyResult domain.AbstractDomain
			if contAD != nil {
				bodyResult = runBlock(contAD, &stmt.AsWhile.Body, counter)
			}
			if bodyResult == nil {
				return exitAD
			}

			widened := initial.Widen(bodyResult, loopSite)
			if ad.Equal(widened) {
				return exitAD
			}
			ad = widened
		}

	case StmtReturn:
		val := evalExpr(ad, stmt.AsReturn)
		ad.Finish(val, siteID)
		return nil

	default:
		panic("imp: unknown statement kind")
	}
}

// evalExpr recursively evaluates expr over ad, dispatching on Kind
// with a dense switch. Call expressions are parsed but always
// unimplemented at analysis time (spec.md §1, §7): this is a
// programming error, not a recoverable one, so it panics rather than
// returning an error value.
func evalExpr(ad domain.AbstractDomain, expr *ExpressionAST) domain.Value {
	switch expr.Kind {
	case ExprInt:
		return ad.TransferConst(expr.IntValue)
	case ExprVar:
		return ad.Lookup(domain.Variable(expr.VarName))
	case ExprCall:
		panic("imp: function calls are unimplemented at analysis time")
	case ExprBinOp:
		lhs := evalExpr(ad, expr.Lhs)
		rhs := evalExpr(ad, expr.Rhs)
		return ad.TransferBinOp(expr.Op, lhs, rhs)
	default:
		panic("imp: unknown expression kind")
	}
}
