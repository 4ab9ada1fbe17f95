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

// Package imp holds the AST the parser produces and the abstract
// interpreter driver that walks it. Statement and expression nodes are
// tagged variants (a Kind field plus a per-variant payload struct)
// rather than an interface hierarchy, so the driver's walk is a dense
// switch instead of virtual dispatch.
package imp

import "github.com/RArbore/eqsat-ai/pkg/domain"
import "github.com/RArbore/eqsat-ai/pkg/symbol"

// ProgramAST is the parser's top-level output: every function defined
// in the source.
type ProgramAST struct {
	Funcs []FunctionAST
}

// FunctionAST is one `fn name(params) { block }` definition.
type FunctionAST struct {
	Name   symbol.Symbol
	Params []symbol.Symbol
	Block  BlockAST
}

// BlockAST is a braced sequence of statements.
type BlockAST struct {
	Stmts []StatementAST
}

// StatementKind tags which variant of StatementAST is populated.
type StatementKind int

const (
	StmtBlock StatementKind = iota
	StmtAssign
	StmtIfElse
	StmtWhile
	StmtReturn
)

// StatementAST is a tagged variant: exactly one of the payload fields
// below is meaningful, selected by Kind.
type StatementAST struct {
	Kind StatementKind

	AsBlock  *BlockAST     // StmtBlock
	AsAssign *AssignStmt   // StmtAssign
	AsIf     *IfElseStmt   // StmtIfElse
	AsWhile  *WhileStmt    // StmtWhile
	AsReturn *ExpressionAST // StmtReturn
}

// AssignStmt is `Var := Expr`.
type AssignStmt struct {
	Var  symbol.Symbol
	Expr ExpressionAST
}

// IfElseStmt is `if Cond { Then } [else { *Else }]`. Else is nil when
// the source had no else clause.
type IfElseStmt struct {
	Cond ExpressionAST
	Then BlockAST
	Else *BlockAST
}

// WhileStmt is `while Cond { Body }`.
type WhileStmt struct {
	Cond ExpressionAST
	Body BlockAST
}

// ExpressionKind tags which variant of ExpressionAST is populated.
type ExpressionKind int

const (
	ExprInt ExpressionKind = iota
	ExprVar
	ExprCall
	ExprBinOp
)

// ExpressionAST is a tagged variant over the grammar's expression
// forms. BinOp's operator is a domain.BinOp directly, since every
// binary form the grammar accepts (Add..Ge) has a one-to-one
// correspondence with a domain.BinOp the interpreter forwards
// straight to the abstract domain.
type ExpressionAST struct {
	Kind ExpressionKind

	IntValue int32         // ExprInt
	VarName  symbol.Symbol // ExprVar

	CallName symbol.Symbol   // ExprCall
	CallArgs []ExpressionAST // ExprCall

	Op       domain.BinOp   // ExprBinOp
	Lhs, Rhs *ExpressionAST // ExprBinOp
}

// Int builds an integer-literal expression.
func Int(v int32) ExpressionAST { return ExpressionAST{Kind: ExprInt, IntValue: v} }

// Var builds a variable-reference expression.
func Var(s symbol.Symbol) ExpressionAST { return ExpressionAST{Kind: ExprVar, VarName: s} }

// Call builds a call expression. Calls are parsed but always
// unimplemented at analysis time (spec.md §1, §7).
func Call(name symbol.Symbol, args []ExpressionAST) ExpressionAST {
	return ExpressionAST{Kind: ExprCall, CallName: name, CallArgs: args}
}

// BinExpr builds a binary-operator expression.
func BinExpr(op domain.BinOp, lhs, rhs ExpressionAST) ExpressionAST {
	return ExpressionAST{Kind: ExprBinOp, Op: op, Lhs: &lhs, Rhs: &rhs}
}
