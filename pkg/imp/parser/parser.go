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

package parser

import (
	"fmt"

	"github.com/RArbore/eqsat-ai/pkg/domain"
	"github.com/RArbore/eqsat-ai/pkg/imp"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
)

// parser walks a flat token slice with one token of lookahead.
type parser struct {
	toks  []token
	pos   int
	table *symbol.Table
}

// Parse turns source text into a ProgramAST, interning every
// identifier it encounters into table. Reports the first lex or
// syntax error verbatim (spec.md §7: parse failure surfaces to the
// caller, it is not a programming error).
func Parse(src string, table *symbol.Table) (*imp.ProgramAST, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, table: table}
	return p.parseProgram()
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos+1 < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.cur().kind != k {
		return token{}, fmt.Errorf("parser: expected %s at offset %d, found %q", what, p.cur().pos, p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) parseProgram() (*imp.ProgramAST, error) {
	var funcs []imp.FunctionAST
	for p.cur().kind != tokEOF {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, *fn)
	}
	return &imp.ProgramAST{Funcs: funcs}, nil
}

func (p *parser) parseFunction() (*imp.FunctionAST, error) {
	if _, err := p.expect(tokFn, "'fn'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var params []symbol.Symbol
	for p.cur().kind != tokRParen {
		if len(params) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		paramTok, err := p.expect(tokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, p.table.Intern(paramTok.text))
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &imp.FunctionAST{Name: p.table.Intern(nameTok.text), Params: params, Block: *block}, nil
}

func (p *parser) parseBlock() (*imp.BlockAST, error) {
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []imp.StatementAST
	for p.cur().kind != tokRBrace {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, *stmt)
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return &imp.BlockAST{Stmts: stmts}, nil
}

func (p *parser) parseStatement() (*imp.StatementAST, error) {
	switch p.cur().kind {
	case tokLBrace:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &imp.StatementAST{Kind: imp.StmtBlock, AsBlock: block}, nil

	case tokIf:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		thenBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		var elseBlock *imp.BlockAST
		if p.cur().kind == tokElse {
			p.advance()
			elseBlock, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
		return &imp.StatementAST{Kind: imp.StmtIfElse, AsIf: &imp.IfElseStmt{Cond: *cond, Then: *thenBlock, Else: elseBlock}}, nil

	case tokWhile:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &imp.StatementAST{Kind: imp.StmtWhile, AsWhile: &imp.WhileStmt{Cond: *cond, Body: *body}}, nil

	case tokReturn:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}
		return &imp.StatementAST{Kind: imp.StmtReturn, AsReturn: expr}, nil

	case tokIdent:
		nameTok := p.advance()
		if _, err := p.expect(tokAssign, "'='"); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}
		return &imp.StatementAST{Kind: imp.StmtAssign, AsAssign: &imp.AssignStmt{Var: p.table.Intern(nameTok.text), Expr: *expr}}, nil

	default:
		return nil, fmt.Errorf("parser: unexpected token %q at offset %d starting a statement", p.cur().text, p.cur().pos)
	}
}

// parseExpr parses the comparison precedence tier, the lowest of the
// grammar's three tiers (comparison > additive > multiplicative).
func (p *parser) parseExpr() (*imp.ExpressionAST, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op domain.BinOp
		switch p.cur().kind {
		case tokEqEq:
			op = domain.Eq
		case tokNotEq:
			op = domain.Ne
		case tokLess:
			op = domain.Lt
		case tokLessEq:
			op = domain.Le
		case tokGreater:
			op = domain.Gt
		case tokGreaterEq:
			op = domain.Ge
		default:
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		e := imp.BinExpr(op, *lhs, *rhs)
		lhs = &e
	}
}

func (p *parser) parseAdditive() (*imp.ExpressionAST, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op domain.BinOp
		switch p.cur().kind {
		case tokPlus:
			op = domain.Add
		case tokMinus:
			op = domain.Sub
		default:
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		e := imp.BinExpr(op, *lhs, *rhs)
		lhs = &e
	}
}

func (p *parser) parseMultiplicative() (*imp.ExpressionAST, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		var op domain.BinOp
		switch p.cur().kind {
		case tokStar:
			op = domain.Mul
		case tokSlash:
			op = domain.Div
		case tokPercent:
			op = domain.Mod
		default:
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		e := imp.BinExpr(op, *lhs, *rhs)
		lhs = &e
	}
}

func (p *parser) parsePrimary() (*imp.ExpressionAST, error) {
	switch p.cur().kind {
	case tokInt:
		t := p.advance()
		e := imp.Int(t.ival)
		return &e, nil

	case tokLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil

	case tokIdent:
		nameTok := p.advance()
		sym := p.table.Intern(nameTok.text)
		if p.cur().kind != tokLParen {
			e := imp.Var(sym)
			return &e, nil
		}
		p.advance()
		var args []imp.ExpressionAST
		for p.cur().kind != tokRParen {
			if len(args) > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, *arg)
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		e := imp.Call(sym, args)
		return &e, nil

	default:
		return nil, fmt.Errorf("parser: unexpected token %q at offset %d starting an expression", p.cur().text, p.cur().pos)
	}
}
