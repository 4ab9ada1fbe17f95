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

	"github.com/RArbore/eqsat-ai/pkg/symbol"
	"github.com/RArbore/eqsat-ai/pkg/uf"
	"github.com/RArbore/eqsat-ai/pkg/xlog"
)

type parser struct {
	toks    []token
	pos     int
	table   *symbol.Table
	db      *xlog.Database
	library xlog.FunctionLibrary
}

// Parse reads a Datalog program (spec.md §6): `#Name(KIND… -> KIND…);`
// schema declarations, `=> Name(args…);` facts, `Atom… => Atom…;`
// rules, and `Atom… => 'funcname => Atom…;` computed actions. Every
// identifier is interned into symTable; a fresh Database is built from
// the schema declarations (its class-id columns canonicalizing
// against classes), and the rule list is returned for a caller to run
// through xlog.Fixpoint. library is consulted only to catch an
// undeclared computed-action function name at parse time; pass nil to
// skip that check and let it surface at fixpoint time instead.
func Parse(src string, symTable *symbol.Table, classes *uf.UnionFind, library xlog.FunctionLibrary) (*xlog.Database, []xlog.Rule, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks, table: symTable, db: xlog.NewDatabase(classes), library: library}
	rules, err := p.parseProgram()
	if err != nil {
		return nil, nil, err
	}
	return p.db, rules, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }
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

func (p *parser) parseProgram() ([]xlog.Rule, error) {
	var rules []xlog.Rule
	for p.cur().kind != tokEOF {
		if p.cur().kind == tokHash {
			if err := p.parseSchemaDecl(); err != nil {
				return nil, err
			}
			continue
		}
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

func parseKind(tok token) (xlog.ColumnKind, error) {
	switch tok.text {
	case "Int":
		return xlog.ColInt, nil
	case "EClassId":
		return xlog.ColEClassId, nil
	case "Symbol":
		return xlog.ColSymbol, nil
	case "CustomLattice":
		return xlog.ColCustomLattice, nil
	default:
		return 0, fmt.Errorf("parser: unknown column kind %q at offset %d", tok.text, tok.pos)
	}
}

// parseSchemaDecl parses `#Name(KIND… -> KIND…);` and registers the
// table. A CustomLattice column always defaults to
// xlog.ReachabilityCodec: the surface syntax names no specific
// lattice, and Reachability is the only concrete CustomLattice wired
// through this layer (see DESIGN.md).
func (p *parser) parseSchemaDecl() error {
	if _, err := p.expect(tokHash, "'#'"); err != nil {
		return err
	}
	nameTok, err := p.expect(tokIdent, "table name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	var det []xlog.ColumnKind
	for p.cur().kind == tokIdent {
		k, err := parseKind(p.advance())
		if err != nil {
			return err
		}
		det = append(det, k)
	}
	if _, err := p.expect(tokArrow, "'->'"); err != nil {
		return err
	}
	var dep []xlog.ColumnKind
	for p.cur().kind == tokIdent {
		k, err := parseKind(p.advance())
		if err != nil {
			return err
		}
		dep = append(dep, k)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return err
	}
	codecs := make([]xlog.LatticeCodec, len(dep))
	for i, k := range dep {
		if k == xlog.ColCustomLattice {
			codecs[i] = xlog.ReachabilityCodec{}
		}
	}
	p.db.RegisterTable(p.table.Intern(nameTok.text), xlog.Schema{Determinant: det, Dependent: dep, Codecs: codecs})
	return nil
}

// parseRule parses an antecedent atom sequence (empty for a fact),
// '=>', an action, and the closing ';'.
func (p *parser) parseRule() (*xlog.Rule, error) {
	var query []xlog.Atom
	for p.cur().kind == tokIdent {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		query = append(query, *atom)
	}
	if _, err := p.expect(tokFatArrow, "'=>'"); err != nil {
		return nil, err
	}
	action, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}
	return &xlog.Rule{Query: xlog.Query{Atoms: query}, Action: *action}, nil
}

// parseAction parses either a terminal atom sequence to insert, or a
// `'funcname => action` computed step that chains into a nested
// parseAction.
func (p *parser) parseAction() (*xlog.Action, error) {
	if p.cur().kind == tokTick {
		p.advance()
		fnTok, err := p.expect(tokIdent, "function name")
		if err != nil {
			return nil, err
		}
		fnSym := p.table.Intern(fnTok.text)
		if p.library != nil {
			if _, ok := p.library[fnSym]; !ok {
				return nil, fmt.Errorf("parser: computed action references unregistered function %q at offset %d", fnTok.text, fnTok.pos)
			}
		}
		if _, err := p.expect(tokFatArrow, "'=>'"); err != nil {
			return nil, err
		}
		next, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		action := xlog.ComputeAction(fnSym, *next)
		return &action, nil
	}

	var atoms []xlog.Atom
	for p.cur().kind == tokIdent {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, *atom)
	}
	action := xlog.InsertAction(atoms)
	return &action, nil
}

func (p *parser) parseAtom() (*xlog.Atom, error) {
	nameTok, err := p.expect(tokIdent, "atom name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var slots []xlog.Slot
	for p.cur().kind != tokRParen {
		switch p.cur().kind {
		case tokIdent:
			tok := p.advance()
			if tok.text == "_" {
				slots = append(slots, xlog.Wildcard())
			} else {
				slots = append(slots, xlog.Variable(p.table.Intern(tok.text)))
			}
		case tokInt:
			tok := p.advance()
			slots = append(slots, xlog.IntSlot(tok.ival))
		default:
			return nil, fmt.Errorf("parser: unexpected token %q at offset %d in atom arguments", p.cur().text, p.cur().pos)
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	id, ok := p.db.TableID(p.table.Intern(nameTok.text))
	if !ok {
		return nil, fmt.Errorf("parser: atom %q at offset %d references an undeclared table", nameTok.text, nameTok.pos)
	}
	return &xlog.Atom{Table: id, Slots: slots}, nil
}
