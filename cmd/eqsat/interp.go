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

package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/RArbore/eqsat-ai/internal/config"
	"github.com/RArbore/eqsat-ai/internal/errors"
	"github.com/RArbore/eqsat-ai/internal/ui"
	"github.com/RArbore/eqsat-ai/pkg/domain"
	"github.com/RArbore/eqsat-ai/pkg/imp"
	impparser "github.com/RArbore/eqsat-ai/pkg/imp/parser"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
)

// buildAbstractDomain constructs a fresh AbstractDomain state for one
// function run under the named domain, sharing finished as every
// domain's return-value sink. "essa" layers the equality-aware ESSA
// domain (spec.md §4.8, scenarios S3/S4) over a Concrete inner domain,
// since constant propagation is what the e-graph's congruence closure
// sharpens: S4's "constant via loop-aware e-graph" scenario depends on
// exactly this pairing.
func buildAbstractDomain(name string, finished *domain.Finished) (domain.AbstractDomain, error) {
	switch name {
	case "interval":
		return domain.NewLatticeDomain(domain.IntervalOps{}, finished), nil
	case "constant":
		return domain.NewLatticeDomain(domain.ConcreteOps{}, finished), nil
	case "unit":
		return domain.NewLatticeDomain(domain.UnitOps{}, finished), nil
	case "essa":
		inner := domain.NewLatticeDomain(domain.ConcreteOps{}, finished)
		return domain.NewESSADomain(inner, domain.NewESSAContext()), nil
	default:
		return nil, fmt.Errorf("unknown domain %q (want interval, constant, unit, or essa)", name)
	}
}

// runInterp runs abstract interpretation over an imperative-language
// program (spec.md §5) read from stdin, one function at a time,
// reporting every recorded return-site value.
func runInterp(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("interp", flag.ExitOnError)
	domainName := fs.String("domain", "", "Abstract domain to run: interval, constant, unit, or essa (default: project config, else interval)")
	configPath := fs.String("config", "", "Path to .eqsat/project.yaml")
	_ = fs.Parse(args)

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot read program from stdin",
			"Failed to read the full input stream",
			"Ensure a program is piped into 'eqsat interp'",
			err,
		), globals.JSON)
	}

	runInterpSource(src, *domainName, *configPath, globals)
}

// runInterpSource is runInterp's body, factored out so the watch
// subcommand can re-run it against a freshly read file instead of a
// one-shot stdin stream.
func runInterpSource(src []byte, domainName, configPath string, globals GlobalFlags) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	chosen := domainName
	if chosen == "" {
		chosen = cfg.Domain.Name
	}
	if _, err := buildAbstractDomain(chosen, domain.NewFinished()); err != nil {
		errors.FatalError(errors.NewInputError(
			"Unknown abstract domain",
			err.Error(),
			"Pass --domain interval|constant|unit|essa, or fix domain.name in the project config",
			err,
		), globals.JSON)
	}

	symTable := symbol.NewTable()
	program, err := impparser.Parse(string(src), symTable)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot parse program",
			err.Error(),
			"Check the program against the imperative language's grammar",
			err,
		), globals.JSON)
	}

	logger := newLogger(globals)
	if !globals.Quiet {
		ui.Header(fmt.Sprintf("Running %d function(s) under the %s domain", len(program.Funcs), chosen))
	}

	for _, fn := range program.Funcs {
		finished := domain.NewFinished()
		ad, _ := buildAbstractDomain(chosen, finished)
		logger.Debug("interp.function.start", "name", symTable.Name(fn.Name))
		runOneFunction(ad, &fn, finished, symTable, globals)
	}
}

func runOneFunction(ad domain.AbstractDomain, fn *imp.FunctionAST, finished *domain.Finished, symTable *symbol.Table, globals GlobalFlags) {
	imp.RunFunction(ad, fn, nil)

	name := symTable.Name(fn.Name)
	if !globals.Quiet {
		ui.SubHeader(name)
	}
	values := finished.Values()
	if len(values) == 0 {
		if !globals.Quiet {
			fmt.Println("  (no return statements reached)")
		}
		return
	}
	for site, val := range values {
		fmt.Printf("  return@%d -> %v\n", site, val)
	}
}
