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
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/RArbore/eqsat-ai/internal/config"
	"github.com/RArbore/eqsat-ai/internal/errors"
	"github.com/RArbore/eqsat-ai/internal/ui"
	"github.com/RArbore/eqsat-ai/pkg/symbol"
	"github.com/RArbore/eqsat-ai/pkg/uf"
	"github.com/RArbore/eqsat-ai/pkg/xlog"
	xlogparser "github.com/RArbore/eqsat-ai/pkg/xlog/parser"
)

var datalogRounds = promauto.NewCounter(prometheus.CounterOpts{
	Name: "eqsat_xlog_fixpoint_rounds_total",
	Help: "Number of fixpoint rounds the Datalog engine has run across all invocations.",
})

// runDatalog runs the Datalog fixpoint engine (spec.md §4.10) over a
// script read from stdin, reporting the final row count of every
// declared table.
func runDatalog(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("datalog", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to .eqsat/project.yaml")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus metrics (default: disabled)")
	maxRounds := fs.Int("max-rounds", 0, "Stop after this many fixpoint rounds (0: use project config, else unbounded)")
	_ = fs.Parse(args)

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr)
	}

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot read script from stdin",
			"Failed to read the full input stream",
			"Ensure a Datalog script is piped into 'eqsat datalog'",
			err,
		), globals.JSON)
	}

	runDatalogSource(src, *configPath, *maxRounds, globals)
}

// serveMetrics starts the Prometheus metrics endpoint in the
// background; it never blocks the caller.
func serveMetrics(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ui.Warningf("metrics server error: %v", err)
		}
	}()
}

// runDatalogSource is runDatalog's body, factored out so the watch
// subcommand can re-run it against a freshly read file instead of a
// one-shot stdin stream.
func runDatalogSource(src []byte, configPath string, maxRounds int, globals GlobalFlags) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	limit := maxRounds
	if limit == 0 {
		limit = cfg.Xlog.MaxRounds
	}

	symTable := symbol.NewTable()
	db, rules, err := xlogparser.Parse(string(src), symTable, uf.New(), nil)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot parse Datalog script",
			err.Error(),
			"Check the script against the Datalog surface syntax (spec §6)",
			err,
		), globals.JSON)
	}

	runFixpointWithLimit(db, rules, limit, globals)

	if !globals.Quiet {
		ui.Header("Datalog fixpoint results")
	}
	printTableCounts(db, symTable)
}

// runFixpointWithLimit drives xlog.Step round-by-round (rather than
// calling xlog.Fixpoint directly) so it can cap the round count at
// limit (0 means unbounded — a script that never reaches a fixpoint
// by bug or by design would otherwise spin forever) and report
// progress: a round count is rarely known upfront, so an
// indeterminate spinner-style bar tracks rounds completed rather than
// a fraction of a known total, mirroring cmd/cie/index.go's
// per-phase bar but without a total to size it against.
func runFixpointWithLimit(db *xlog.Database, rules []xlog.Rule, limit int, globals GlobalFlags) {
	var bar *progressbar.ProgressBar
	if !globals.Quiet {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("fixpoint rounds"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}
	step := func() bool {
		datalogRounds.Inc()
		if bar != nil {
			_ = bar.Add(1)
		}
		return xlog.Step(db, rules, nil)
	}

	if limit <= 0 {
		for step() {
		}
	} else {
		for i := 0; i < limit; i++ {
			if !step() {
				break
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
}

func printTableCounts(db *xlog.Database, symTable *symbol.Table) {
	type row struct {
		name  string
		count int
	}
	var rows []row
	for sym, id := range db.Names() {
		n := 0
		db.Table(id).Rows(false)(func(_ []uint32, _ uint64) bool {
			n++
			return true
		})
		rows = append(rows, row{name: symTable.Name(sym), count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	for _, r := range rows {
		fmt.Printf("  %s: %s\n", ui.Label(r.name), ui.CountText(r.count))
	}
}
