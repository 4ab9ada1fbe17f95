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

// Package main implements the eqsat CLI: an abstract interpreter and
// a Datalog-with-lattices fixpoint engine over a shared union-find and
// relational-table substrate.
//
// Usage:
//
//	eqsat interp [--domain interval|constant|unit|essa] < program.imp
//	eqsat datalog [--metrics-addr :9090] < program.xlog
//	eqsat watch <interp|datalog> <file>
//	eqsat version
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/RArbore/eqsat-ai/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose >= 1:
		level = slog.LevelInfo
	}
	if globals.Quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
	)

	// Stop parsing at the first non-flag argument, so subcommand
	// flags like "interp --domain constant" reach the subcommand's
	// own flag set instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `eqsat - abstract interpretation and Datalog fixpoint engine

Usage:
  eqsat <command> [options]

Commands:
  interp    Run abstract interpretation over a program read from stdin
  datalog   Run the Datalog fixpoint engine over a script read from stdin
  watch     Re-run interp or datalog over a file whenever it changes
  version   Show version and exit

Global Options:
  --json        Output in JSON format (for applicable commands)
  --no-color    Disable color output (respects NO_COLOR env var)
  -v, --verbose Increase verbosity (-v for info, -vv for debug)
  -q, --quiet   Suppress non-essential output
  -V, --version Show version and exit

Examples:
  eqsat interp --domain interval < examples/loop.imp
  eqsat datalog < examples/graph.xlog

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("eqsat version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "interp":
		runInterp(cmdArgs, globals)
	case "datalog":
		runDatalog(cmdArgs, globals)
	case "watch":
		runWatch(cmdArgs, globals)
	case "version":
		fmt.Printf("eqsat version %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
