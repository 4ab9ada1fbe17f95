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
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/RArbore/eqsat-ai/internal/errors"
	"github.com/RArbore/eqsat-ai/internal/ui"
)

const watchDebounce = 300 * time.Millisecond

// runWatch re-runs interp or datalog over a script file every time it
// changes on disk, coalescing bursts of writes (an editor's atomic
// save is often several fsnotify events) into a single rerun.
func runWatch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	domainName := fs.String("domain", "", "Abstract domain to run (interp mode only)")
	configPath := fs.String("config", "", "Path to .eqsat/project.yaml")
	maxRounds := fs.Int("max-rounds", 0, "Stop after this many fixpoint rounds (datalog mode only)")
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 2 {
		errors.FatalError(errors.NewInputError(
			"Missing watch arguments",
			"usage: eqsat watch <interp|datalog> <file>",
			"Pass a subcommand (interp or datalog) and the script file to watch",
			nil,
		), globals.JSON)
	}
	mode, path := rest[0], rest[1]
	if mode != "interp" && mode != "datalog" {
		errors.FatalError(errors.NewInputError(
			"Unknown watch mode",
			fmt.Sprintf("%q is not interp or datalog", mode),
			"Pass 'interp' or 'datalog' as the first watch argument",
			nil,
		), globals.JSON)
	}

	rerun := func() {
		src, err := os.ReadFile(path)
		if err != nil {
			ui.Warningf("eqsat watch: cannot read %s: %v", path, err)
			return
		}
		if mode == "interp" {
			runInterpSource(src, *domainName, *configPath, globals)
		} else {
			runDatalogSource(src, *configPath, *maxRounds, globals)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot start file watcher",
			err.Error(),
			"Check that inotify (or the platform equivalent) is available",
			err,
		), globals.JSON)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot watch directory",
			err.Error(),
			fmt.Sprintf("Check that %s exists and is readable", dir),
			err,
		), globals.JSON)
	}

	if !globals.Quiet {
		ui.Header(fmt.Sprintf("Watching %s for changes (mode: %s)", path, mode))
	}
	rerun()

	var debounceTimer *time.Timer
	var timerCh <-chan time.Time
	target := filepath.Clean(path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(watchDebounce)
			timerCh = debounceTimer.C
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			ui.Warningf("eqsat watch: fsnotify error: %v", werr)
		case <-timerCh:
			timerCh = nil
			rerun()
		}
	}
}
