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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFallsBackToDefaultWhenNoneFound(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir() error = %v", err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Domain.Name != "interval" {
		t.Fatalf("LoadConfig() fallback Domain.Name = %q, want %q", cfg.Domain.Name, "interval")
	}
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig()
	cfg.Domain.Name = "constant"
	cfg.Xlog.MaxRounds = 50

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Domain.Name != "constant" || loaded.Xlog.MaxRounds != 50 {
		t.Fatalf("LoadConfig() = %+v, want Domain.Name=constant Xlog.MaxRounds=50", loaded)
	}
}

func TestLoadConfigRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	cfg := DefaultConfig()
	cfg.Version = "999"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("LoadConfig() error = nil, want an unsupported-version error")
	}
}

func TestConfigPathAndDir(t *testing.T) {
	dir := "/repo"
	if got, want := ConfigDir(dir), filepath.Join(dir, ".eqsat"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
	if got, want := ConfigPath(dir), filepath.Join(dir, ".eqsat", "project.yaml"); got != want {
		t.Fatalf("ConfigPath() = %q, want %q", got, want)
	}
}
