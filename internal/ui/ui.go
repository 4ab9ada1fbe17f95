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

// Package ui holds the terminal-output helpers cmd/eqsat's subcommands
// share: colored headers and labels built on fatih/color, with color
// disabled automatically on a non-tty or when the caller passes
// --no-color.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors disables color output when noColor is set, NO_COLOR is
// present in the environment, or stdout isn't a terminal.
func InitColors(noColor bool) {
	isTerm := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if noColor || os.Getenv("NO_COLOR") != "" || !isTerm {
		color.NoColor = true
	}
}

// Header prints a bold section title.
func Header(title string) {
	Bold.Println(title)
}

// SubHeader prints a dimmer, second-level section title.
func SubHeader(title string) {
	fmt.Println(Dim.Sprint(title))
}

// Label formats a field name for use before a value on the same line.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText renders text in a faint style, used for secondary detail
// like a file path alongside its label.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText renders an integer count, dimmed when zero so an empty
// result doesn't read as visually identical to a real one.
func CountText(n int) string {
	if n == 0 {
		return Dim.Sprint(n)
	}
	return fmt.Sprint(n)
}

func Info(args ...interface{})             { fmt.Println(args...) }
func Infof(format string, a ...interface{}) { fmt.Printf(format+"\n", a...) }

func Success(args ...interface{}) { Green.Println(args...) }
func Successf(format string, a ...interface{}) {
	Green.Printf(format+"\n", a...)
}

func Warning(args ...interface{}) { Yellow.Println(args...) }
func Warningf(format string, a ...interface{}) {
	Yellow.Printf(format+"\n", a...)
}

func Error(args ...interface{}) { Red.Println(args...) }
func Errorf(format string, a ...interface{}) {
	Red.Printf(format+"\n", a...)
}
