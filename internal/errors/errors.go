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

// Package errors distinguishes the two error registers spec.md §7
// names: recoverable user-facing failures (a bad config file, a
// missing program argument, an unreadable script) carried as
// *UserError and reported through FatalError, versus programming
// errors (an unimplemented domain operation, a broken invariant) that
// panic because no caller can recover from them.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind classifies a UserError for JSON output and for callers that
// want to react differently to different failure categories.
type Kind string

const (
	KindConfig     Kind = "config"
	KindInternal   Kind = "internal"
	KindInput      Kind = "input"
	KindPermission Kind = "permission"
)

// UserError is a recoverable, user-facing failure: a title short
// enough for a one-line summary, a detail sentence explaining what
// went wrong, and a suggestion telling the user what to try next.
type UserError struct {
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      error  `json:"-"`
}

func (e *UserError) Error() string {
	if e.Detail == "" {
		return e.Title
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *UserError) Unwrap() error { return e.Cause }

func newError(kind Kind, title, detail, suggestion string, cause error) *UserError {
	return &UserError{Kind: kind, Title: title, Detail: detail, Suggestion: suggestion, Cause: cause}
}

// NewConfigError reports a malformed or missing engine configuration
// file (internal/config's LoadConfig is the primary caller).
func NewConfigError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindConfig, title, detail, suggestion, cause)
}

// NewInputError reports bad user input: a malformed Datalog or
// imperative-language program, an unknown domain name, a missing CLI
// argument.
func NewInputError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindInput, title, detail, suggestion, cause)
}

// NewPermissionError reports a filesystem permission failure (cannot
// create or write the config directory).
func NewPermissionError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindPermission, title, detail, suggestion, cause)
}

// NewInternalError reports an unexpected failure in the engine itself
// that is still recoverable enough to report rather than panic on
// (e.g. a working-directory lookup failing) — as opposed to a broken
// invariant, which should panic instead.
func NewInternalError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindInternal, title, detail, suggestion, cause)
}

type jsonErrorPayload struct {
	Error *UserError `json:"error"`
}

// FatalError reports err and exits the process with status 1. A
// *UserError prints its title/detail/suggestion (as JSON when
// jsonMode is set); any other error prints via its Error() string.
// Never returns.
func FatalError(err error, jsonMode bool) {
	var ue *UserError
	if e, ok := err.(*UserError); ok {
		ue = e
	} else {
		ue = newError(KindInternal, "Unexpected error", err.Error(), "", err)
	}

	if jsonMode {
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(jsonErrorPayload{Error: ue})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", ue.Title)
		if ue.Detail != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", ue.Detail)
		}
		if ue.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", ue.Suggestion)
		}
		if ue.Cause != nil {
			fmt.Fprintf(os.Stderr, "  Cause: %v\n", ue.Cause)
		}
	}
	os.Exit(1)
}
