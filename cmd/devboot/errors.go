// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/devboot/devboot/internal/issue"
	"github.com/devboot/devboot/pkg/types"
)

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog entry for id to stderr.
func (a *App) renderIssue(id issue.Id) {
	iss := issue.Get(id)
	if iss == nil {
		return
	}
	rendered, err := iss.Render(a.markdownStyle())
	if err != nil {
		slog.Debug("failed to render issue", "id", id, "error", err)
		rendered = string(iss.MarkdownMsg())
	}
	fmt.Fprint(a.stderr, rendered)
}

// fail prints err with its suggestions, renders the issue catalog entry for
// id and returns an ExitError carrying exit code 1.
func (a *App) fail(id issue.Id, err error) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	a.renderIssue(id)
	return &ExitError{Code: types.ExitFailure, Err: err}
}

// configError reports a configuration load failure.
func (a *App) configError(err error) error {
	return a.fail(issue.ConfigLoadFailedId, err)
}
