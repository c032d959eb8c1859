// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/devboot/devboot/internal/config"
)

// newLogger returns a slog logger backed by the charm log handler. Only
// warnings and errors are shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		Level:           level,
		ReportTimestamp: verbose,
	})
	return slog.New(handler)
}

// configureLogging installs the CLI logger as the slog default.
func configureLogging(w io.Writer, verbose bool) {
	slog.SetDefault(newLogger(w, verbose))
}
