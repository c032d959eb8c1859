// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"

	"mvdan.cc/sh/v3/shell"
)

// ErrEmptyCommandLine is returned when a command line has no words.
var ErrEmptyCommandLine = errors.New("empty command line")

// ParseCommandLine splits a user-supplied tool string such as
// `npx --yes @devcontainers/cli` into a Command using POSIX shell quoting
// rules. Variables are expanded from the process environment; no command
// substitution is performed.
func ParseCommandLine(line string, extraArgs ...string) (Command, error) {
	fields, err := shell.Fields(line, nil)
	if err != nil {
		return Command{}, fmt.Errorf("parse command line %q: %w", line, err)
	}
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommandLine
	}
	args := append(fields[1:len(fields):len(fields)], extraArgs...)
	return Command{Name: fields[0], Args: args}, nil
}
