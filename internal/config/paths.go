// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// ExpandPath expands a leading "~" to the user's home directory and "$VAR" /
// "${VAR}" references from the environment, the way a shell would inside
// double quotes. No globbing or command substitution happens.
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	expanded, err := shell.Expand(p, nil)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return expanded, nil
}
