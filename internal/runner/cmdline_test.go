// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"slices"
	"testing"
)

func TestParseCommandLine(t *testing.T) {
	t.Setenv("DEVBOOT_TEST_CLI", "@devcontainers/cli")

	tests := []struct {
		name     string
		line     string
		extra    []string
		wantName string
		wantArgs []string
	}{
		{
			name:     "single word",
			line:     "devcontainer",
			extra:    []string{"build"},
			wantName: "devcontainer",
			wantArgs: []string{"build"},
		},
		{
			name:     "quoted words",
			line:     `npx --yes "@devcontainers/cli"`,
			extra:    []string{"build", "--workspace-folder", "."},
			wantName: "npx",
			wantArgs: []string{"--yes", "@devcontainers/cli", "build", "--workspace-folder", "."},
		},
		{
			name:     "variable expansion",
			line:     "npx $DEVBOOT_TEST_CLI",
			wantName: "npx",
			wantArgs: []string{"@devcontainers/cli"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommandLine(tt.line, tt.extra...)
			if err != nil {
				t.Fatalf("ParseCommandLine() error = %v", err)
			}
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if !slices.Equal(cmd.Args, tt.wantArgs) {
				t.Errorf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestParseCommandLine_Errors(t *testing.T) {
	t.Parallel()

	if _, err := ParseCommandLine("   "); !errors.Is(err, ErrEmptyCommandLine) {
		t.Errorf("expected ErrEmptyCommandLine, got %v", err)
	}
	if _, err := ParseCommandLine(`npx "unterminated`); err == nil {
		t.Error("expected parse error for unterminated quote")
	}
}
