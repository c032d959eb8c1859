// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/devboot/devboot/pkg/types"
)

// helperCommand returns an ExecCommandFunc that re-executes the test binary
// as TestHelperProcess. The helper prints stdout, writes stderr and exits with
// the configured code.
func helperCommand(exitCode int, stdout, stderr string) ExecCommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
			fmt.Sprintf("GO_HELPER_STDOUT=%s", stdout),
			fmt.Sprintf("GO_HELPER_STDERR=%s", stderr),
		}
		return cmd
	}
}

// TestHelperProcess is not a real test. It is invoked as a subprocess by
// helperCommand.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	out := os.Getenv("GO_HELPER_STDOUT")
	if v, ok := os.LookupEnv("GO_HELPER_ECHO"); ok {
		out += v
	}
	fmt.Fprint(os.Stdout, out)
	fmt.Fprint(os.Stderr, os.Getenv("GO_HELPER_STDERR"))

	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(code)
}

func TestExecRunner_RunSuccess(t *testing.T) {
	t.Parallel()

	r := NewExecRunner(WithExecCommand(helperCommand(0, "hello", "")))
	res, err := r.Run(context.Background(), Command{Name: "git", Args: []string{"--version"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stdout != "hello" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello")
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestExecRunner_RunFailure(t *testing.T) {
	t.Parallel()

	r := NewExecRunner(WithExecCommand(helperCommand(3, "", "first\nfatal: denied\n")))
	res, err := r.Run(context.Background(), Command{Name: "git", Args: []string{"config"}})
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if !errors.Is(err, ErrToolFailed) {
		t.Errorf("error should wrap ErrToolFailed, got %v", err)
	}

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error should be *ToolError, got %T", err)
	}
	if toolErr.ExitCode != 3 || res.ExitCode != 3 {
		t.Errorf("exit code = %d/%d, want 3", toolErr.ExitCode, res.ExitCode)
	}
	if !strings.Contains(err.Error(), "fatal: denied") {
		t.Errorf("error should carry last stderr line, got %q", err.Error())
	}
	if got := ExitCodeOf(err); got != 3 {
		t.Errorf("ExitCodeOf() = %d, want 3", got)
	}
}

func TestExecRunner_EnvOverridesReachProcess(t *testing.T) {
	t.Parallel()

	r := NewExecRunner(WithExecCommand(helperCommand(0, "", "")))
	res, err := r.Run(context.Background(), Command{Name: "tool", Env: []string{"GO_HELPER_ECHO=from-env"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stdout != "from-env" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "from-env")
	}
}

func TestExecRunner_StreamsMirrorOutput(t *testing.T) {
	t.Parallel()

	var live strings.Builder
	r := NewExecRunner(WithExecCommand(helperCommand(0, "building", "")), WithStreams(&live, nil))
	if _, err := r.Run(context.Background(), Command{Name: "devcontainer"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if live.String() != "building" {
		t.Errorf("live output = %q, want %q", live.String(), "building")
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	r := NewExecRunner()
	res, err := r.Run(context.Background(), Command{Name: "devboot-definitely-missing-tool"})
	if err == nil {
		t.Fatal("Run() expected error for missing binary")
	}
	if res.ExitCode != types.ExitCommandNotFound {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, types.ExitCommandNotFound)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("error should wrap exec.ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not be started") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	if got := ExitCodeOf(nil); got != types.ExitSuccess {
		t.Errorf("ExitCodeOf(nil) = %d", got)
	}
	if got := ExitCodeOf(errors.New("plain")); got != types.ExitFailure {
		t.Errorf("ExitCodeOf(plain) = %d", got)
	}
}

func TestMergeEnv(t *testing.T) {
	t.Parallel()

	base := []string{"PATH=/usr/bin", "HOME=/root", "LANG=C"}
	got := MergeEnv(base, []string{"PATH=/venv/bin:/usr/bin", "VIRTUAL_ENV=/venv"})
	want := []string{"PATH=/venv/bin:/usr/bin", "HOME=/root", "LANG=C", "VIRTUAL_ENV=/venv"}
	if !slices.Equal(got, want) {
		t.Errorf("MergeEnv() = %v, want %v", got, want)
	}
	if base[0] != "PATH=/usr/bin" {
		t.Error("MergeEnv() must not modify base")
	}
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Name: "git"}, "git"},
		{Command{Name: "git", Args: []string{"config", "--global"}}, "git config --global"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
