// SPDX-License-Identifier: MPL-2.0

// Package runner executes external tools (git, pip, pre-commit, the dev
// container CLI) on behalf of devboot.
//
// All callers depend on the Runner interface so that tests can substitute the
// recording fake from runnertest instead of spawning real binaries:
//
//	r := runner.NewExecRunner()
//	res, err := r.Run(ctx, runner.Command{Name: "git", Args: []string{"--version"}})
//	if err != nil {
//		var toolErr *runner.ToolError
//		if errors.As(err, &toolErr) {
//			// toolErr.ExitCode, toolErr.Stderr
//		}
//	}
//
// Every Run blocks until the tool exits. There are no timeouts; cancellation
// flows through the context.
package runner
