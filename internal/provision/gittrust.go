// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/devboot/devboot/internal/runner"
)

const (
	gitTool          = "git"
	safeDirectoryKey = "safe.directory"

	// gitTrustAttempts is the global attempt plus one retry.
	gitTrustAttempts = 2
)

// gitTrust registers WorkDir as a git safe.directory. The global scope is
// tried twice, then the repository's local config. Failure only warns.
func (p *Provisioner) gitTrust(ctx context.Context) (StepResult, error) {
	if _, err := p.runner.LookPath(gitTool); err != nil {
		return skipped(StepGitTrust, "git not found, repository trust not configured"), nil
	}

	dir := p.cfg.WorkDir
	if trusted, err := p.alreadyTrusted(ctx, dir); err == nil && trusted {
		return ok(StepGitTrust, "%s already trusted", dir), nil
	}

	globalErr := runner.RetryWithBackoff(ctx, gitTrustAttempts, p.cfg.RetryDelay, func(attempt int) (bool, error) {
		_, err := p.runner.Run(ctx, p.command(gitTool, "config", "--global", "--add", safeDirectoryKey, dir))
		if err != nil {
			slog.Debug("global safe.directory update failed", "attempt", attempt+1, "error", err)
		}
		return true, err
	})
	if globalErr == nil {
		return ok(StepGitTrust, "trusted %s globally", dir), nil
	}
	if ctx.Err() != nil {
		return StepResult{}, ctx.Err()
	}

	_, localErr := p.runner.Run(ctx, p.command(gitTool, "config", "--local", "--add", safeDirectoryKey, dir))
	if localErr == nil {
		return ok(StepGitTrust, "trusted %s in the repository config (global config not writable)", dir), nil
	}

	err := fmt.Errorf("%w: global: %w; local: %w", ErrPermission, globalErr, localErr)
	return warning(StepGitTrust, err, "could not mark %s as a safe directory", dir), nil
}

// alreadyTrusted reports whether dir (or the "*" wildcard) is already listed
// in the global safe.directory entries.
func (p *Provisioner) alreadyTrusted(ctx context.Context, dir string) (bool, error) {
	res, err := p.runner.Run(ctx, p.command(gitTool, "config", "--global", "--get-all", safeDirectoryKey))
	if err != nil {
		// git exits 1 when the key has no value.
		var toolErr *runner.ToolError
		if errors.As(err, &toolErr) && toolErr.ExitCode == 1 {
			return false, nil
		}
		return false, err
	}
	want := filepath.Clean(dir)
	for _, line := range strings.Split(res.Stdout, "\n") {
		entry := strings.TrimSpace(line)
		if entry == "*" || (entry != "" && filepath.Clean(entry) == want) {
			return true, nil
		}
	}
	return false, nil
}
