// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const preCommitTool = "pre-commit"

type (
	// hookConfig is the subset of .pre-commit-config.yaml that is summarized.
	hookConfig struct {
		Repos []hookRepo `yaml:"repos"`
	}

	hookRepo struct {
		Repo  string `yaml:"repo"`
		Rev   string `yaml:"rev"`
		Hooks []struct {
			ID string `yaml:"id"`
		} `yaml:"hooks"`
	}
)

// hooks installs the pre-commit git hooks and pre-fetches their environments.
// A malformed config only warns since pre-commit itself is authoritative.
func (p *Provisioner) hooks(ctx context.Context) (StepResult, error) {
	cfgPath := p.cfg.abs(p.cfg.HooksConfig)
	if !isFile(cfgPath) {
		return skipped(StepHooks, "%s not found, no git hooks installed", p.cfg.HooksConfig), nil
	}

	tool, found := p.resolveTool(preCommitTool)
	if !found {
		return warning(StepHooks, ErrResourceMissing, "%s is not installed, git hooks not installed", preCommitTool), nil
	}

	repos, hookIDs, parseErr := summarizeHookConfig(cfgPath)

	for _, args := range [][]string{{"install"}, {"install-hooks"}} {
		if _, err := p.runner.Run(ctx, p.command(tool, args...)); err != nil {
			return StepResult{Message: fmt.Sprintf("%s %s failed", preCommitTool, args[0])}, err
		}
	}

	if parseErr != nil {
		return warning(StepHooks, parseErr, "hooks installed, but %s could not be parsed", p.cfg.HooksConfig), nil
	}
	res := ok(StepHooks, "installed %d hooks from %d repositories", len(hookIDs), repos)
	res.Details = hookIDs
	return res, nil
}

// summarizeHookConfig returns the repository count and the hook ids.
func summarizeHookConfig(path string) (int, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	var cfg hookConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return 0, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var ids []string
	for _, repo := range cfg.Repos {
		for _, h := range repo.Hooks {
			ids = append(ids, h.ID)
		}
	}
	return len(cfg.Repos), ids, nil
}
