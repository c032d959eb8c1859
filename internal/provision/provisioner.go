// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/devboot/devboot/internal/runner"
)

type (
	// Provisioner runs the provisioning sequence against a Runner.
	Provisioner struct {
		cfg      *Config
		runner   runner.Runner
		reporter Reporter

		// venvDir is the activated environment, set by the venv step.
		venvDir string
	}

	stepFunc func(ctx context.Context) (StepResult, error)
)

// New creates a Provisioner. A nil reporter discards results.
func New(r runner.Runner, reporter Reporter, opts ...Option) *Provisioner {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if reporter == nil {
		reporter = ReporterFunc(func(StepResult) {})
	}
	return &Provisioner{cfg: cfg, runner: r, reporter: reporter}
}

// Run executes every step in order. It stops at the first fatal failure and
// returns a *SequenceError naming the step; the Summary still holds every
// result reported so far, including the failed one.
func (p *Provisioner) Run(ctx context.Context) (Summary, error) {
	steps := []struct {
		step Step
		run  stepFunc
	}{
		{StepVenv, p.venv},
		{StepDeps, p.deps},
		{StepGitTrust, p.gitTrust},
		{StepHooks, p.hooks},
		{StepSecrets, p.secrets},
	}

	var summary Summary
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return summary, &SequenceError{Step: s.step, Err: err}
		}

		slog.Debug("provision step starting", "step", s.step)
		res, err := s.run(ctx)
		if err != nil {
			res = StepResult{Step: s.step, Status: StatusFailed, Message: res.Message, Err: err}
			if res.Message == "" {
				res.Message = err.Error()
			}
		}
		res.Step = s.step
		summary.Results = append(summary.Results, res)
		p.reporter.Report(res)
		slog.Debug("provision step finished", "step", s.step, "status", res.Status)

		if err != nil {
			return summary, &SequenceError{Step: s.step, Err: err}
		}
	}
	return summary, nil
}

// VenvDir returns the environment activated by the last Run, if any.
func (p *Provisioner) VenvDir() string {
	return p.venvDir
}

// command builds an invocation rooted at WorkDir with the virtual
// environment activated.
func (p *Provisioner) command(name string, args ...string) runner.Command {
	cmd := runner.Command{Name: name, Args: args, Dir: p.cfg.WorkDir}
	if p.venvDir != "" {
		path := filepath.Join(p.venvDir, binDirName())
		if current := p.cfg.Getenv("PATH"); current != "" {
			path += string(os.PathListSeparator) + current
		}
		cmd.Env = []string{"VIRTUAL_ENV=" + p.venvDir, "PATH=" + path}
	}
	return cmd
}

// venvTool returns the environment's copy of tool when it has one.
func (p *Provisioner) venvTool(tool string) (string, bool) {
	if p.venvDir == "" {
		return "", false
	}
	candidate := filepath.Join(p.venvDir, binDirName(), tool+exeSuffix())
	if isFile(candidate) {
		return candidate, true
	}
	return "", false
}

// resolveTool prefers the environment's copy of tool, then PATH.
func (p *Provisioner) resolveTool(tool string) (string, bool) {
	if path, found := p.venvTool(tool); found {
		return path, true
	}
	if path, err := p.runner.LookPath(tool); err == nil {
		return path, true
	}
	return "", false
}

func binDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
