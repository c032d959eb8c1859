// SPDX-License-Identifier: MPL-2.0

// Package provision runs the post-create sequence that turns a freshly built
// dev container into a working environment.
//
// The sequence is fixed and strictly ordered:
//
//	venv      resolve or create the Python virtual environment and activate it
//	deps      install the development requirements into it
//	git-trust register the workspace as a git safe.directory
//	hooks     install the pre-commit git hooks
//	secrets   link or copy the warehouse connection file into the home directory
//
// Every step reports a StepResult to a Reporter. Missing optional inputs are
// reported as skipped and never fail the run; only venv creation, dependency
// installation and hook installation are fatal:
//
//	p := provision.New(runner.NewExecRunner(), reporter, provision.WithWorkDir(dir))
//	summary, err := p.Run(ctx)
package provision
