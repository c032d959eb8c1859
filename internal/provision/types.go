// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
)

const (
	StepVenv     Step = "venv"
	StepDeps     Step = "deps"
	StepGitTrust Step = "git-trust"
	StepHooks    Step = "hooks"
	StepSecrets  Step = "secrets"

	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

var (
	// ErrResourceMissing marks an optional input that is absent. Steps that hit
	// it report StatusSkipped and the sequence continues.
	ErrResourceMissing = errors.New("optional resource missing")

	// ErrPermission marks an operation refused by the environment after every
	// fallback was tried. It is reported as StatusWarning.
	ErrPermission = errors.New("permission failure")
)

type (
	// Step names one stage of the provisioning sequence.
	Step string

	// Status is the outcome of a step.
	Status string

	// StepResult is what a step reports when it finishes.
	StepResult struct {
		Step    Step
		Status  Status
		Message string
		// Details holds extra lines such as discovered connection names.
		Details []string
		// Err is set for warning and failed results.
		Err error
	}

	// Reporter receives step results as they happen.
	Reporter interface {
		Report(StepResult)
	}

	// ReporterFunc adapts a function to the Reporter interface.
	ReporterFunc func(StepResult)

	// Summary collects every result of a run in order.
	Summary struct {
		Results []StepResult
	}

	// SequenceError is returned when a fatal step aborts the sequence.
	SequenceError struct {
		Step Step
		Err  error
	}
)

// Report implements Reporter.
func (f ReporterFunc) Report(r StepResult) { f(r) }

func (s Step) String() string { return string(s) }

func (s Status) String() string { return string(s) }

// Result returns the result recorded for step, if any.
func (s Summary) Result(step Step) (StepResult, bool) {
	for _, r := range s.Results {
		if r.Step == step {
			return r, true
		}
	}
	return StepResult{}, false
}

// Count returns how many results have the given status.
func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Error implements the error interface.
func (e *SequenceError) Error() string {
	return fmt.Sprintf("provisioning stopped at step %q: %v", e.Step, e.Err)
}

// Unwrap returns the error of the failed step.
func (e *SequenceError) Unwrap() error { return e.Err }

func ok(step Step, format string, args ...any) StepResult {
	return StepResult{Step: step, Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

func skipped(step Step, format string, args ...any) StepResult {
	return StepResult{Step: step, Status: StatusSkipped, Message: fmt.Sprintf(format, args...), Err: ErrResourceMissing}
}

func warning(step Step, err error, format string, args ...any) StepResult {
	return StepResult{Step: step, Status: StatusWarning, Message: fmt.Sprintf(format, args...), Err: err}
}
