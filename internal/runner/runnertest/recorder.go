// SPDX-License-Identifier: MPL-2.0

// Package runnertest provides a recording runner.Runner for tests that must
// not spawn real processes.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/devboot/devboot/internal/runner"
	"github.com/devboot/devboot/pkg/types"
)

type (
	// Response is the scripted outcome of a command.
	Response struct {
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
		// Err overrides the error returned by Run. When nil and ExitCode is
		// non-zero, a *runner.ToolError is synthesized.
		Err error
	}

	// Recorder captures every Run call and replays scripted responses keyed by
	// command-line prefix. Unscripted commands succeed with empty output.
	Recorder struct {
		mu        sync.Mutex
		calls     []runner.Command
		responses map[string][]Response
		paths     map[string]string
	}
)

var _ runner.Runner = (*Recorder)(nil)

// New creates an empty Recorder. LookPath fails for every tool until
// Provide is called.
func New() *Recorder {
	return &Recorder{
		responses: make(map[string][]Response),
		paths:     make(map[string]string),
	}
}

// On scripts the responses for every command whose rendered line starts with
// prefix. Responses are consumed in order; the last one repeats.
func (r *Recorder) On(prefix string, responses ...Response) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = append(r.responses[prefix], responses...)
	return r
}

// Fail is shorthand for On(prefix, Response{ExitCode: code, Stderr: stderr}).
func (r *Recorder) Fail(prefix string, code types.ExitCode, stderr string) *Recorder {
	return r.On(prefix, Response{ExitCode: code, Stderr: stderr})
}

// Provide makes LookPath succeed for the named tools.
func (r *Recorder) Provide(names ...string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.paths[name] = "/usr/bin/" + name
	}
	return r
}

// LookPath implements runner.Runner.
func (r *Recorder) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run implements runner.Runner.
func (r *Recorder) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)
	resp, ok := r.next(cmd.String())
	if !ok {
		return runner.Result{}, nil
	}

	res := runner.Result{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}
	switch {
	case resp.Err != nil:
		return res, resp.Err
	case resp.ExitCode != types.ExitSuccess:
		return res, &runner.ToolError{
			Command:  cmd,
			ExitCode: resp.ExitCode,
			Stderr:   resp.Stderr,
			Err:      fmt.Errorf("exit status %d", resp.ExitCode),
		}
	default:
		return res, nil
	}
}

// Calls returns a copy of every recorded command.
func (r *Recorder) Calls() []runner.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runner.Command(nil), r.calls...)
}

// Lines returns the recorded commands rendered as strings.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many recorded commands start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// next pops the scripted response for the longest matching prefix.
func (r *Recorder) next(line string) (Response, bool) {
	best := ""
	found := false
	for prefix := range r.responses {
		if strings.HasPrefix(line, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	if !found {
		return Response{}, false
	}
	queue := r.responses[best]
	if len(queue) == 0 {
		return Response{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		r.responses[best] = queue[1:]
	}
	return resp, true
}
