// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devboot/devboot/pkg/types"
)

// ErrToolFailed is the sentinel error wrapped by ToolError.
var ErrToolFailed = errors.New("external tool failed")

// ToolError reports a command that exited non-zero or could not be started.
// It wraps ErrToolFailed for errors.Is() compatibility; the original exec
// error stays reachable through errors.As.
type ToolError struct {
	Command  Command
	ExitCode types.ExitCode
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %s", e.Command, e.ExitCode)
	if e.ExitCode.IsCommandNotFound() {
		msg = fmt.Sprintf("%s could not be started", e.Command.Name)
	}
	if detail := lastLine(e.Stderr); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Unwrap returns both the sentinel and the underlying exec error.
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolFailed}
	}
	return []error{ErrToolFailed, e.Err}
}

// ExitCodeOf extracts the exit code carried by err, or ExitFailure when err
// is not a ToolError. A nil error yields ExitSuccess.
func ExitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.ExitCode
	}
	return types.ExitFailure
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
