// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by devboot packages.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is the exit status of a successful run.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for missing required arguments and failed external tools.
	ExitFailure ExitCode = 1
	// ExitCommandNotFound is the POSIX shell status for a tool that could not be started.
	ExitCommandNotFound ExitCode = 127
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsCommandNotFound reports whether the tool could not be located or started.
func (c ExitCode) IsCommandNotFound() bool { return c == ExitCommandNotFound }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
