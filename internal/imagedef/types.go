// SPDX-License-Identifier: MPL-2.0

package imagedef

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMarkerKey is the build argument holding the Python version.
	DefaultMarkerKey MarkerKey = "PYTHON_VERSION"

	// Unknown is reported by Locate when no version can be read.
	Unknown Version = "unknown"
)

var (
	// ErrEmptyVersion is returned when an update is requested with no version.
	ErrEmptyVersion = errors.New("version must not be empty")
	// ErrInvalidVersion is returned when a version would not fit on a single
	// marker line.
	ErrInvalidVersion = errors.New("version must be a single token")
	// ErrInvalidMarkerKey is returned when a MarkerKey is not a valid build-arg name.
	ErrInvalidMarkerKey = errors.New("invalid marker key")
	// ErrMarkerNotFound is returned when the file has no line for the marker key.
	ErrMarkerNotFound = errors.New("version marker not found")

	markerKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// MarkerKey is the name of the build argument carrying the version.
	MarkerKey string

	// Version is the value of a marker line. Its syntax is not validated:
	// any single non-blank token is accepted.
	Version string

	// Checksum is an opaque digest supplied alongside a version bump. It is
	// only echoed back to the user and never verified.
	Checksum string

	// ValidationError is returned when an input to Update is rejected before
	// the file is touched. It wraps the specific sentinel (ErrEmptyVersion,
	// ErrInvalidVersion, ErrInvalidMarkerKey) for errors.Is() compatibility.
	ValidationError struct {
		Field string
		Value string
		Err   error
	}

	// UpdateResult describes a completed Update.
	UpdateResult struct {
		Path     string
		Key      MarkerKey
		Previous Version
		Current  Version
		// Replaced is the number of marker lines rewritten.
		Replaced int
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ValidationError) Unwrap() error { return e.Err }

// String returns the string representation of the MarkerKey.
func (k MarkerKey) String() string { return string(k) }

// Validate returns a *ValidationError when the key is not a valid build-arg name.
func (k MarkerKey) Validate() error {
	if !markerKeyPattern.MatchString(string(k)) {
		return &ValidationError{Field: "marker key", Value: string(k), Err: ErrInvalidMarkerKey}
	}
	return nil
}

// String returns the string representation of the Version.
func (v Version) String() string { return string(v) }

// IsUnknown reports whether v is the Unknown sentinel.
func (v Version) IsUnknown() bool { return v == Unknown }

// Validate rejects empty and whitespace-only versions, and versions with
// inner whitespace that would spill past the marker line. Surrounding
// whitespace is ignored.
func (v Version) Validate() error {
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "" {
		return &ValidationError{Field: "version", Value: string(v), Err: ErrEmptyVersion}
	}
	if strings.ContainsAny(trimmed, " \t\r\n\v\f") {
		return &ValidationError{Field: "version", Value: string(v), Err: ErrInvalidVersion}
	}
	return nil
}

// String returns the string representation of the Checksum.
func (c Checksum) String() string { return string(c) }

// IsSet reports whether a checksum was supplied.
func (c Checksum) IsSet() bool { return strings.TrimSpace(string(c)) != "" }
