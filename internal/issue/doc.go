// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for recovery. The issue catalog holds longer Markdown guidance
// for well-known failures (a failed rebuild, a missing version marker) that
// the CLI renders with glamour.
package issue
