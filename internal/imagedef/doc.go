// SPDX-License-Identifier: MPL-2.0

// Package imagedef reads and rewrites the version marker of a container image
// definition (a Dockerfile line such as `ARG PYTHON_VERSION=3.12.3`).
//
// The current version is derived by re-reading the file on every call; nothing
// is cached between invocations. Updates replace every marker line in a single
// pass and are written through a temporary file renamed over the original.
package imagedef
