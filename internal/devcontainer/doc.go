// SPDX-License-Identifier: MPL-2.0

// Package devcontainer drives the dev container build CLI and checks that a
// workspace has the files a dev container setup needs.
package devcontainer
