// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the devboot command tree.
//
// Every command handler receives the App composition root and reaches the
// configuration, the external tool runner and the output streams through it,
// so tests can build an App with fakes and drive the real cobra tree.
package cmd
