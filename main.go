// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/devboot/devboot/cmd/devboot"

func main() {
	cmd.Execute()
}
