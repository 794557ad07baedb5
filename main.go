// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/agentpack/agentpack/cmd/agentpack"

func main() {
	cmd.Execute()
}
