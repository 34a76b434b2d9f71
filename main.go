// SPDX-License-Identifier: MPL-2.0

package main

import cmd "wasmforge-cli/cmd/wasmforge"

func main() {
	cmd.Execute()
}
