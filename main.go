// SPDX-License-Identifier: MPL-2.0

// Command enva manages isolated package environments for bioinformatics
// workflows.
package main

import cmd "enva/cmd/enva"

func main() {
	cmd.Execute()
}
