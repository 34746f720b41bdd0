// SPDX-License-Identifier: MPL-2.0

//go:build windows

package envmgr

import "os/exec"

// setProcessGroup is a no-op on Windows; exec.CommandContext's default kill
// is the best available behavior there.
func setProcessGroup(*exec.Cmd) {}
