// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package envmgr

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group and arranges for
// context cancellation to SIGKILL the whole group. Package manager runs
// spawn solver and download subprocesses that would otherwise outlive a
// killed parent.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
