// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package mamba

import "os"

// setExecutable marks the installed binary executable.
func setExecutable(path string) error {
	return os.Chmod(path, 0o755)
}
