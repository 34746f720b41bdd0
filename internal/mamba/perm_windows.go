// SPDX-License-Identifier: MPL-2.0

//go:build windows

package mamba

// setExecutable is a no-op on Windows, where execute permission comes from
// the file extension.
func setExecutable(string) error { return nil }
