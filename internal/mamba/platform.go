// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is the sentinel error wrapped by
// UnsupportedPlatformError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError is returned when no micromamba build exists for
// the current OS/architecture combination.
type UnsupportedPlatformError struct {
	OS   string
	Arch string
}

// Error implements the error interface.
func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("no micromamba build for %s/%s", e.OS, e.Arch)
}

// Unwrap returns ErrUnsupportedPlatform so callers can use errors.Is.
func (e *UnsupportedPlatformError) Unwrap() error { return ErrUnsupportedPlatform }

// platformID maps a GOOS/GOARCH pair onto the conda platform identifier used
// by the micromamba distribution endpoints (linux-64, osx-arm64, ...).
func platformID(goos, goarch string) (string, error) {
	switch goos {
	case "linux":
		switch goarch {
		case "amd64":
			return "linux-64", nil
		case "arm64":
			return "linux-aarch64", nil
		case "ppc64le":
			return "linux-ppc64le", nil
		}
	case "darwin":
		switch goarch {
		case "amd64":
			return "osx-64", nil
		case "arm64":
			return "osx-arm64", nil
		}
	case "windows":
		if goarch == "amd64" {
			return "win-64", nil
		}
	}
	return "", &UnsupportedPlatformError{OS: goos, Arch: goarch}
}

// downloadURLs returns the candidate micromamba download URLs in preference
// order: the official distribution API first, then the GitHub release asset.
func downloadURLs(goos, goarch string) ([]string, error) {
	platform, err := platformID(goos, goarch)
	if err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("https://micro.mamba.pm/api/micromamba/%s/latest", platform),
		fmt.Sprintf("https://github.com/mamba-org/micromamba-releases/releases/latest/download/micromamba-%s", platform),
	}, nil
}

// binaryName returns the installed executable name for the current OS.
func binaryName(goos string) string {
	if goos == "windows" {
		return "micromamba.exe"
	}
	return "micromamba"
}

// hostPlatform is a seam for tests that exercise other OS/arch combinations.
var hostPlatform = func() (goos, goarch string) {
	return runtime.GOOS, runtime.GOARCH
}
