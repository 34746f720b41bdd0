// SPDX-License-Identifier: MPL-2.0

// Package mamba locates or installs a conda-compatible package manager
// binary. Detection prefers conda, then mamba, then micromamba; when none is
// present, a micromamba binary is downloaded into the data directory.
package mamba

import (
	"errors"
	"fmt"
)

// Flavor identifies which conda-compatible implementation a binary is.
type Flavor string

const (
	// FlavorConda is the reference conda implementation.
	FlavorConda Flavor = "conda"
	// FlavorMamba is the mamba drop-in replacement.
	FlavorMamba Flavor = "mamba"
	// FlavorMicromamba is the statically linked single-binary variant.
	FlavorMicromamba Flavor = "micromamba"
)

// ErrUnknownFlavor is the sentinel error wrapped by UnknownFlavorError.
var ErrUnknownFlavor = errors.New("unknown package manager flavor")

// UnknownFlavorError is returned when a string does not name a supported
// package manager flavor. It wraps ErrUnknownFlavor.
type UnknownFlavorError struct {
	Value string
}

// Error implements the error interface.
func (e *UnknownFlavorError) Error() string {
	return fmt.Sprintf("unknown package manager flavor %q (expected conda, mamba, or micromamba)", e.Value)
}

// Unwrap returns ErrUnknownFlavor so callers can use errors.Is for detection.
func (e *UnknownFlavorError) Unwrap() error { return ErrUnknownFlavor }

// ParseFlavor converts a string into a Flavor.
func ParseFlavor(s string) (Flavor, error) {
	switch Flavor(s) {
	case FlavorConda, FlavorMamba, FlavorMicromamba:
		return Flavor(s), nil
	default:
		return "", &UnknownFlavorError{Value: s}
	}
}

// Command returns the executable name of the flavor.
func (f Flavor) Command() string { return string(f) }

// String implements fmt.Stringer.
func (f Flavor) String() string { return string(f) }

// detectionOrder is the auto-detection priority.
var detectionOrder = []Flavor{FlavorConda, FlavorMamba, FlavorMicromamba}
