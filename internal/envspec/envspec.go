// SPDX-License-Identifier: MPL-2.0

// Package envspec defines the declarative environment specification consumed
// by the environment manager: a name, an ordered list of channels, and an
// ordered list of package requirements.
package envspec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSpec is the sentinel error wrapped by InvalidSpecError.
	ErrInvalidSpec = errors.New("invalid environment spec")
)

type (
	// PackageRequirement is a single dependency entry: a package name with an
	// optional version constraint (conda syntax, e.g. "3.10" or ">=1.24").
	PackageRequirement struct {
		Name    string
		Version string
	}

	// EnvironmentSpec is the immutable, externally supplied description of an
	// environment before it exists. Channel order matters: channels are
	// consulted in priority order during dependency resolution.
	EnvironmentSpec struct {
		Name         string
		Channels     []string
		Dependencies []PackageRequirement
	}

	// InvalidSpecError is returned when an EnvironmentSpec violates a
	// structural invariant. It wraps ErrInvalidSpec for errors.Is() checks.
	InvalidSpecError struct {
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid environment spec: %s", e.Reason)
}

// Unwrap returns ErrInvalidSpec so callers can use errors.Is for detection.
func (e *InvalidSpecError) Unwrap() error { return ErrInvalidSpec }

// String renders the requirement in conda dependency syntax.
func (r PackageRequirement) String() string {
	if r.Version == "" {
		return r.Name
	}
	// Constraints that carry their own operator (">=1.24") are appended
	// verbatim; bare versions use the conda loose-pin form "name=version".
	if strings.ContainsAny(r.Version, "<>!~") {
		return r.Name + r.Version
	}
	return r.Name + "=" + r.Version
}

// ParseRequirement parses a conda dependency line ("python", "python=3.10",
// "numpy>=1.24") into a PackageRequirement.
func ParseRequirement(s string) (PackageRequirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackageRequirement{}, &InvalidSpecError{Reason: "empty dependency entry"}
	}

	if idx := strings.IndexAny(s, "<>!~"); idx >= 0 {
		if idx == 0 {
			return PackageRequirement{}, &InvalidSpecError{Reason: fmt.Sprintf("dependency %q has no package name", s)}
		}
		return PackageRequirement{Name: s[:idx], Version: s[idx:]}, nil
	}

	name, version, found := strings.Cut(s, "=")
	if !found {
		return PackageRequirement{Name: s}, nil
	}
	if name == "" {
		return PackageRequirement{}, &InvalidSpecError{Reason: fmt.Sprintf("dependency %q has no package name", s)}
	}
	return PackageRequirement{Name: name, Version: strings.TrimPrefix(version, "=")}, nil
}

// Validate checks the structural invariants: non-empty name, at least one
// channel, and a non-empty name on every dependency.
func (s *EnvironmentSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &InvalidSpecError{Reason: "name must not be empty"}
	}
	if len(s.Channels) == 0 {
		return &InvalidSpecError{Reason: fmt.Sprintf("environment %q declares no channels", s.Name)}
	}
	for i, ch := range s.Channels {
		if strings.TrimSpace(ch) == "" {
			return &InvalidSpecError{Reason: fmt.Sprintf("environment %q: channel %d is empty", s.Name, i)}
		}
	}
	for i, dep := range s.Dependencies {
		if strings.TrimSpace(dep.Name) == "" {
			return &InvalidSpecError{Reason: fmt.Sprintf("environment %q: dependency %d has no name", s.Name, i)}
		}
	}
	return nil
}
