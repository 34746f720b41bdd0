// SPDX-License-Identifier: MPL-2.0

// Package envmgr owns the lifecycle of managed package environments. A
// process-wide Manager tracks each environment's state and drives the
// package manager binary resolved by internal/mamba.
package envmgr

import "time"

// Status is an environment's lifecycle state.
//
// Transitions: NotCreated → Creating → {Ready, Failed};
// Ready → Removing → removed; Ready → Validating → {Ready, Invalid}.
// Failed and Invalid are re-entered via recreate and validate.
type Status string

const (
	// StatusNotCreated means the environment is known but not installed.
	StatusNotCreated Status = "not-created"
	// StatusCreating means a create subprocess is in flight.
	StatusCreating Status = "creating"
	// StatusReady means the environment is installed and usable.
	StatusReady Status = "ready"
	// StatusFailed means the last create attempt failed.
	StatusFailed Status = "failed"
	// StatusRemoving means a remove subprocess is in flight.
	StatusRemoving Status = "removing"
	// StatusValidating means a validation pass is in flight.
	StatusValidating Status = "validating"
	// StatusInvalid means validation found the installation broken.
	StatusInvalid Status = "invalid"
)

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

// FailureKind classifies why an environment operation failed, derived from
// the package manager's output.
type FailureKind string

const (
	// FailureNetwork covers connectivity and download failures.
	FailureNetwork FailureKind = "network"
	// FailureConfig covers malformed or rejected environment specs.
	FailureConfig FailureKind = "config"
	// FailurePackageNotFound covers unresolvable package requirements.
	FailurePackageNotFound FailureKind = "package-not-found"
	// FailureInterrupted covers cancellation mid-operation.
	FailureInterrupted FailureKind = "interrupted"
	// FailureUnknown covers everything else.
	FailureUnknown FailureKind = "unknown"
)

// String implements fmt.Stringer.
func (k FailureKind) String() string { return string(k) }

// ManagedEnvironment is the tracked state of one environment.
type ManagedEnvironment struct {
	// Name is the environment name.
	Name string
	// InstallPath is the installation prefix, empty until known.
	InstallPath string
	// Status is the current lifecycle state.
	Status Status
	// FailureKind classifies the last failure; empty when Status is not
	// Failed or Invalid.
	FailureKind FailureKind
	// FailureReason is a human-readable account of the last failure.
	FailureReason string
	// LastValidatedAt is when validation last succeeded; zero if never.
	LastValidatedAt time.Time
}
