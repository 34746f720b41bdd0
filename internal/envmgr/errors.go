// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	// ErrNotFound means the named environment is not known to the manager.
	ErrNotFound = errors.New("environment not found")
	// ErrNotReady means the environment exists but is not in the Ready state.
	ErrNotReady = errors.New("environment not ready")
	// ErrInstallation means a package manager subprocess reported failure.
	ErrInstallation = errors.New("installation failed")
	// ErrCommandExecution means a subprocess could not be spawned at all.
	ErrCommandExecution = errors.New("command execution failed")
	// ErrValidation means an environment failed its health check.
	ErrValidation = errors.New("environment validation failed")
)

type (
	// NotFoundError is returned for operations on an unknown environment.
	// It wraps ErrNotFound.
	NotFoundError struct {
		Name string
	}

	// NotReadyError is returned when an operation requires a Ready
	// environment. It wraps ErrNotReady.
	NotReadyError struct {
		Name   string
		Status Status
	}

	// ConfigError marks an environment spec problem. It wraps the underlying
	// spec error so errors.Is(err, envspec.ErrInvalidSpec) keeps working.
	ConfigError struct {
		Err error
	}

	// InstallationError is returned when the package manager exits non-zero.
	// It wraps ErrInstallation.
	InstallationError struct {
		Name   string
		Kind   FailureKind
		Output string
	}

	// CommandExecutionError is returned when a subprocess cannot be spawned,
	// as opposed to running and exiting non-zero. It wraps
	// ErrCommandExecution and the spawn error.
	CommandExecutionError struct {
		Name string
		Err  error
	}

	// ValidationError is returned when an environment fails its health
	// check. It wraps ErrValidation.
	ValidationError struct {
		Name   string
		Reason string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("environment %q not found", e.Name)
}

// Unwrap returns ErrNotFound so callers can use errors.Is for detection.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface.
func (e *NotReadyError) Error() string {
	return fmt.Sprintf("environment %q is %s, not ready", e.Name, e.Status)
}

// Unwrap returns ErrNotReady so callers can use errors.Is for detection.
func (e *NotReadyError) Unwrap() error { return ErrNotReady }

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("environment config error: %v", e.Err)
}

// Unwrap returns the underlying spec error.
func (e *ConfigError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *InstallationError) Error() string {
	return fmt.Sprintf("installing environment %q failed (%s)", e.Name, e.Kind)
}

// Unwrap returns ErrInstallation so callers can use errors.Is for detection.
func (e *InstallationError) Unwrap() error { return ErrInstallation }

// Error implements the error interface.
func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("failed to execute command in environment %q: %v", e.Name, e.Err)
}

// Unwrap returns the wrapped errors for errors.Is inspection.
func (e *CommandExecutionError) Unwrap() []error {
	return []error{ErrCommandExecution, e.Err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("environment %q failed validation: %s", e.Name, e.Reason)
}

// Unwrap returns ErrValidation so callers can use errors.Is for detection.
func (e *ValidationError) Unwrap() error { return ErrValidation }
