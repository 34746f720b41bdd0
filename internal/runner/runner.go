// SPDX-License-Identifier: MPL-2.0

// Package runner executes user commands inside a managed environment by
// wrapping them in `<pm> run -n <env> bash -c <cmdline>`.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"enva/internal/envmgr"
	"enva/internal/mamba"
	"enva/pkg/types"
)

// ErrInvalidRequest is the sentinel error wrapped by InvalidRequestError.
var ErrInvalidRequest = errors.New("invalid execution request")

type (
	// environmentManager is the slice of the manager the runner needs.
	environmentManager interface {
		Environment(name string) (envmgr.ManagedEnvironment, error)
		EnsureReady(ctx context.Context) (mamba.Binary, error)
	}

	// ExecutionRequest describes one command to run inside an environment.
	// Exactly one of Command and Script must be set.
	ExecutionRequest struct {
		// EnvName is the target environment.
		EnvName string
		// Command is a raw shell command line, run as-is.
		Command string
		// Script is a path to a script; it and Args are quoted individually.
		Script string
		// Args are positional arguments for Script.
		Args []string
		// Env holds extra environment variables; they win over inherited
		// process variables of the same name.
		Env map[string]string
		// WorkDir is the working directory for the command, if set.
		WorkDir string
		// Capture collects stdout/stderr into the result instead of
		// inheriting the parent's streams.
		Capture bool
	}

	// ExecutionResult is the outcome of a spawned command. A non-zero exit
	// code is a result, not an error.
	ExecutionResult struct {
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
		Duration time.Duration
		// DryRun is set when the command was not actually executed.
		DryRun bool
	}

	// InvalidRequestError is returned for malformed requests. It wraps
	// ErrInvalidRequest.
	InvalidRequestError struct {
		Reason string
	}

	// Runner executes commands inside Ready environments.
	Runner struct {
		mgr    environmentManager
		dryRun bool
	}

	// Option customizes a Runner.
	Option func(*Runner)
)

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid execution request: %s", e.Reason)
}

// Unwrap returns ErrInvalidRequest so callers can use errors.Is.
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// WithDryRun makes Execute report the would-be invocation without spawning.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// New returns a Runner backed by the given manager.
func New(mgr environmentManager, opts ...Option) *Runner {
	r := &Runner{mgr: mgr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// commandLine builds the shell command line for the request. Script paths
// and positional arguments are quoted individually; a raw Command is trusted
// as written.
func (req *ExecutionRequest) commandLine() (string, error) {
	switch {
	case req.Command != "" && req.Script != "":
		return "", &InvalidRequestError{Reason: "command and script are mutually exclusive"}
	case req.Command != "":
		if len(req.Args) > 0 {
			return "", &InvalidRequestError{Reason: "positional args require a script"}
		}
		return req.Command, nil
	case req.Script != "":
		parts := make([]string, 0, len(req.Args)+1)
		for _, word := range append([]string{req.Script}, req.Args...) {
			quoted, err := syntax.Quote(word, syntax.LangBash)
			if err != nil {
				return "", &InvalidRequestError{Reason: fmt.Sprintf("unquotable argument %q: %v", word, err)}
			}
			parts = append(parts, quoted)
		}
		return strings.Join(parts, " "), nil
	default:
		return "", &InvalidRequestError{Reason: "either command or script is required"}
	}
}

// Execute runs the request inside its environment. The environment must be
// known and Ready. A non-zero exit of the command is reported in the result;
// only spawn failures and bad requests are errors.
func (r *Runner) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResult, error) {
	if req.EnvName == "" {
		return nil, &InvalidRequestError{Reason: "environment name is required"}
	}
	cmdline, err := req.commandLine()
	if err != nil {
		return nil, err
	}

	rec, err := r.mgr.Environment(req.EnvName)
	if err != nil {
		return nil, err
	}
	if rec.Status != envmgr.StatusReady {
		return nil, &envmgr.NotReadyError{Name: req.EnvName, Status: rec.Status}
	}

	bin, err := r.mgr.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	if r.dryRun {
		slog.Info("dry-run: would execute command", "env", req.EnvName, "command", cmdline)
		return &ExecutionResult{ExitCode: types.ExitOK, DryRun: true}, nil
	}

	args := []string{"run", "-n", req.EnvName, "bash", "-c", cmdline}
	cmd := exec.CommandContext(ctx, bin.Path, args...)
	cmd.Env = mergeEnv(bin.SubprocessEnv(os.Environ()), req.Env)
	cmd.Dir = req.WorkDir
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	if req.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
	}

	slog.Debug("executing command", "env", req.EnvName, "command", cmdline)
	start := time.Now()
	runErr := cmd.Run()
	result := &ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		result.ExitCode = types.ExitOK
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = types.ExitCode(exitErr.ExitCode())
		return result, nil
	}
	return nil, &envmgr.CommandExecutionError{Name: req.EnvName, Err: runErr}
}

// mergeEnv overlays overrides onto base. An override replaces an inherited
// variable of the same name; new names are appended in sorted order so the
// result is deterministic.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	remaining := make(map[string]string, len(overrides))
	for k, v := range overrides {
		remaining[k] = v
	}

	merged := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			merged = append(merged, kv)
			continue
		}
		if v, hit := remaining[key]; hit {
			merged = append(merged, key+"="+v)
			delete(remaining, key)
			continue
		}
		merged = append(merged, kv)
	}

	added := make([]string, 0, len(remaining))
	for k, v := range remaining {
		added = append(added, k+"="+v)
	}
	sort.Strings(added)
	return append(merged, added...)
}
