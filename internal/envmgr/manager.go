// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"enva/internal/catalog"
	"enva/internal/config"
	"enva/internal/envspec"
	"enva/internal/mamba"
)

type (
	// Manager owns the lifecycle of managed environments. All mutable state
	// sits behind one mutex, which is never held across subprocess or
	// network calls. Concurrent identical operations are deduplicated
	// through a singleflight group, so two goroutines creating the same
	// environment share one subprocess and one result.
	Manager struct {
		resolver *mamba.Resolver
		channels []string
		dryRun   bool
		exec     execFunc

		mu          sync.Mutex
		store       *store
		bin         mamba.Binary
		binErr      error
		binResolved bool

		flight singleflight.Group
	}

	// Option customizes a Manager.
	Option func(*Manager)

	// CreateOptions controls CreateEnvironment.
	CreateOptions struct {
		// Recreate removes an existing Ready environment before creating.
		Recreate bool
	}

	// CreateResult reports the outcome of a create operation.
	CreateResult struct {
		Name        string
		InstallPath string
		Status      Status
		// AlreadyExists is set when the environment was Ready and Recreate
		// was not requested; nothing was executed.
		AlreadyExists bool
		// DryRun is set when the operation was simulated.
		DryRun bool
	}

	// ValidationReport is the outcome of a validation pass. An unhealthy
	// environment is a report, not an error.
	ValidationReport struct {
		Name    string
		Valid   bool
		Reason  string
		Missing []string
		DryRun  bool
	}
)

// WithDryRun makes every operation validate and report without executing
// subprocesses or mutating the store.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) { m.dryRun = dryRun }
}

// WithResolver replaces the binary resolver.
func WithResolver(r *mamba.Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithExecFunc replaces the subprocess executor. Used by tests.
func WithExecFunc(fn execFunc) Option {
	return func(m *Manager) { m.exec = fn }
}

// New returns a Manager for the given configuration. The catalog
// environments are pre-registered in priority order.
func New(cfg *config.Config, opts ...Option) *Manager {
	var resolverOpts []mamba.ResolverOption
	if cfg.PackageManager != "" {
		if f, err := mamba.ParseFlavor(cfg.PackageManager); err == nil {
			resolverOpts = append(resolverOpts, mamba.WithOverride(f))
		}
	}

	m := &Manager{
		resolver: mamba.NewResolver(cfg.DataDir, resolverOpts...),
		channels: cfg.Channels,
		exec:     runPM,
		store:    newStore(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dryRun {
		// Rebuild so the resolver inherits dry-run too.
		resolverOpts = append(resolverOpts, mamba.WithDryRun(true))
		m.resolver = mamba.NewResolver(cfg.DataDir, resolverOpts...)
	}

	for _, name := range catalog.Environments() {
		m.store.register(name)
	}
	return m
}

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default returns the process-wide Manager, creating it on first call.
// Later calls ignore their arguments. Tests use New directly.
func Default(cfg *config.Config, opts ...Option) *Manager {
	defaultOnce.Do(func() {
		defaultMgr = New(cfg, opts...)
	})
	return defaultMgr
}

// EnsureReady resolves the package manager binary, downloading micromamba if
// needed, and refreshes environment state from the installation. The result
// (success or terminal failure) is cached for the process lifetime;
// concurrent callers share one resolution.
func (m *Manager) EnsureReady(ctx context.Context) (mamba.Binary, error) {
	v, err, _ := m.flight.Do("ensure-ready", func() (any, error) {
		m.mu.Lock()
		if m.binResolved {
			bin, cachedErr := m.bin, m.binErr
			m.mu.Unlock()
			return bin, cachedErr
		}
		m.mu.Unlock()

		bin, resolveErr := m.resolver.EnsureBinary(ctx)

		m.mu.Lock()
		m.bin, m.binErr, m.binResolved = bin, resolveErr, true
		m.mu.Unlock()

		if resolveErr == nil && !m.dryRun {
			m.refreshFromInstallation(ctx, bin)
		}
		return bin, resolveErr
	})
	if err != nil {
		return mamba.Binary{}, err
	}
	return v.(mamba.Binary), nil
}

// Refresh discards the cached resolution and resolves again. This is the
// only way a failed resolution is retried within one process.
func (m *Manager) Refresh(ctx context.Context) (mamba.Binary, error) {
	m.mu.Lock()
	m.binResolved = false
	m.binErr = nil
	m.mu.Unlock()
	return m.EnsureReady(ctx)
}

// refreshFromInstallation updates tracked environments from the package
// manager's own view (`env list`). Environments already installed on disk
// become Ready; states reached through richer transitions (Failed, Invalid,
// in-flight) are left alone.
func (m *Manager) refreshFromInstallation(ctx context.Context, bin mamba.Binary) {
	out, code, err := m.exec(ctx, bin, "env", "list", "--json")
	if err != nil || code != 0 {
		slog.Warn("could not list installed environments", "exit", code, "error", err)
		return
	}
	envs := parseEnvList([]byte(out))

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.store.byName {
		path, found := envPathFor(rec.Name, envs)
		if !found {
			continue
		}
		if rec.Status == StatusNotCreated {
			rec.Status = StatusReady
		}
		if rec.InstallPath == "" {
			rec.InstallPath = path
		}
	}
}

// ListEnvironments returns a snapshot of all tracked environments in
// registration order.
func (m *Manager) ListEnvironments() []ManagedEnvironment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.snapshot()
}

// Environment returns a copy of the record for name.
func (m *Manager) Environment(name string) (ManagedEnvironment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.store.get(name)
	if rec == nil {
		return ManagedEnvironment{}, &NotFoundError{Name: name}
	}
	return *rec, nil
}

// CreateEnvironment installs an environment from its spec. A Ready
// environment is reported via AlreadyExists unless Recreate is set.
// Concurrent creates of the same name share one execution; different names
// proceed independently.
func (m *Manager) CreateEnvironment(ctx context.Context, spec *envspec.EnvironmentSpec, opts CreateOptions) (*CreateResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	v, err, shared := m.flight.Do("create:"+spec.Name, func() (any, error) {
		return m.createOne(ctx, spec, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("create shared an in-flight execution", "env", spec.Name)
	}
	return v.(*CreateResult), nil
}

func (m *Manager) createOne(ctx context.Context, spec *envspec.EnvironmentSpec, opts CreateOptions) (*CreateResult, error) {
	name := spec.Name

	bin, err := m.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	rec := m.store.get(name)
	if rec != nil && rec.Status == StatusReady && !opts.Recreate {
		res := &CreateResult{
			Name:          name,
			InstallPath:   rec.InstallPath,
			Status:        StatusReady,
			AlreadyExists: true,
		}
		m.mu.Unlock()
		return res, nil
	}
	if m.dryRun {
		m.mu.Unlock()
		slog.Info("dry-run: would create environment", "env", name)
		return &CreateResult{Name: name, Status: StatusReady, DryRun: true}, nil
	}
	rec = m.store.register(name)
	wasReady := rec.Status == StatusReady
	rec.Status = StatusCreating
	rec.FailureKind = ""
	rec.FailureReason = ""
	m.mu.Unlock()

	result, err := m.runCreate(ctx, bin, spec, wasReady && opts.Recreate)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runCreate performs the subprocess part of a create, with the manager
// mutex released. The store is updated when it finishes.
func (m *Manager) runCreate(ctx context.Context, bin mamba.Binary, spec *envspec.EnvironmentSpec, removeFirst bool) (*CreateResult, error) {
	name := spec.Name

	specFile, cleanup, err := m.writeSpecFile(spec)
	if err != nil {
		m.markFailed(name, FailureConfig, err.Error())
		return nil, &ConfigError{Err: err}
	}
	defer cleanup()

	// Serialize creation across processes; concurrent prefix writes corrupt
	// the installation. Non-Linux platforms rely on the in-process dedup.
	lock, lockErr := acquireCreateLock()
	if lockErr != nil && !errors.Is(lockErr, errFlockUnavailable) {
		slog.Warn("could not acquire creation lock", "error", lockErr)
	}
	defer lock.Release()

	if removeFirst {
		// Best effort: a half-broken environment may not remove cleanly,
		// and create reports the real failure afterwards if it cannot
		// proceed.
		if out, code, rmErr := m.exec(ctx, bin, "env", "remove", "-n", name, "-y"); rmErr != nil || code != 0 {
			slog.Warn("pre-create removal failed", "env", name, "exit", code, "output", out, "error", rmErr)
		}
	}

	slog.Info("creating environment", "env", name)
	out, code, err := m.exec(ctx, bin, "env", "create", "-f", specFile, "-y")
	if err != nil {
		if ctx.Err() != nil {
			m.markFailed(name, FailureInterrupted, "interrupted during creation")
			return nil, &InstallationError{Name: name, Kind: FailureInterrupted, Output: out}
		}
		m.markFailed(name, FailureUnknown, err.Error())
		return nil, &CommandExecutionError{Name: name, Err: err}
	}
	if code != 0 {
		kind := classifyFailure(out, ctx.Err())
		m.markFailed(name, kind, lastOutputLine(out))
		return nil, &InstallationError{Name: name, Kind: kind, Output: out}
	}

	installPath := m.discoverInstallPath(ctx, bin, name)

	m.mu.Lock()
	rec := m.store.register(name)
	rec.Status = StatusReady
	rec.InstallPath = installPath
	rec.FailureKind = ""
	rec.FailureReason = ""
	m.mu.Unlock()

	slog.Info("environment created", "env", name, "path", installPath)
	return &CreateResult{Name: name, InstallPath: installPath, Status: StatusReady}, nil
}

// writeSpecFile materializes the spec to a temp YAML file for `env create -f`.
func (m *Manager) writeSpecFile(spec *envspec.EnvironmentSpec) (path string, cleanup func(), err error) {
	data, err := envspec.Marshal(spec)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal environment spec: %w", err)
	}
	f, err := os.CreateTemp("", "enva-"+spec.Name+"-*.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp spec file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write temp spec file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to close temp spec file: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// discoverInstallPath asks the package manager where the environment landed.
func (m *Manager) discoverInstallPath(ctx context.Context, bin mamba.Binary, name string) string {
	out, code, err := m.exec(ctx, bin, "env", "list", "--json")
	if err != nil || code != 0 {
		slog.Warn("could not determine install path", "env", name, "exit", code, "error", err)
		return ""
	}
	path, _ := envPathFor(name, parseEnvList([]byte(out)))
	return path
}

// markFailed transitions an environment to Failed with a classified reason.
func (m *Manager) markFailed(name string, kind FailureKind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.store.register(name)
	rec.Status = StatusFailed
	rec.FailureKind = kind
	rec.FailureReason = reason
}

// InstallPackages installs additional packages into a Ready environment
// using the configured channels. A failed install leaves the environment
// Ready; the packages simply are not there.
func (m *Manager) InstallPackages(ctx context.Context, name string, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}

	bin, err := m.EnsureReady(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	rec := m.store.get(name)
	if rec == nil {
		m.mu.Unlock()
		return &NotFoundError{Name: name}
	}
	if rec.Status != StatusReady {
		status := rec.Status
		m.mu.Unlock()
		return &NotReadyError{Name: name, Status: status}
	}
	m.mu.Unlock()

	if m.dryRun {
		slog.Info("dry-run: would install packages", "env", name, "packages", pkgs)
		return nil
	}

	args := []string{"install", "-n", name}
	for _, ch := range m.channels {
		args = append(args, "-c", ch)
	}
	args = append(args, "-y")
	args = append(args, pkgs...)

	slog.Info("installing packages", "env", name, "packages", pkgs)
	out, code, err := m.exec(ctx, bin, args...)
	if err != nil {
		return &CommandExecutionError{Name: name, Err: err}
	}
	if code != 0 {
		return &InstallationError{Name: name, Kind: classifyFailure(out, ctx.Err()), Output: out}
	}
	return nil
}

// ValidateEnvironment checks an environment's health: the install path must
// exist and the environment's marker executables must be present and
// executable. An unhealthy environment yields a report, not an error, and
// transitions to Invalid. InstallPath is never modified here.
func (m *Manager) ValidateEnvironment(ctx context.Context, name string) (*ValidationReport, error) {
	bin, err := m.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	rec := m.store.get(name)
	if rec == nil {
		m.mu.Unlock()
		return nil, &NotFoundError{Name: name}
	}
	if rec.Status == StatusNotCreated {
		status := rec.Status
		m.mu.Unlock()
		return nil, &NotReadyError{Name: name, Status: status}
	}
	installPath := rec.InstallPath
	if !m.dryRun {
		rec.Status = StatusValidating
	}
	m.mu.Unlock()

	if installPath == "" {
		// The path may simply never have been discovered; ask without
		// persisting, validation does not own that field.
		installPath = m.discoverInstallPath(ctx, bin, name)
	}

	report := validateInstallation(name, installPath)
	report.DryRun = m.dryRun

	if m.dryRun {
		return report, nil
	}

	m.mu.Lock()
	rec = m.store.register(name)
	if report.Valid {
		rec.Status = StatusReady
		rec.FailureKind = ""
		rec.FailureReason = ""
		rec.LastValidatedAt = time.Now()
	} else {
		rec.Status = StatusInvalid
		rec.FailureKind = FailureConfig
		rec.FailureReason = report.Reason
	}
	m.mu.Unlock()

	return report, nil
}

// validateInstallation performs the filesystem checks for one environment.
func validateInstallation(name, installPath string) *ValidationReport {
	report := &ValidationReport{Name: name}

	if installPath == "" {
		report.Reason = "install path unknown"
		return report
	}
	if info, err := os.Stat(installPath); err != nil || !info.IsDir() {
		report.Reason = fmt.Sprintf("install path %s does not exist", installPath)
		return report
	}

	for _, tool := range catalog.MarkerTools(name) {
		p := filepath.Join(installPath, "bin", tool)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			report.Missing = append(report.Missing, tool)
		}
	}
	if len(report.Missing) > 0 {
		report.Reason = fmt.Sprintf("missing executables: %v", report.Missing)
		return report
	}

	report.Valid = true
	return report
}

// RemoveEnvironment removes an installed environment and forgets its record.
// A failed removal leaves the previous state untouched.
func (m *Manager) RemoveEnvironment(ctx context.Context, name string) error {
	bin, err := m.EnsureReady(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	rec := m.store.get(name)
	if rec == nil {
		m.mu.Unlock()
		return &NotFoundError{Name: name}
	}
	if rec.Status == StatusNotCreated {
		m.mu.Unlock()
		return &NotReadyError{Name: name, Status: StatusNotCreated}
	}
	if m.dryRun {
		m.mu.Unlock()
		slog.Info("dry-run: would remove environment", "env", name)
		return nil
	}
	prev := rec.Status
	rec.Status = StatusRemoving
	m.mu.Unlock()

	slog.Info("removing environment", "env", name)
	out, code, err := m.exec(ctx, bin, "env", "remove", "-n", name, "-y")

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.store.register(name).Status = prev
		return &CommandExecutionError{Name: name, Err: err}
	}
	if code != 0 {
		m.store.register(name).Status = prev
		return &InstallationError{Name: name, Kind: classifyFailure(out, ctx.Err()), Output: out}
	}
	m.store.remove(name)
	return nil
}

// lastOutputLine returns the last non-empty line of subprocess output, which
// for conda-family tools carries the summary error.
func lastOutputLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
