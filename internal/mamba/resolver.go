// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Test seams. Production code never reassigns these.
var (
	lookPath = exec.LookPath

	// commonLocations are well-known micromamba install paths checked after
	// PATH lookup fails.
	commonLocations = []string{
		"/usr/local/bin/micromamba",
		"/opt/micromamba/bin/micromamba",
		"/usr/bin/micromamba",
	}
)

// ErrNoPackageManager is the sentinel error returned when no conda-compatible
// binary can be located and downloading is disabled or failed.
var ErrNoPackageManager = errors.New("no package manager available")

// OverrideUnavailableError is returned when a forced flavor is not installed.
// A forced flavor is never downloaded or fallen back from. It wraps
// ErrNoPackageManager.
type OverrideUnavailableError struct {
	Flavor Flavor
}

// Error implements the error interface.
func (e *OverrideUnavailableError) Error() string {
	return fmt.Sprintf("forced package manager %q is not installed", e.Flavor)
}

// Unwrap returns ErrNoPackageManager so callers can use errors.Is.
func (e *OverrideUnavailableError) Unwrap() error { return ErrNoPackageManager }

type (
	// Binary is a resolved package manager executable.
	Binary struct {
		// Flavor identifies the implementation.
		Flavor Flavor
		// Path is the absolute path to the executable.
		Path string
	}

	// Resolver locates a conda-compatible package manager, downloading
	// micromamba into the data directory as a last resort.
	Resolver struct {
		dataDir  string
		override Flavor
		dryRun   bool
		dl       *downloader
	}

	// ResolverOption customizes a Resolver.
	ResolverOption func(*Resolver)
)

// WithOverride forces a specific flavor instead of auto-detection. The
// resolver falls back to auto-detection when the forced flavor is absent.
func WithOverride(f Flavor) ResolverOption {
	return func(r *Resolver) { r.override = f }
}

// WithDryRun makes EnsureBinary report what it would download without
// touching the network or the filesystem.
func WithDryRun(dryRun bool) ResolverOption {
	return func(r *Resolver) { r.dryRun = dryRun }
}

// WithDownloadURLs replaces the micromamba download endpoints. Used by tests
// to point at a local server.
func WithDownloadURLs(urls []string) ResolverOption {
	return func(r *Resolver) { r.dl.urls = urls }
}

// NewResolver returns a Resolver installing into dataDir when a download is
// needed.
func NewResolver(dataDir string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dataDir: dataDir,
		dl:      newDownloader(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// installPath is where a downloaded micromamba binary lives.
func (r *Resolver) installPath() string {
	goos, _ := hostPlatform()
	return filepath.Join(r.dataDir, "bin", binaryName(goos))
}

// Detect locates an already-installed package manager without downloading
// anything. The bool result reports whether one was found. The override, if
// any, is ignored here; EnsureBinary enforces it.
func (r *Resolver) Detect() (Binary, bool) {
	for _, f := range detectionOrder {
		if bin, ok := r.detectFlavor(f); ok {
			slog.Debug("detected package manager", "flavor", f, "path", bin.Path)
			return bin, true
		}
	}
	return Binary{}, false
}

// detectFlavor checks PATH for the flavor's command; for micromamba it also
// checks common install locations and this tool's own data directory.
func (r *Resolver) detectFlavor(f Flavor) (Binary, bool) {
	if path, err := lookPath(f.Command()); err == nil {
		return Binary{Flavor: f, Path: path}, true
	}
	if f != FlavorMicromamba {
		return Binary{}, false
	}
	for _, loc := range commonLocations {
		if info, err := os.Stat(loc); err == nil && !info.IsDir() {
			return Binary{Flavor: f, Path: loc}, true
		}
	}
	if installed := r.installPath(); installed != "" {
		if info, err := os.Stat(installed); err == nil && !info.IsDir() {
			return Binary{Flavor: f, Path: installed}, true
		}
	}
	return Binary{}, false
}

// EnsureBinary returns a usable package manager binary, downloading
// micromamba when nothing is installed. A forced flavor must already be
// installed; it is never downloaded and never fallen back from. In dry-run
// mode the download is skipped and the would-be install path is returned.
func (r *Resolver) EnsureBinary(ctx context.Context) (Binary, error) {
	if r.override != "" {
		if bin, ok := r.detectFlavor(r.override); ok {
			slog.Debug("using forced package manager", "flavor", r.override, "path", bin.Path)
			return bin, nil
		}
		return Binary{}, &OverrideUnavailableError{Flavor: r.override}
	}

	if bin, ok := r.Detect(); ok {
		return bin, nil
	}

	target := r.installPath()
	if r.dryRun {
		slog.Info("dry-run: would download micromamba", "path", target)
		return Binary{Flavor: FlavorMicromamba, Path: target}, nil
	}

	slog.Info("no package manager found, downloading micromamba", "path", target)
	if err := r.dl.fetch(ctx, target); err != nil {
		return Binary{}, fmt.Errorf("%w: %w", ErrNoPackageManager, err)
	}
	return Binary{Flavor: FlavorMicromamba, Path: target}, nil
}
