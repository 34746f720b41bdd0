// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(filepath.Join(dir, "config"))
	SetDataDirOverride(filepath.Join(dir, "data"))
	SetSpecDirOverride(filepath.Join(dir, "specs"))
	t.Cleanup(Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PackageManager != "" {
		t.Errorf("PackageManager = %q, want auto", cfg.PackageManager)
	}
	if want := []string{"conda-forge", "bioconda"}; !slices.Equal(cfg.Channels, want) {
		t.Errorf("Channels = %v, want %v", cfg.Channels, want)
	}
	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SpecDir != filepath.Join(dir, "specs") {
		t.Errorf("SpecDir = %q", cfg.SpecDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `package_manager: micromamba
channels:
  - conda-forge
ui:
  verbose: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	SetConfigFilePathOverride(cfgPath)
	SetDataDirOverride(filepath.Join(dir, "data"))
	SetSpecDirOverride(filepath.Join(dir, "specs"))
	t.Cleanup(Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PackageManager != "micromamba" {
		t.Errorf("PackageManager = %q, want micromamba", cfg.PackageManager)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
	if want := []string{"conda-forge"}; !slices.Equal(cfg.Channels, want) {
		t.Errorf("Channels = %v, want %v", cfg.Channels, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(filepath.Join(dir, "config"))
	SetDataDirOverride(filepath.Join(dir, "data"))
	SetSpecDirOverride(filepath.Join(dir, "specs"))
	t.Cleanup(Reset)
	t.Setenv("ENVA_PACKAGE_MANAGER", "mamba")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PackageManager != "mamba" {
		t.Errorf("PackageManager = %q, want mamba", cfg.PackageManager)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(filepath.Join(dir, "does-not-exist"))
	SetDataDirOverride(filepath.Join(dir, "data"))
	SetSpecDirOverride(filepath.Join(dir, "specs"))
	t.Cleanup(Reset)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "explicit micromamba",
			mutate: func(c *Config) { c.PackageManager = "micromamba" },
		},
		{
			name:    "unknown package manager",
			mutate:  func(c *Config) { c.PackageManager = "pixi" },
			wantErr: true,
		},
		{
			name:    "verbose and quiet together",
			mutate:  func(c *Config) { c.UI.Verbose, c.UI.Quiet = true, true },
			wantErr: true,
		},
		{
			name:    "empty channels",
			mutate:  func(c *Config) { c.Channels = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
