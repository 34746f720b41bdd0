// SPDX-License-Identifier: MPL-2.0

// Package config loads enva's configuration from the platform config
// directory and ENVA_* environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for config/data directory layout.
	AppName = "enva"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix is the prefix for environment variable overrides
	// (e.g. ENVA_PACKAGE_MANAGER, ENVA_DATA_DIR).
	EnvPrefix = "ENVA"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// UIConfig holds output-affecting settings. These change what is logged
	// or rendered, never what the manager does.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
		Quiet   bool `mapstructure:"quiet"`
		JSON    bool `mapstructure:"json"`
	}

	// Config is the resolved enva configuration.
	Config struct {
		// PackageManager forces a specific implementation (conda, mamba,
		// micromamba) instead of auto-detection. Empty means auto.
		PackageManager string `mapstructure:"package_manager"`
		// DataDir is where a downloaded micromamba binary is installed.
		DataDir string `mapstructure:"data_dir"`
		// SpecDir is where built-in environment spec templates are
		// materialized and user spec files are looked up.
		SpecDir string `mapstructure:"spec_dir"`
		// Channels are the default channels for package installs when the
		// spec does not carry its own.
		Channels []string `mapstructure:"channels"`
		// UI holds output settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a loaded configuration violates an
	// invariant. It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Reason)
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in defaults. Directory fields are resolved
// lazily by Load so that tests can override the base directories.
func DefaultConfig() *Config {
	return &Config{
		PackageManager: "",
		Channels:       []string{"conda-forge", "bioconda"},
		UI:             UIConfig{},
	}
}

// ConfigDir returns the enva configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application
// Support, and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DataDir returns the directory for downloaded binaries, following
// $XDG_DATA_HOME on Linux with a ~/.local/share fallback.
func DataDir() (string, error) {
	if dataDirOverride != "" {
		return dataDirOverride, nil
	}

	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// SpecDir returns the directory where environment spec files live, using the
// user cache directory with a temp-dir fallback.
func SpecDir() (string, error) {
	if specDirOverride != "" {
		return specDirOverride, nil
	}

	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName, "configs"), nil //nolint:nilerr // Temp dir is a valid fallback.
	}
	return filepath.Join(cache, AppName, "configs"), nil
}

// Load reads the configuration from the config file (if present) and ENVA_*
// environment variables, filling unset directory fields from the platform
// defaults. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("package_manager", defaults.PackageManager)
	v.SetDefault("channels", defaults.Channels)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.quiet", defaults.UI.Quiet)
	v.SetDefault("ui.json", defaults.UI.JSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
		if err := v.ReadInConfig(); err != nil {
			return nil, &InvalidConfigError{Reason: fmt.Sprintf("reading %s: %v", configFilePathOverride, err)}
		}
	} else {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, &InvalidConfigError{Reason: fmt.Sprintf("reading config in %s: %v", cfgDir, err)}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{Reason: fmt.Sprintf("unmarshaling config: %v", err)}
	}

	if cfg.DataDir == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	if cfg.SpecDir == "" {
		dir, err := SpecDir()
		if err != nil {
			return nil, err
		}
		cfg.SpecDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field invariants of the loaded configuration.
func (c *Config) Validate() error {
	switch c.PackageManager {
	case "", "conda", "mamba", "micromamba":
	default:
		return &InvalidConfigError{Reason: fmt.Sprintf(
			"package_manager %q is not one of conda, mamba, micromamba", c.PackageManager)}
	}
	if c.UI.Verbose && c.UI.Quiet {
		return &InvalidConfigError{Reason: "ui.verbose and ui.quiet are mutually exclusive"}
	}
	if len(c.Channels) == 0 {
		return &InvalidConfigError{Reason: "channels must not be empty"}
	}
	return nil
}
