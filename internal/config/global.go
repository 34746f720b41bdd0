// SPDX-License-Identifier: MPL-2.0

package config

// Overrides below exist because os.UserHomeDir() and friends don't reliably
// respect the HOME environment variable on all platforms (e.g., macOS in CI).

var (
	// configDirOverride allows tests to override the config directory.
	configDirOverride string
	// dataDirOverride allows tests to override the data directory.
	dataDirOverride string
	// specDirOverride allows tests to override the spec directory.
	specDirOverride string
	// configFilePathOverride pins Load to a specific config file (--config flag).
	configFilePathOverride string
)

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	dataDirOverride = ""
	specDirOverride = ""
	configFilePathOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetDataDirOverride sets a custom data directory path.
func SetDataDirOverride(dir string) {
	dataDirOverride = dir
}

// SetSpecDirOverride sets a custom spec directory path.
func SetSpecDirOverride(dir string) {
	specDirOverride = dir
}

// SetConfigFilePathOverride pins loading to a specific config file.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}
