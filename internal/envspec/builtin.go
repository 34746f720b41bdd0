// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed templates/*.yaml
var templates embed.FS

// ErrUnknownEnvironment is returned when a name does not match any built-in
// environment template.
var ErrUnknownEnvironment = errors.New("unknown built-in environment")

// BuiltinNames returns the names of the built-in catalog environments in
// lexical order.
func BuiltinNames() []string {
	entries, err := templates.ReadDir("templates")
	if err != nil {
		// The embedded FS is baked into the binary; a read failure here is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("reading embedded templates: %v", err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Builtin returns the parsed spec for a built-in catalog environment.
// Returns ErrUnknownEnvironment if name is not part of the catalog.
func Builtin(name string) (*EnvironmentSpec, error) {
	data, err := templates.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return Parse(data)
}

// IsBuiltin reports whether name is one of the built-in catalog environments.
func IsBuiltin(name string) bool {
	_, err := templates.ReadFile("templates/" + name + ".yaml")
	return err == nil
}

// Materialize writes the built-in template for name into dir as <name>.yaml
// and returns the file path. Existing files are left untouched so user edits
// survive re-runs.
func Materialize(name, dir string) (string, error) {
	data, err := templates.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating spec dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".yaml")
	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing spec file %s: %w", path, err)
	}
	return path, nil
}
