// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// specFile is the YAML wire format of an environment file. Dependencies use
// conda's string syntax ("python=3.10"); the mapping form used by conda for
// pip sections is not supported here.
type specFile struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels"`
	Dependencies []string `yaml:"dependencies"`
}

// Parse decodes an environment spec from YAML bytes and validates it.
func Parse(data []byte) (*EnvironmentSpec, error) {
	var f specFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &InvalidSpecError{Reason: fmt.Sprintf("malformed YAML: %v", err)}
	}

	spec := &EnvironmentSpec{
		Name:     f.Name,
		Channels: f.Channels,
	}
	for _, dep := range f.Dependencies {
		req, err := ParseRequirement(dep)
		if err != nil {
			return nil, err
		}
		spec.Dependencies = append(spec.Dependencies, req)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// LoadFile reads and parses an environment spec from a YAML file.
func LoadFile(path string) (*EnvironmentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal renders the spec back to conda environment-file YAML. The output is
// what gets handed to the package manager's `env create -f`.
func Marshal(spec *EnvironmentSpec) ([]byte, error) {
	f := specFile{
		Name:     spec.Name,
		Channels: spec.Channels,
	}
	for _, dep := range spec.Dependencies {
		f.Dependencies = append(f.Dependencies, dep.String())
	}
	out, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("marshaling spec %s: %w", spec.Name, err)
	}
	return out, nil
}
