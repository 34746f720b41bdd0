// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `name: test-env
channels:
  - conda-forge
dependencies:
  - python=3.10
  - numpy
`

func TestParse(t *testing.T) {
	t.Parallel()

	spec, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if spec.Name != "test-env" {
		t.Errorf("Name = %q, want %q", spec.Name, "test-env")
	}
	if len(spec.Channels) != 1 || spec.Channels[0] != "conda-forge" {
		t.Errorf("Channels = %v, want [conda-forge]", spec.Channels)
	}
	if len(spec.Dependencies) != 2 {
		t.Fatalf("len(Dependencies) = %d, want 2", len(spec.Dependencies))
	}
	if spec.Dependencies[0] != (PackageRequirement{Name: "python", Version: "3.10"}) {
		t.Errorf("Dependencies[0] = %+v", spec.Dependencies[0])
	}
}

func TestParseMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("name: [unclosed"))
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Parse() error = %v, want ErrInvalidSpec", err)
	}
}

func TestParseMissingChannels(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("name: test-env\ndependencies:\n  - numpy\n"))
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Parse() error = %v, want ErrInvalidSpec", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test-env.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if spec.Name != "test-env" {
		t.Errorf("Name = %q, want %q", spec.Name, "test-env")
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadFile() on missing file succeeded, want error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	spec, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	out, err := Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error: %v", err)
	}
	if again.Name != spec.Name || len(again.Dependencies) != len(spec.Dependencies) {
		t.Errorf("round trip mismatch: %+v vs %+v", again, spec)
	}
}
