// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestSubprocessEnv(t *testing.T) {
	t.Parallel()

	bin := Binary{
		Flavor: FlavorMicromamba,
		Path:   filepath.Join("/data", "bin", "micromamba"),
	}
	binDir := filepath.Join("/data", "bin")
	libDir := filepath.Join("/data", "lib")

	env := bin.SubprocessEnv([]string{
		"HOME=/home/u",
		"PATH=/usr/bin:/bin",
		"LD_LIBRARY_PATH=/usr/lib",
	})

	if !slices.Contains(env, "HOME=/home/u") {
		t.Error("unrelated variable was dropped")
	}
	wantPath := "PATH=" + binDir + string(filepath.ListSeparator) + "/usr/bin" +
		string(filepath.ListSeparator) + "/bin"
	if !slices.Contains(env, wantPath) {
		t.Errorf("env = %v, missing %q", env, wantPath)
	}
	wantLD := "LD_LIBRARY_PATH=" + libDir + string(filepath.ListSeparator) + "/usr/lib"
	if !slices.Contains(env, wantLD) {
		t.Errorf("env = %v, missing %q", env, wantLD)
	}
}

func TestSubprocessEnvAddsMissingVariables(t *testing.T) {
	t.Parallel()

	bin := Binary{Flavor: FlavorMicromamba, Path: filepath.Join("/data", "bin", "micromamba")}
	env := bin.SubprocessEnv([]string{"HOME=/home/u"})

	var sawPath, sawLD bool
	for _, kv := range env {
		sawPath = sawPath || strings.HasPrefix(kv, "PATH=")
		sawLD = sawLD || strings.HasPrefix(kv, "LD_LIBRARY_PATH=")
	}
	if !sawPath || !sawLD {
		t.Errorf("env = %v, missing PATH or LD_LIBRARY_PATH", env)
	}
}

func TestSubprocessEnvDeduplicatesBinDir(t *testing.T) {
	t.Parallel()

	binDir := filepath.Join("/data", "bin")
	bin := Binary{Flavor: FlavorMicromamba, Path: filepath.Join(binDir, "micromamba")}
	env := bin.SubprocessEnv([]string{"PATH=/usr/bin" + string(filepath.ListSeparator) + binDir})

	want := "PATH=" + binDir + string(filepath.ListSeparator) + "/usr/bin"
	if !slices.Contains(env, want) {
		t.Errorf("env = %v, want %q", env, want)
	}
}
