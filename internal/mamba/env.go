// SPDX-License-Identifier: MPL-2.0

package mamba

import (
	"os"
	"path/filepath"
	"strings"
)

// SubprocessEnv returns the environment for subprocesses spawned with this
// binary: the binary's directory is prepended to PATH and its sibling lib
// directory to LD_LIBRARY_PATH, so a downloaded micromamba finds its shared
// libraries. MAMBA_ROOT_PREFIX is deliberately left untouched so micromamba
// keeps its default base environment location.
func (b Binary) SubprocessEnv(base []string) []string {
	binDir := filepath.Dir(b.Path)
	libDir := filepath.Join(filepath.Dir(binDir), "lib")

	env := make([]string, 0, len(base)+2)
	var sawPath, sawLDPath bool
	for _, kv := range base {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			env = append(env, kv)
			continue
		}
		switch key {
		case "PATH":
			sawPath = true
			env = append(env, "PATH="+prependPathEntry(binDir, val))
		case "LD_LIBRARY_PATH":
			sawLDPath = true
			env = append(env, "LD_LIBRARY_PATH="+prependPathEntry(libDir, val))
		default:
			env = append(env, kv)
		}
	}
	if !sawPath {
		env = append(env, "PATH="+binDir)
	}
	if !sawLDPath {
		env = append(env, "LD_LIBRARY_PATH="+libDir)
	}
	return env
}

// prependPathEntry puts dir at the front of a PATH-style list, dropping
// duplicate occurrences of dir from the tail.
func prependPathEntry(dir, existing string) string {
	if existing == "" {
		return dir
	}
	var kept []string
	for _, entry := range strings.Split(existing, string(os.PathListSeparator)) {
		if entry != dir && entry != "" {
			kept = append(kept, entry)
		}
	}
	return strings.Join(append([]string{dir}, kept...), string(os.PathListSeparator))
}
