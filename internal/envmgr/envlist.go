// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// envListJSON is the wire shape of `<pm> env list --json`.
type envListJSON struct {
	Envs []string `json:"envs"`
}

// parseEnvList extracts environment install prefixes from `env list` output.
// JSON output is tried first; plain-text output (one prefix per line, with
// `#` comment lines and an optional name column) is the fallback, since
// older conda builds ignore --json on some subcommands.
func parseEnvList(output []byte) []string {
	var parsed envListJSON
	if err := json.Unmarshal(output, &parsed); err == nil {
		return parsed.Envs
	}

	var envs []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		// Either "/prefix" or "name  [*]  /prefix".
		candidate := fields[len(fields)-1]
		if filepath.IsAbs(candidate) {
			envs = append(envs, candidate)
		}
	}
	return envs
}

// envPathFor finds the install prefix whose final path element matches the
// environment name.
func envPathFor(name string, envs []string) (string, bool) {
	for _, env := range envs {
		if filepath.Base(env) == name {
			return env, true
		}
	}
	return "", false
}
