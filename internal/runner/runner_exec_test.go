// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enva/internal/envmgr"
	"enva/internal/mamba"
)

// fakePMScript writes a shell script standing in for the package manager.
// It expects `run -n <env> bash -c <cmdline>` and executes the command line
// with /bin/sh, passing the exit code through.
func fakePMScript(t *testing.T) mamba.Binary {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bin", "micromamba")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	script := `#!/bin/sh
# $1=run $2=-n $3=<env> $4=bash $5=-c $6=<cmdline>
if [ "$1" != "run" ] || [ "$2" != "-n" ] || [ "$4" != "bash" ] || [ "$5" != "-c" ]; then
	echo "unexpected args: $*" >&2
	exit 99
fi
exec /bin/sh -c "$6"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return mamba.Binary{Flavor: mamba.FlavorMicromamba, Path: path}
}

func readyManager(t *testing.T) *stubManager {
	t.Helper()
	return &stubManager{
		rec: envmgr.ManagedEnvironment{Name: "demo", Status: envmgr.StatusReady},
		bin: fakePMScript(t),
	}
}

func TestExecuteCapturesOutput(t *testing.T) {
	t.Parallel()

	r := New(readyManager(t))
	res, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Command: "echo out; echo err >&2",
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("Stdout = %q, want out", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("Stderr = %q, want err", res.Stderr)
	}
	if res.Duration <= 0 {
		t.Error("Duration not measured")
	}
}

func TestExecuteNonZeroExitIsAResult(t *testing.T) {
	t.Parallel()

	r := New(readyManager(t))
	res, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Command: "exit 7",
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", res.ExitCode)
	}
}

func TestExecuteAppliesEnvOverrides(t *testing.T) {
	// No t.Parallel: t.Setenv does not allow it.
	t.Setenv("RUNNER_TEST_VAR", "inherited")
	r := New(readyManager(t))
	res, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Command: "echo $RUNNER_TEST_VAR",
		Env:     map[string]string{"RUNNER_TEST_VAR": "override"},
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "override" {
		t.Errorf("Stdout = %q, want override", res.Stdout)
	}
}

func TestExecuteSetsWorkDir(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := New(readyManager(t))
	res, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Command: "pwd",
		WorkDir: dir,
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != dir {
		t.Errorf("Stdout = %q, want %q", res.Stdout, dir)
	}
}

func TestExecuteRunsQuotedScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "my analysis.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho \"got:$1\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New(readyManager(t))
	res, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Script:  script,
		Args:    []string{"sample 1"},
		Capture: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "got:sample 1" {
		t.Errorf("Stdout = %q, want got:sample 1", res.Stdout)
	}
}

func TestExecuteSpawnFailure(t *testing.T) {
	t.Parallel()

	mgr := &stubManager{
		rec: envmgr.ManagedEnvironment{Name: "demo", Status: envmgr.StatusReady},
		bin: mamba.Binary{Flavor: mamba.FlavorMicromamba, Path: "/nonexistent/micromamba"},
	}
	r := New(mgr)
	_, err := r.Execute(context.Background(), &ExecutionRequest{
		EnvName: "demo",
		Command: "true",
		Capture: true,
	})
	if !errors.Is(err, envmgr.ErrCommandExecution) {
		t.Errorf("Execute() error = %v, want ErrCommandExecution", err)
	}
}
