// SPDX-License-Identifier: MPL-2.0

package envmgr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"enva/internal/mamba"
)

// execFunc runs the package manager binary with args and returns its
// combined output and exit code. err is non-nil only when the process could
// not be spawned or was torn down by context cancellation, never for a
// plain non-zero exit.
type execFunc func(ctx context.Context, bin mamba.Binary, args ...string) (output string, exitCode int, err error)

// runPM is the production execFunc. The child runs in its own process group
// so cancellation kills the whole solver/downloader tree, not just the
// top-level process.
func runPM(ctx context.Context, bin mamba.Binary, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, bin.Path, args...)
	cmd.Env = bin.SubprocessEnv(os.Environ())
	setProcessGroup(cmd)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	slog.Debug("running package manager", "binary", bin.Path, "args", args)
	err := cmd.Run()
	output := buf.String()
	if err == nil {
		return output, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return output, exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return output, -1, ctx.Err()
	}
	return output, -1, err
}
