// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"enva/internal/catalog"
	"enva/internal/runner"
	"enva/pkg/types"

	"github.com/spf13/cobra"
)

var (
	runEnv       string
	runScript    string
	runEnvVars   []string
	runCwd       string
	runNoCapture bool

	runCmd = &cobra.Command{
		Use:   "run [-n <environment>] <command>... | --script <path> [args]...",
		Short: "Run a command inside a managed environment",
		Long: `Run a command inside a managed environment. When --name is omitted the
environment is inferred from the first word of the command via the tool
catalog (samtools -> ` + catalog.EnvCore + `, Rscript -> ` + catalog.EnvR + `, ...).

The command's exit code is passed through as enva's exit code.`,
		Args: cobra.ArbitraryArgs,
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runEnv, "name", "n", "", "target environment (default: inferred from the command)")
	runCmd.Flags().StringVar(&runScript, "script", "", "run a script file instead of a command line")
	runCmd.Flags().StringArrayVarP(&runEnvVars, "env", "E", nil, "extra KEY=VALUE environment variables (repeatable)")
	runCmd.Flags().StringVar(&runCwd, "cwd", "", "working directory for the command")
	runCmd.Flags().BoolVar(&runNoCapture, "no-capture", false, "stream output directly instead of capturing it")
}

// parseEnvVars converts repeated KEY=VALUE flags into a map.
func parseEnvVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, usageError("malformed --env value %q, expected KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

// inferEnvironment resolves the target environment from the command when
// --name was not given.
func inferEnvironment(script string, args []string) (string, error) {
	tool := script
	if tool == "" && len(args) > 0 {
		tool = args[0]
	}
	if env, ok := catalog.EnvironmentFor(tool); ok {
		return env, nil
	}
	return "", usageError("cannot infer an environment for %q, pass --name", tool)
}

func runRun(cmd *cobra.Command, args []string) error {
	envVars, err := parseEnvVars(runEnvVars)
	if err != nil {
		return err
	}

	env := runEnv
	if env == "" {
		if env, err = inferEnvironment(runScript, args); err != nil {
			return err
		}
	}

	req := &runner.ExecutionRequest{
		EnvName: env,
		Env:     envVars,
		WorkDir: runCwd,
		Capture: !runNoCapture,
	}
	if runScript != "" {
		req.Script = runScript
		req.Args = args
	} else {
		req.Command = strings.Join(args, " ")
	}

	mgr := manager()
	if _, err := mgr.EnsureReady(cmd.Context()); err != nil {
		return err
	}

	r := runner.New(mgr, runner.WithDryRun(dryRun))
	res, err := r.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}

	if req.Capture {
		if res.Stdout != "" {
			cmd.Print(res.Stdout)
		}
		if res.Stderr != "" {
			cmd.PrintErr(res.Stderr)
		}
	}
	if res.ExitCode != types.ExitOK {
		// Pass the child's exit code through.
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}
