// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for enva.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"enva/internal/config"
	"enva/internal/envmgr"
	"enva/internal/envspec"
	"enva/internal/mamba"
	"enva/internal/runner"
	"enva/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug-level logging
	verbose bool
	// quiet suppresses everything below warnings
	quiet bool
	// dryRun reports what would happen without executing anything
	dryRun bool
	// jsonOut switches machine-readable output
	jsonOut bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, available to all subcommands.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "enva",
		Short: "Managed package environments for bioinformatics workflows",
		Long: TitleStyle.Render("enva") + SubtitleStyle.Render(" - managed package environments for bioinformatics workflows") + `

enva creates and maintains isolated conda-style environments for the
tools a workflow needs, driving whichever package manager is available
(conda, mamba, or micromamba - downloaded automatically when none is
installed).

` + SubtitleStyle.Render("Quick Start:") + `
  1. enva create                Install the built-in environments
  2. enva list                  See what is installed
  3. enva run -n <env> <cmd>    Run a command inside an environment

` + SubtitleStyle.Render("Examples:") + `
  enva create --core            Create just the core environment
  enva create --file my.yaml    Create a custom environment from a spec
  enva run samtools view a.bam  Run a tool (environment inferred)
  enva install -n xdxtools-extra scanpy
  enva validate --all           Health-check every environment`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report what would happen without doing it")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/enva/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(removeCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// exitCodeFor maps an error to the exit code taxonomy: explicit ExitError
// wins, then config problems (3), then network problems (4), then the
// general failure code.
func exitCodeFor(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var configErr *envmgr.ConfigError
	switch {
	case errors.As(err, &configErr),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, envspec.ErrInvalidSpec),
		errors.Is(err, envspec.ErrUnknownEnvironment):
		return types.ExitConfig
	case errors.Is(err, mamba.ErrDownloadFailed):
		return types.ExitNetwork
	case errors.Is(err, runner.ErrInvalidRequest):
		return types.ExitUsage
	}

	var instErr *envmgr.InstallationError
	if errors.As(err, &instErr) {
		switch instErr.Kind {
		case envmgr.FailureNetwork:
			return types.ExitNetwork
		case envmgr.FailureConfig:
			return types.ExitConfig
		}
	}
	return types.ExitGeneral
}

// initRootConfig reads in config file and ENV variables if set, then wires
// slog to a charmbracelet handler at the requested level.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	// Flags win over config file settings.
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if !quiet {
		quiet = cfg.UI.Quiet
	}
	if !jsonOut {
		jsonOut = cfg.UI.JSON
	}

	level := log.InfoLevel
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	slog.SetDefault(slog.New(handler))
}

// manager returns the process-wide environment manager.
func manager() *envmgr.Manager {
	return envmgr.Default(cfg, envmgr.WithDryRun(dryRun))
}

// usageError wraps a message in an ExitError carrying the usage exit code.
func usageError(format string, args ...any) error {
	return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf(format, args...)}
}
