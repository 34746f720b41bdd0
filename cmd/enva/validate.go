// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"enva/internal/envmgr"
	"enva/pkg/types"

	"github.com/spf13/cobra"
)

var (
	validateAll bool

	validateCmd = &cobra.Command{
		Use:   "validate [environment]",
		Short: "Health-check managed environments",
		Long: `Check that an environment's installation prefix exists and that its
marker executables are present. Unhealthy environments are marked
invalid; recreate them with 'enva create --recreate'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "validate every tracked environment")
}

func runValidate(cmd *cobra.Command, args []string) error {
	mgr := manager()

	var names []string
	switch {
	case validateAll && len(args) > 0:
		return usageError("--all cannot be combined with an environment name")
	case validateAll:
		if _, err := mgr.EnsureReady(cmd.Context()); err != nil {
			return err
		}
		for _, env := range mgr.ListEnvironments() {
			if env.Status != envmgr.StatusNotCreated {
				names = append(names, env.Name)
			}
		}
	case len(args) == 1:
		names = args
	default:
		return usageError("name an environment or pass --all")
	}

	failed := false
	for _, name := range names {
		report, err := mgr.ValidateEnvironment(cmd.Context(), name)
		if err != nil {
			return err
		}
		switch {
		case report.DryRun && report.Valid:
			cmd.Println(WarningStyle.Render("dry-run ") + EnvStyle.Render(name))
		case report.Valid:
			cmd.Println(SuccessStyle.Render("valid   ") + EnvStyle.Render(name))
		default:
			failed = true
			cmd.Println(ErrorStyle.Render("invalid ") + EnvStyle.Render(name) + SubtitleStyle.Render("  "+report.Reason))
		}
	}
	if failed {
		return &ExitError{Code: types.ExitGeneral, Err: envmgr.ErrValidation}
	}
	return nil
}
