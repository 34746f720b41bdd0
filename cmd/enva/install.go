// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	installEnv string

	installCmd = &cobra.Command{
		Use:   "install -n <environment> <package>...",
		Short: "Install additional packages into an environment",
		Long: `Install packages into an existing environment using the configured
channels. Version constraints use the conda form, e.g. numpy=1.26.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstall,
	}
)

func init() {
	installCmd.Flags().StringVarP(&installEnv, "name", "n", "", "target environment")
	_ = installCmd.MarkFlagRequired("name")
}

func runInstall(cmd *cobra.Command, args []string) error {
	mgr := manager()
	if err := mgr.InstallPackages(cmd.Context(), installEnv, args); err != nil {
		return err
	}
	if dryRun {
		cmd.Println(WarningStyle.Render("dry-run ") + "would install " + strings.Join(args, ", ") + " into " + EnvStyle.Render(installEnv))
		return nil
	}
	cmd.Println(SuccessStyle.Render("installed ") + strings.Join(args, ", ") + " into " + EnvStyle.Render(installEnv))
	return nil
}
