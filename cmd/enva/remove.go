// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <environment>",
	Short: "Remove a managed environment",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	mgr := manager()
	if _, err := mgr.EnsureReady(cmd.Context()); err != nil {
		return err
	}
	if err := mgr.RemoveEnvironment(cmd.Context(), name); err != nil {
		return err
	}
	if dryRun {
		cmd.Println(WarningStyle.Render("dry-run ") + EnvStyle.Render(name) + " would be removed")
		return nil
	}
	cmd.Println(SuccessStyle.Render("removed ") + EnvStyle.Render(name))
	return nil
}
