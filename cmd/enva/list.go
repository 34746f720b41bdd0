// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"time"

	"enva/internal/envmgr"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed environments and their status",
	RunE:  runList,
}

// envJSON is the machine-readable shape of one environment.
type envJSON struct {
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	InstallPath     string     `json:"install_path,omitempty"`
	FailureKind     string     `json:"failure_kind,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	LastValidatedAt *time.Time `json:"last_validated_at,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
	mgr := manager()
	if _, err := mgr.EnsureReady(cmd.Context()); err != nil {
		return err
	}
	envs := mgr.ListEnvironments()

	if jsonOut {
		return renderListJSON(cmd, envs)
	}
	renderListTable(cmd, envs)
	return nil
}

func renderListJSON(cmd *cobra.Command, envs []envmgr.ManagedEnvironment) error {
	out := make([]envJSON, 0, len(envs))
	for _, env := range envs {
		row := envJSON{
			Name:          env.Name,
			Status:        env.Status.String(),
			InstallPath:   env.InstallPath,
			FailureKind:   env.FailureKind.String(),
			FailureReason: env.FailureReason,
		}
		if !env.LastValidatedAt.IsZero() {
			at := env.LastValidatedAt
			row.LastValidatedAt = &at
		}
		out = append(out, row)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderListTable(cmd *cobra.Command, envs []envmgr.ManagedEnvironment) {
	cmd.Println(TitleStyle.Render("Environments"))
	for _, env := range envs {
		line := "  " + EnvStyle.Render(padName(env.Name)) + " " +
			statusStyle(env.Status.String()).Render(env.Status.String())
		if env.InstallPath != "" {
			line += SubtitleStyle.Render("  " + env.InstallPath)
		}
		if env.FailureReason != "" {
			line += ErrorStyle.Render("  " + env.FailureReason)
		}
		cmd.Println(line)
	}
}

// padName left-aligns names into a fixed column. The catalog names are the
// longest common case.
func padName(name string) string {
	const width = 20
	for len(name) < width {
		name += " "
	}
	return name
}
