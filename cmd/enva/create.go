// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"enva/internal/catalog"
	"enva/internal/envmgr"
	"enva/internal/envspec"

	"github.com/spf13/cobra"
)

var (
	createAll       bool
	createCore      bool
	createR         bool
	createSnakemake bool
	createExtra     bool
	createName      string
	createFile      string
	createRecreate  bool

	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create managed environments",
		Long: `Create one or more managed environments.

Without selection flags all built-in environments are created. Built-in
spec templates are materialized into the spec directory first, so local
edits to a materialized file are picked up on the next create.`,
		RunE: runCreate,
	}
)

func init() {
	createCmd.Flags().BoolVar(&createAll, "all", false, "create all built-in environments")
	createCmd.Flags().BoolVar(&createCore, "core", false, "create "+catalog.EnvCore)
	createCmd.Flags().BoolVar(&createR, "r", false, "create "+catalog.EnvR)
	createCmd.Flags().BoolVar(&createSnakemake, "snakemake", false, "create "+catalog.EnvSnakemake)
	createCmd.Flags().BoolVar(&createExtra, "extra", false, "create "+catalog.EnvExtra)
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "create a single built-in environment by name")
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "create from an environment spec YAML file")
	createCmd.Flags().BoolVar(&createRecreate, "recreate", false, "remove and recreate environments that already exist")
}

// selectedSpecs resolves the create flags into the specs to install.
func selectedSpecs() ([]*envspec.EnvironmentSpec, error) {
	if createFile != "" {
		if createAll || createCore || createR || createSnakemake || createExtra || createName != "" {
			return nil, usageError("--file cannot be combined with environment selection flags")
		}
		spec, err := envspec.LoadFile(createFile)
		if err != nil {
			return nil, err
		}
		return []*envspec.EnvironmentSpec{spec}, nil
	}

	var names []string
	switch {
	case createName != "":
		if !envspec.IsBuiltin(createName) {
			return nil, usageError("unknown built-in environment %q (use --file for custom specs)", createName)
		}
		names = []string{createName}
	case createCore || createR || createSnakemake || createExtra:
		for _, sel := range []struct {
			on   bool
			name string
		}{
			{createCore, catalog.EnvCore},
			{createR, catalog.EnvR},
			{createSnakemake, catalog.EnvSnakemake},
			{createExtra, catalog.EnvExtra},
		} {
			if sel.on {
				names = append(names, sel.name)
			}
		}
	default: // --all, or no selection at all
		names = envspec.BuiltinNames()
	}

	specs := make([]*envspec.EnvironmentSpec, 0, len(names))
	for _, name := range names {
		// Materialize the template so users can edit it; load from the
		// materialized file so those edits take effect.
		path, err := envspec.Materialize(name, cfg.SpecDir)
		if err != nil {
			return nil, err
		}
		spec, err := envspec.LoadFile(path)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func runCreate(cmd *cobra.Command, _ []string) error {
	specs, err := selectedSpecs()
	if err != nil {
		return err
	}

	mgr := manager()
	for _, spec := range specs {
		res, err := mgr.CreateEnvironment(cmd.Context(), spec, envmgr.CreateOptions{
			Recreate: createRecreate,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", spec.Name, err)
		}

		switch {
		case res.DryRun:
			cmd.Println(WarningStyle.Render("dry-run ") + EnvStyle.Render(res.Name) + " would be created")
		case res.AlreadyExists:
			cmd.Println(SubtitleStyle.Render("exists  ") + EnvStyle.Render(res.Name) + SubtitleStyle.Render(" ("+res.InstallPath+")"))
		default:
			cmd.Println(SuccessStyle.Render("created ") + EnvStyle.Render(res.Name) + SubtitleStyle.Render(" ("+res.InstallPath+")"))
		}
	}
	return nil
}
