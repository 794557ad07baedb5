// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/agentpack/agentpack/internal/logging"
	"github.com/agentpack/agentpack/internal/packager"
	"github.com/agentpack/agentpack/internal/plan"

	"github.com/spf13/cobra"
)

func newPlanCommand(app *App, f *rootFlags) *cobra.Command {
	var (
		format   string
		commands bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the resolved installation plan",
		Long: `Resolve the config file against the built-in core package table and print
the installation plan. Nothing is created, installed or downloaded.`,
		Example: `  agentpack plan --format yaml
  agentpack plan --commands`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), f)
			if err != nil {
				return app.fail(err, f.verbose)
			}

			pv, err := packager.BuildPreview(cfg, plan.DefaultDefaults())
			if err != nil {
				return app.fail(err, f.verbose)
			}

			if commands {
				for _, argv := range pv.Commands {
					fmt.Fprintln(app.stdout, logging.CommandLine(argv...))
				}
				return nil
			}

			out, err := pv.Plan.Encode(format)
			if err != nil {
				return app.fail(err, f.verbose)
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", plan.FormatJSON, "output format: "+strings.Join(plan.Formats(), ", "))
	cmd.Flags().BoolVar(&commands, "commands", false, "print the shell-quoted commands a run would execute instead")

	return cmd
}
