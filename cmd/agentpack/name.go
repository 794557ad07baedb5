// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/agentpack/agentpack/internal/packager"

	"github.com/spf13/cobra"
)

func newNameCommand(app *App, f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:           "name",
		Short:         "Print the archive path a run would produce",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), f)
			if err != nil {
				return app.fail(err, f.verbose)
			}
			fmt.Fprintln(app.stdout, packager.ArchivePath(cfg))
			return nil
		},
	}
}
