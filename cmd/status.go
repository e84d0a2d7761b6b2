package cmd

import (
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/dchat/internal/adapters/render/status"
	"github.com/bnema/dchat/internal/application"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the current user and remaining daily quota",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.chat.GetStatus(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			pref := app.theme.Get(cmd.Context())
			status.Theme = pref.Label()

			return writeStatusOutput(cmd, app, status, pref.IsDark, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, status application.Status, dark bool, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	rendered := app.statusRenderer(status, statusadapter.RenderOptions{
		Now:  app.now(),
		Dark: dark,
	})

	_, err := fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
