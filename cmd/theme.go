package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/dchat/internal/domain"
	"github.com/spf13/cobra"
)

func newThemeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.theme.Get(cmd.Context()).Label())
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pref, err := app.theme.Toggle(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrStorageUnavailable) {
				return err
			}
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", pref.Label())
			return err
		},
	})

	return cmd
}
