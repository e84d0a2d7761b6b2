package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session as the given user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.chat.Login(cmd.Context(), name)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d/%d messages left today)\n", user.Name, user.RemainingUsage, user.QuotaTotal)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.chat.Logout(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return err
		},
	}
}
