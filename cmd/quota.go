package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuotaCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Manage the daily message quota",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Refill today's quota now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.chat.ResetQuota(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Quota reset: %d/%d messages left\n", user.RemainingUsage, user.QuotaTotal)
			return err
		},
	})

	return cmd
}
