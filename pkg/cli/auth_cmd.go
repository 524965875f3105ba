package cli

import (
	"fmt"
	"log"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/google"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RemoveToken(); err != nil {
				return fmt.Errorf("could not delete token file %s: %w", auth.TokenPath(), err)
			}
			if err := auth.Authorize(cmd.Context(), google.Scopes, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			log.Printf("Authentication successful! Token saved to %s", auth.TokenPath())
			fmt.Fprintln(cmd.OutOrStdout(), "Set use_token = true under [google] in config.toml to use it.")
			return nil
		},
	}
}
