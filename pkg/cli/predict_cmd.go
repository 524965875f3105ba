package cli

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/spf13/cobra"
)

func newPredictCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <description...>",
		Short: "Show the predicted duration of a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.Predict(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f min (%d samples)\n", p.Task, p.Minutes, p.Samples)
			return nil
		},
	}
}
