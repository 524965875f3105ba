package cli

import (
	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "dayplan" command and registers all
// subcommands against the provided App. color enables styled output.
func NewRootCmd(a *app.App, color bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "dayplan",
		Short:         "Plan today around your meetings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newScheduleCmd(a, color),
		newMeetingsCmd(a),
		newTasksCmd(a),
		newPredictCmd(a),
		newServeCmd(a),
		newAuthCmd(),
	)

	return root
}
