package cli

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/harrisonrobin/dayplan/pkg/colors"
	"github.com/spf13/cobra"
)

func newScheduleCmd(a *app.App, color bool) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print today's plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := a.Schedule(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schedule)
			}

			if len(schedule) == 0 {
				fmt.Fprintln(out, "Nothing scheduled today.")
				return nil
			}
			now := a.Clock.Now()
			fmt.Fprintln(out, header("Schedule for "+now.Format("Mon Jan 2"), color))

			var palette *colors.ColorCache
			if color {
				if palette, err = colors.NewColorCache(a.Config.DataPath(colors.FileName)); err != nil {
					log.Printf("Warning: ignoring meeting color cache: %v", err)
					palette = nil
				}
			}
			writeSchedule(out, schedule, palette, now)
			if palette != nil {
				if err := palette.Save(); err != nil {
					log.Printf("Warning: failed to save meeting colors: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}
