package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/api"
	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/harrisonrobin/dayplan/pkg/meetings"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/spf13/cobra"
)

func newMeetingsCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Manage today's meetings",
	}

	cmd.AddCommand(
		newMeetingsListCmd(a),
		newMeetingsAddCmd(a),
		newMeetingsUpcomingCmd(a),
	)

	return cmd
}

func newMeetingsListCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List today's meetings from every source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printMeetings(cmd, a.Meetings.LoadToday(cmd.Context()))
			return nil
		},
	}
}

func newMeetingsAddCmd(a *app.App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <HH:MM> <HH:MM> <label...>",
		Short: "Add a meeting to the local meetings file",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.AddMeeting(date, args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", meetings.FormatRecord(m))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")

	return cmd
}

func newMeetingsUpcomingCmd(a *app.App) *cobra.Command {
	var within time.Duration

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List meetings starting soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if within <= 0 {
				return fmt.Errorf("--within must be positive")
			}
			upcoming := a.Meetings.Upcoming(cmd.Context(), within)
			if len(upcoming) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No meetings in the next %s.\n", within)
				return nil
			}
			printMeetings(cmd, upcoming)
			return nil
		},
	}

	cmd.Flags().DurationVar(&within, "within", api.UpcomingWindow, "How far ahead to look")

	return cmd
}

func printMeetings(cmd *cobra.Command, ms []model.Meeting) {
	out := cmd.OutOrStdout()
	for _, m := range ms {
		e := model.Entry{Kind: model.KindMeeting, Start: m.Start, End: m.End, Label: m.Label}
		fmt.Fprintf(out, "%s (%s)\n", e.Line(), m.Source)
	}
}
