package cli

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/spf13/cobra"
)

func newTasksCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the task list",
	}

	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksAddCmd(a),
		newTasksStartCmd(a),
		newTasksCompleteCmd(a),
	)

	return cmd
}

func newTasksListCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending tasks from the configured source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := a.Tasks.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending tasks.")
				return nil
			}
			for i, t := range pending {
				if t.Estimate > 0 {
					fmt.Fprintf(out, "%d. %s (est %s)\n", i+1, t.Description, t.Estimate)
					continue
				}
				fmt.Fprintf(out, "%d. %s\n", i+1, t.Description)
			}
			return nil
		},
	}
}

func newTasksAddCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description...>",
		Short: "Append a task to tasks.txt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.Join(args, " ")
			if err := a.List.Add(desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task: %s\n", desc)
			return nil
		},
	}
}

func newTasksStartCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <description...>",
		Short: "Start timing a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.Join(args, " ")
			if err := a.StartTask(desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s at %s\n", desc, a.Clock.Now().Format("15:04"))
			return nil
		},
	}
}

func newTasksCompleteCmd(a *app.App) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "complete <description...>",
		Short: "Mark a task done and record how long it took",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("minutes") && minutes <= 0 {
				return fmt.Errorf("--minutes must be positive, got %d", minutes)
			}
			c, err := a.CompleteTask(cmd.Context(), strings.Join(args, " "), minutes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.Recorded {
				fmt.Fprintf(out, "Task completed: %s (%d min)\n", c.Task, c.Minutes)
			} else {
				fmt.Fprintf(out, "Task completed: %s (no duration recorded)\n", c.Task)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 0, "Time spent in minutes (default: time since start)")

	return cmd
}
