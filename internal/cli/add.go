package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/task"
)

// AddAddCommand adds the add command to the root command.
func AddAddCommand(root *cobra.Command) {
	root.AddCommand(newAddCmd())
}

// addFlags holds the flag values for the add command.
type addFlags struct {
	date        string
	at          string
	duration    int64
	color       string
	description string
}

// newAddCmd creates the add command.
func newAddCmd() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Plan a new block of focused work",
		Long: `Plan a new block of focused work on a given day.

The task starts in the planned state. While the daemon is running, an alarm
fires at the scheduled time and opens the focus lock automatically; without
the daemon the task can still be started by hand with 'tempo start'.

Examples:
  tempo add "Deep work" --at 09:00 --duration 50
  tempo add "Review PRs" --date tomorrow --at 14:30 --duration 25
  tempo add "Writing" --at 10:00 --duration 90 --color "#26A69A"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), cmd, os.Stdout, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.date, "date", "today", "day of the task (today|tomorrow|YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.at, "at", "", "start time of day (HH:MM)")
	cmd.Flags().Int64VarP(&flags.duration, "duration", "d", 25, "planned duration in minutes")
	cmd.Flags().StringVar(&flags.color, "color", "", "timeline block color (#RRGGBB)")
	cmd.Flags().StringVar(&flags.description, "desc", "", "optional description")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

// runAdd executes the add command.
func runAdd(ctx context.Context, cmd *cobra.Command, w io.Writer, title string, flags *addFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	now := time.Now()
	date, err := parseDate(flags.date, now)
	if err != nil {
		return err
	}
	minutes, err := parseClockTime(flags.at)
	if err != nil {
		return err
	}
	color, err := parseColor(flags.color)
	if err != nil {
		return err
	}

	manager, err := newTaskManager(logger)
	if err != nil {
		return err
	}

	created, err := manager.Create(ctx, task.CreateParams{
		Title:                title,
		Description:          flags.description,
		ScheduledDate:        date,
		ScheduledTimeMinutes: minutes,
		DurationMinutes:      flags.duration,
		Color:                color,
	})
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, newTaskResult(created))
	}

	_, _ = fmt.Fprintf(w, "Planned task #%d: %s %s (%dm)\n",
		created.ID, created.TimeRange(), created.Title, created.PlannedDurationMinutes)
	return nil
}
