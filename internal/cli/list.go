package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/tui"
)

// AddListCommand adds the list command to the root command.
func AddListCommand(root *cobra.Command) {
	root.AddCommand(newListCmd())
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the timeline for a day",
		Long: `Show the tasks scheduled on a day, ordered by start time.

Each row shows the scheduled window, status, title, and a colored block
sized to the planned duration.

Examples:
  tempo list
  tempo list --date tomorrow
  tempo list --date 2026-09-01 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, os.Stdout, date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "today", "day to list (today|tomorrow|YYYY-MM-DD)")

	return cmd
}

// runList executes the list command.
func runList(ctx context.Context, cmd *cobra.Command, w io.Writer, date string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	day, err := parseDate(date, time.Now())
	if err != nil {
		return err
	}

	manager, err := newTaskManager(logger)
	if err != nil {
		return err
	}

	tasks, err := manager.ListDay(ctx, day)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		results := make([]taskResult, 0, len(tasks))
		for _, t := range tasks {
			results = append(results, newTaskResult(t))
		}
		return outputJSON(w, results)
	}

	_, _ = fmt.Fprintf(w, "%s\n\n", tui.StyleBold.Render(day.Format("Monday, 2 January 2006")))
	_, _ = fmt.Fprint(w, tui.RenderTimeline(tasks))
	return nil
}
