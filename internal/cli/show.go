package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/domain"
	"github.com/mrz1836/tempo/internal/errors"
)

var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer for performance
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // sync.Once for renderer initialization
)

// getGlamourRenderer returns a cached glamour renderer for markdown rendering.
// The renderer is initialized once and reused across all calls.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// AddShowCommand adds the show command to the root command.
func AddShowCommand(root *cobra.Command) {
	root.AddCommand(newShowCmd())
}

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show full details of a task",
		Long: `Show full details of a task by id, including its lifecycle timestamps
and the work log once completed.

Examples:
  tempo show 42
  tempo show 42 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd, os.Stdout, args[0])
		},
	}

	return cmd
}

// runShow executes the show command.
func runShow(ctx context.Context, cmd *cobra.Command, w io.Writer, arg string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()

	id, err := parseTaskID(arg)
	if err != nil {
		return err
	}

	manager, err := newTaskManager(logger)
	if err != nil {
		return err
	}

	t, err := manager.Get(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: %d", errors.ErrTaskNotFound, id)
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, newTaskResult(t))
	}

	markdown := buildTaskMarkdown(t)
	if renderer := getGlamourRenderer(); renderer != nil {
		if rendered, renderErr := renderer.Render(markdown); renderErr == nil {
			_, _ = fmt.Fprint(w, rendered)
			return nil
		}
	}
	_, _ = fmt.Fprint(w, markdown)
	return nil
}

// buildTaskMarkdown renders a task's detail view as markdown.
func buildTaskMarkdown(t *domain.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# #%d %s\n\n", t.ID, t.Title)
	fmt.Fprintf(&b, "- **Status:** %s\n", t.Status)
	fmt.Fprintf(&b, "- **Date:** %s\n", t.ScheduledDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- **Scheduled:** %s\n", t.TimeRange())
	fmt.Fprintf(&b, "- **Planned duration:** %dm\n", t.PlannedDurationMinutes)

	if t.StartTime != nil {
		fmt.Fprintf(&b, "- **Started:** %s\n", t.StartTime.Format(time.RFC1123))
	}
	if t.EndTime != nil {
		fmt.Fprintf(&b, "- **Ended:** %s\n", t.EndTime.Format(time.RFC1123))
	}
	if actual, ok := t.ActualDuration(); ok {
		fmt.Fprintf(&b, "- **Actual duration:** %s\n", actual.Round(time.Second))
	}

	if t.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", t.Description)
	}
	if t.WorkLog != nil {
		fmt.Fprintf(&b, "\n## Work log\n\n%s\n", *t.WorkLog)
	}

	return b.String()
}
