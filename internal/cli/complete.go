package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/errors"
)

// AddCompleteCommand adds the complete command to the root command.
func AddCompleteCommand(root *cobra.Command) {
	root.AddCommand(newCompleteCmd())
}

// newCompleteCmd creates the complete command.
func newCompleteCmd() *cobra.Command {
	var workLog string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete an in-progress task with a work log",
		Long: `Complete an in-progress task by recording what was done.

Without --log, an interactive form asks for the work-log entry. The entry
must be non-empty; completion is the only transition that records one.

Examples:
  tempo complete 42
  tempo complete 42 --log "Drafted the design doc"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd.Context(), cmd, os.Stdout, args[0], workLog)
		},
	}

	cmd.Flags().StringVarP(&workLog, "log", "l", "", "work-log entry (skips the interactive form)")

	return cmd
}

// runComplete executes the complete command.
func runComplete(ctx context.Context, cmd *cobra.Command, w io.Writer, arg, workLog string) error {
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

	if workLog == "" {
		workLog, err = promptWorkLog(t.Title)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(workLog) == "" {
		return fmt.Errorf("%w: work log cannot be blank", errors.ErrValidation)
	}

	completed, err := manager.Complete(ctx, t, workLog)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, newTaskResult(completed))
	}

	_, _ = fmt.Fprintf(w, "Completed task #%d: %s\n", completed.ID, completed.Title)
	return nil
}
