package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/errors"
)

// AddAbandonCommand adds the abandon command to the root command.
func AddAbandonCommand(root *cobra.Command) {
	root.AddCommand(newAbandonCmd())
}

// newAbandonCmd creates the abandon command.
func newAbandonCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "abandon <id>",
		Short: "Abandon a planned or in-progress task",
		Long: `Abandon a task that will not be worked on. Nothing abandons a task
automatically; a block whose time passed untouched simply stays planned
until you decide.

Use --force to skip the confirmation prompt.

Examples:
  tempo abandon 42           # Abandon with confirmation
  tempo abandon 42 --force   # Abandon without confirmation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAbandon(cmd.Context(), cmd, os.Stdout, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

// runAbandon executes the abandon command.
func runAbandon(ctx context.Context, cmd *cobra.Command, w io.Writer, arg string, force bool) error {
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

	if !force {
		confirmed, confirmErr := confirmAbandon(t.Title, t.Status == constants.TaskStatusInProgress)
		if confirmErr != nil {
			return confirmErr
		}
		if !confirmed {
			_, _ = fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	abandoned, err := manager.Abandon(ctx, t)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, newTaskResult(abandoned))
	}

	_, _ = fmt.Fprintf(w, "Abandoned task #%d: %s\n", abandoned.ID, abandoned.Title)
	return nil
}

// createAbandonConfirmForm is the default factory for creating abandon confirmation forms.
// This variable can be overridden in tests to inject mock forms.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createAbandonConfirmForm = defaultCreateAbandonConfirmForm

// defaultCreateAbandonConfirmForm creates the Charm Huh form for abandon confirmation.
func defaultCreateAbandonConfirmForm(title string, inProgress bool, confirm *bool) formRunner {
	description := "The task keeps its record but leaves the active timeline."
	if inProgress {
		description = "⚠️  The task is in progress; its focus session will not complete.\n\n" + description
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Abandon '%s'?", title)).
				Description(description).
				Affirmative("Yes, abandon").
				Negative("No, cancel").
				Value(confirm),
		),
	)
}

// confirmAbandon prompts the user for confirmation before abandoning a task.
func confirmAbandon(title string, inProgress bool) (bool, error) {
	var confirm bool
	form := createAbandonConfirmForm(title, inProgress, &confirm)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirm, nil
}
