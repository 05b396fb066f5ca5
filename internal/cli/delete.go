package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/errors"
)

// AddDeleteCommand adds the delete command to the root command.
func AddDeleteCommand(root *cobra.Command) {
	root.AddCommand(newDeleteCmd())
}

// newDeleteCmd creates the delete command.
func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task record entirely",
		Long: `Delete a task record from the store. Unlike abandon, nothing is kept;
the id is never reused.

Use --force to skip the confirmation prompt.

Examples:
  tempo delete 42
  tempo delete 42 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), cmd, os.Stdout, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

// runDelete executes the delete command.
func runDelete(ctx context.Context, cmd *cobra.Command, w io.Writer, arg string, force bool) error {
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
		var confirm bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete '%s'?", t.Title)).
					Description("The record is removed permanently.").
					Affirmative("Yes, delete").
					Negative("No, cancel").
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirm {
			_, _ = fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	if err := manager.Delete(ctx, id); err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, map[string]any{"status": "deleted", "id": id})
	}

	_, _ = fmt.Fprintf(w, "Deleted task #%d: %s\n", id, t.Title)
	return nil
}
