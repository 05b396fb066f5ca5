package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/config"
	"github.com/mrz1836/tempo/internal/domain"
	"github.com/mrz1836/tempo/internal/errors"
	"github.com/mrz1836/tempo/internal/lock"
	"github.com/mrz1836/tempo/internal/signal"
	"github.com/mrz1836/tempo/internal/tui"
)

// AddStartCommand adds the start command to the root command.
func AddStartCommand(root *cobra.Command) {
	root.AddCommand(newStartCmd())
}

// newStartCmd creates the start command.
func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a focus session for a planned task now",
		Long: `Start a focus session for a planned task immediately, without waiting
for its alarm. The terminal becomes the lock surface for the planned
duration; press 'e' (or Ctrl+C) to end the session early.

When the session ends, a form asks for the work log and the task
completes. Skipping the form leaves the task in progress; finish later
with 'tempo complete'.

Examples:
  tempo start 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), cmd, os.Stdout, args[0])
		},
	}

	return cmd
}

// runStart executes the start command: a one-off foreground focus session in
// this process, using the same session controller the daemon uses.
func runStart(ctx context.Context, cmd *cobra.Command, w io.Writer, arg string) error {
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

	tempoHome, err := getTempoHome()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, tempoHome)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
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

	// The surface's end-focus key reaches the controller through this
	// indirection; both need the other at construction time.
	var controller *lock.Controller
	surface := newSurface(cfg.Session.Surface, func() {
		if controller != nil {
			controller.Stop()
		}
	})

	guard := lock.NewTimedGuard(logger)
	controller = lock.NewController(manager, surface, guard, clock.RealClock{}, logger,
		lock.WithTick(cfg.Session.TickInterval))

	h := signal.NewHandler(ctx)
	defer h.Stop()
	go func() {
		<-h.Interrupted()
		controller.Stop()
	}()

	payload := domain.TriggerPayload{
		TaskID:          t.ID,
		Title:           t.Title,
		DurationMinutes: t.PlannedDurationMinutes,
	}
	if err := controller.StartSession(ctx, payload); err != nil {
		return err
	}

	event := <-controller.Events()
	logger.Info().
		Str("session_id", event.SessionID).
		Str("reason", event.Reason.String()).
		Msg("focus session ended")

	workLog, err := promptWorkLog(t.Title)
	if err != nil {
		_, _ = fmt.Fprintf(w, "Task #%d is still in progress; finish with 'tempo complete %d'.\n", id, id)
		return nil //nolint:nilerr // an aborted form is a deferral, not a failure
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

// newSurface selects the lock surface implementation for the configured name.
func newSurface(name string, requestStop func()) lock.Surface {
	if name == config.SurfaceNone {
		return lock.NoopSurface{}
	}
	return tui.NewLockScreen(requestStop)
}
