package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mrz1836/tempo/internal/alarm"
	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/config"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
	"github.com/mrz1836/tempo/internal/lock"
	"github.com/mrz1836/tempo/internal/signal"
	"github.com/mrz1836/tempo/internal/task"
)

// AddDaemonCommand adds the daemon command to the root command.
func AddDaemonCommand(root *cobra.Command) {
	root.AddCommand(newDaemonCmd())
}

// newDaemonCmd creates the daemon command.
func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the alarm daemon",
		Long: `Run the long-lived process that fires alarms and opens focus locks.

On startup every planned task scheduled today or later gets its alarm
re-registered, so a restart never loses pending alarms. The daemon then
re-sweeps periodically to pick up tasks added from other terminals.

When an alarm fires, the terminal running the daemon becomes the lock
surface for the task's planned duration. SIGINT/SIGTERM ends any active
session and shuts down cleanly.

Examples:
  tempo daemon
  TEMPO_SESSION_SURFACE=none tempo daemon   # headless, alerts only`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), os.Stdout)
		},
	}

	return cmd
}

// daemon bundles the wired subsystems of one daemon process.
type daemon struct {
	cfg        *config.Config
	manager    *task.Manager
	controller *lock.Controller
	scheduler  *alarm.Scheduler
	wakeup     *alarm.TimerWakeup
	log        zerolog.Logger
	out        io.Writer
}

// runDaemon wires the subsystems and runs the daemon loops until interrupted.
func runDaemon(ctx context.Context, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()

	tempoHome, err := getTempoHome()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, tempoHome)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}

	store, err := task.NewFileStore(tempoHome)
	if err != nil {
		return err
	}
	manager := task.NewManager(store, clock.RealClock{}, logger)

	notifier := alarm.NewNotifier(alarm.NotifierConfig{
		BellEnabled: cfg.Notifications.BellEnabled,
		Quiet:       cfg.Notifications.Quiet,
	}, logger)
	// Two distinct wake holds: the session guard spans the whole countdown,
	// while the handoff guard only bridges trigger delivery to session start.
	// Sharing one renew-not-stack guard would let the handler's release drop
	// the session's hold the moment StartSession returns.
	sessionGuard := lock.NewTimedGuard(logger)
	handoffGuard := lock.NewTimedGuard(logger)

	// The surface's end-focus key reaches the controller through this
	// indirection; both need the other at construction time.
	var controller *lock.Controller
	surface := newSurface(cfg.Session.Surface, func() {
		if controller != nil {
			controller.Stop()
		}
	})
	controller = lock.NewController(manager, surface, sessionGuard, clock.RealClock{}, logger,
		lock.WithTick(cfg.Session.TickInterval),
		lock.WithAlertClearer(notifier))

	handler := alarm.NewTriggerHandler(controller, handoffGuard, notifier, logger)

	h := signal.NewHandler(ctx)
	defer h.Stop()
	runCtx := h.Context()

	// Fired wake-ups run on timer goroutines; the handler does its own
	// error containment, so delivery is a direct call.
	wakeup := alarm.NewTimerWakeup(func(payload domain.TriggerPayload) {
		handler.HandleTrigger(runCtx, payload)
	}, cfg.Scheduler.ExactAlarms, logger)
	defer wakeup.Close()

	scheduler := alarm.NewScheduler(wakeup, store, clock.RealClock{}, logger)

	d := &daemon{
		cfg:        cfg,
		manager:    manager,
		controller: controller,
		scheduler:  scheduler,
		wakeup:     wakeup,
		log:        logger.With().Str("component", "daemon").Logger(),
		out:        w,
	}

	d.bootSweep(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return d.refreshLoop(gctx) })
	g.Go(func() error { return d.consumeSessionEvents(gctx) })
	g.Go(func() error {
		// First signal ends the active session; teardown follows from the
		// cancelled group context.
		select {
		case <-h.Interrupted():
			d.log.Info().Msg("interrupt received, shutting down")
			controller.Stop()
		case <-gctx.Done():
		}
		return nil
	})

	_, _ = fmt.Fprintf(w, "tempo daemon running (%d alarms pending)\n", wakeup.Pending())
	return g.Wait()
}

// bootSweep re-registers alarms for every pending task, bounded by the boot
// sweep budget. A failed sweep is logged, not fatal: the refresh loop retries.
func (d *daemon) bootSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, constants.BootSweepTimeout)
	defer cancel()

	n, err := d.scheduler.RescheduleAllPending(sweepCtx)
	if err != nil {
		d.log.Error().Err(err).Msg("boot sweep failed")
		return
	}
	d.log.Info().Int("tasks", n).Msg("boot sweep complete")
}

// refreshLoop periodically re-runs the reschedule sweep so tasks created by
// other processes gain registrations. Safe at any cadence: registration
// replaces by task id, and past-due tasks are skipped.
func (d *daemon) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.Scheduler.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.scheduler.RescheduleAllPending(ctx); err != nil {
				d.log.Error().Err(err).Msg("refresh sweep failed")
			}
		}
	}
}

// consumeSessionEvents is the single consumer of session terminal events.
// Each event drives the work-log handoff: on an interactive terminal the
// work-log form runs and the task completes; otherwise the task stays in
// progress for 'tempo complete'.
func (d *daemon) consumeSessionEvents(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-d.controller.Events():
			d.handleSessionEnd(ctx, event)
		}
	}
}

// handleSessionEnd completes the task behind an ended session.
func (d *daemon) handleSessionEnd(ctx context.Context, event domain.SessionEvent) {
	log := d.log.With().
		Str("session_id", event.SessionID).
		Int64("task_id", event.TaskID).
		Str("reason", event.Reason.String()).
		Logger()

	t, err := d.manager.Get(ctx, event.TaskID)
	if err != nil || t == nil {
		log.Error().Err(err).Msg("session ended for unknown task")
		return
	}

	if d.cfg.Session.Surface == config.SurfaceNone || !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Info().Msg("no interactive terminal; task remains in progress")
		_, _ = fmt.Fprintf(d.out, "Focus ended for #%d '%s'; finish with 'tempo complete %d'\n",
			t.ID, t.Title, t.ID)
		return
	}

	workLog, err := promptWorkLog(t.Title)
	if err != nil {
		log.Warn().Err(err).Msg("work log form aborted; task remains in progress")
		return
	}

	if _, err := d.manager.Complete(ctx, t, workLog); err != nil {
		log.Error().Err(err).Msg("failed to complete task")
		return
	}
	log.Info().Msg("task completed with work log")
}
