package alarm

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/ctxutil"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
	"github.com/mrz1836/tempo/internal/task"
)

// Scheduler is the alarm coordinator: it turns a task's scheduled time into
// a wake-up registration, cancels registrations, and re-establishes all
// pending registrations after a restart.
//
// Registrations live exactly as long as the task's Planned status. The lock
// flow retires them implicitly (the alarm has already fired); deletion and
// abandonment must call Cancel explicitly.
type Scheduler struct {
	wakeup Wakeup
	store  task.Store
	clk    clock.Clock
	log    zerolog.Logger
}

// NewScheduler creates a Scheduler over the given wake-up service and store.
func NewScheduler(wakeup Wakeup, store task.Store, clk clock.Clock, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		wakeup: wakeup,
		store:  store,
		clk:    clk,
		log:    log.With().Str("component", "alarm_scheduler").Logger(),
	}
}

// Schedule registers a wake-up at the task's scheduled start.
//
// A trigger instant already in the past is a silent no-op: past-due tasks
// are never alarmed. When exact registration is refused with
// ErrSchedulingPermission, Schedule degrades to best-effort delivery; if
// that also fails the failure is swallowed with a log entry. The task stays
// visible and manually startable either way — a missed alarm must never
// crash or block the app, so Schedule reports nothing to the caller.
func (s *Scheduler) Schedule(t *domain.Task) {
	if t == nil {
		return
	}

	triggerAt := t.ScheduledStart()
	if !triggerAt.After(s.clk.Now()) {
		s.log.Debug().
			Int64("task_id", t.ID).
			Time("trigger_at", triggerAt).
			Msg("scheduled time has passed, not scheduling")
		return
	}

	payload := domain.TriggerPayload{
		TaskID:          t.ID,
		Title:           t.Title,
		DurationMinutes: t.PlannedDurationMinutes,
	}

	err := s.wakeup.RegisterExact(triggerAt, payload)
	if err == nil {
		s.log.Info().
			Int64("task_id", t.ID).
			Time("trigger_at", triggerAt).
			Msg("alarm scheduled")
		return
	}

	if !stderrors.Is(err, tempoerrors.ErrSchedulingPermission) {
		s.log.Error().Err(err).Int64("task_id", t.ID).Msg("failed to schedule alarm")
		return
	}

	// Degraded path: exact delivery refused, fall back to best effort.
	s.log.Warn().Int64("task_id", t.ID).Msg("exact scheduling not permitted, using best-effort delivery")
	if err := s.wakeup.RegisterBestEffort(triggerAt, payload); err != nil {
		// The task remains startable by hand; nothing is surfaced to the user.
		s.log.Error().Err(err).Int64("task_id", t.ID).Msg("failed to schedule alarm with fallback")
	}
}

// Cancel removes any pending wake-up for the task. No-op if none exists, and
// without effect on an already-fired trigger or a running lock session —
// cancellation only prevents future firings.
func (s *Scheduler) Cancel(t *domain.Task) {
	if t == nil {
		return
	}
	s.wakeup.Cancel(t.ID)
}

// RescheduleAllPending re-registers wake-ups for every Planned task
// scheduled today or later, cancels registrations whose task is no longer
// pending, and returns how many tasks were considered.
//
// Tasks whose day has fully passed are intentionally excluded: they are
// missed, not resurrected, which also bounds the scan for the short
// execution budget a boot handler gets. Per-task scheduling remains governed
// by Schedule's past-due guard, so a task from earlier today whose time has
// passed is skipped there. Re-running the sweep is idempotent because
// registration replaces by task id.
//
// The cancellation leg closes the cross-process gap: abandon and delete run
// in other processes and cannot reach this process's registrations, so the
// sweep reconciles instead — any registered id absent from the pending set
// belongs to a task that was abandoned, completed, or deleted elsewhere, and
// its alarm must not fire.
func (s *Scheduler) RescheduleAllPending(ctx context.Context) (int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	todayStart := clock.DayStart(s.clk.Now())
	pending, err := s.store.GetPendingSince(ctx, todayStart, constants.TaskStatusPlanned)
	if err != nil {
		return 0, tempoerrors.Wrap(err, "failed to load pending tasks")
	}

	keep := make(map[int64]bool, len(pending))
	for _, t := range pending {
		keep[t.ID] = true
		s.Schedule(t)
	}

	for _, id := range s.wakeup.Registered() {
		if keep[id] {
			continue
		}
		s.wakeup.Cancel(id)
		s.log.Info().Int64("task_id", id).Msg("cancelled alarm for task no longer pending")
	}

	s.log.Info().Int("pending", len(pending)).Msg("reschedule sweep finished")
	return len(pending), nil
}
