package alarm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
)

// SessionStarter requests the start of a lock session for a fired trigger.
// Satisfied by the lock session controller.
type SessionStarter interface {
	StartSession(ctx context.Context, payload domain.TriggerPayload) error
}

// WakeGuard is the short-lived stay-awake hold taken during trigger handoff.
// Mirrors the lock package's boundary; the handler holds it for at most
// constants.WakeGuardTimeout.
type WakeGuard interface {
	Acquire(timeout time.Duration)
	Release()
}

// TriggerHandler is the callback invoked when a wake-up fires. It runs a
// short linear pipeline: validate the payload, hold a bounded wake
// guarantee, post the task-due alert, and request the lock session.
//
// Everything past validation is fire-and-forget: a session that cannot start
// is logged, the alert still stands, and the user can start the task
// manually. The platform may redeliver a trigger; a task no longer Planned
// is rejected downstream by the start transition, which is the designed
// safety net, not an error to surface.
type TriggerHandler struct {
	starter  SessionStarter
	guard    WakeGuard
	notifier *Notifier
	log      zerolog.Logger
}

// NewTriggerHandler creates a TriggerHandler.
func NewTriggerHandler(starter SessionStarter, guard WakeGuard, notifier *Notifier, log zerolog.Logger) *TriggerHandler {
	return &TriggerHandler{
		starter:  starter,
		guard:    guard,
		notifier: notifier,
		log:      log.With().Str("component", "trigger_handler").Logger(),
	}
}

// HandleTrigger processes one fired wake-up. It never returns an error and
// never panics outward; the worst outcome is "task did not auto-lock",
// recorded in the log.
func (h *TriggerHandler) HandleTrigger(ctx context.Context, payload domain.TriggerPayload) {
	if !payload.Valid() {
		h.log.Error().Int64("task_id", payload.TaskID).Msg("malformed trigger payload, ignoring")
		return
	}

	log := h.log.With().Int64("task_id", payload.TaskID).Logger()
	log.Debug().Str("title", payload.Title).Msg("trigger fired")

	// Keep the device awake across the handoff, bounded so a failure here
	// can never hold the guarantee indefinitely.
	h.guard.Acquire(constants.WakeGuardTimeout)
	defer h.guard.Release()

	// The alert goes out before the session start attempt so the user is
	// informed even if the lock surface cannot be drawn.
	h.notifier.TaskDue(payload.TaskID, payload.Title)

	if err := h.starter.StartSession(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("lock session did not start; task remains manually startable")
	}
}
