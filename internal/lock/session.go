package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
	"github.com/mrz1836/tempo/internal/task"
)

// guardGrace is added to the planned duration when acquiring the wake
// guarantee, so the guard outlives the countdown but never a stuck session.
const guardGrace = 5 * time.Minute

// eventBuffer sizes the session event channel. One session runs at a time,
// so the buffer only needs to absorb a consumer that is briefly behind.
const eventBuffer = 8

// Controller drives the lock session state machine:
//
//	Idle → Locking → Locked → Unlocking → Idle
//
// It is the only subsystem that acquires or releases the lock surface and
// the wake guarantee. Both are released on every exit path of Unlocking,
// including aborts: acquire at Locking entry, guaranteed release afterward.
//
// Each session produces exactly one SessionEvent on Events(), consumed by a
// single reader that drives the work-log handoff.
type Controller struct {
	manager *task.Manager
	surface Surface
	guard   WakeGuard
	alerts  AlertClearer
	clk     clock.Clock
	tick    time.Duration
	log     zerolog.Logger
	events  chan domain.SessionEvent

	mu        sync.Mutex
	state     constants.SessionState
	sessionID string
	taskID    int64
	stopCh    chan struct{}
	stopOnce  *sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithTick overrides the countdown cadence. Display refresh only; the
// deadline is absolute regardless of cadence. Tests use a short tick.
func WithTick(d time.Duration) Option {
	return func(c *Controller) { c.tick = d }
}

// WithAlertClearer wires the alert-clearing hook run at Unlocking.
func WithAlertClearer(a AlertClearer) Option {
	return func(c *Controller) { c.alerts = a }
}

// NewController creates a Controller in the Idle state.
func NewController(
	manager *task.Manager,
	surface Surface,
	guard WakeGuard,
	clk clock.Clock,
	log zerolog.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		manager: manager,
		surface: surface,
		guard:   guard,
		clk:     clk,
		tick:    constants.CountdownTick,
		log:     log.With().Str("component", "lock_session").Logger(),
		events:  make(chan domain.SessionEvent, eventBuffer),
		state:   constants.SessionIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the channel carrying each session's single terminal event.
// Intended for exactly one consumer.
func (c *Controller) Events() <-chan domain.SessionEvent {
	return c.events
}

// State returns the current session state.
func (c *Controller) State() constants.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the guarded task id and true while a session is Locking,
// Locked, or Unlocking.
func (c *Controller) Active() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == constants.SessionIdle {
		return 0, false
	}
	return c.taskID, true
}

// StartSession begins a lock session for the task in the trigger payload.
//
// The sequence is: refuse if a session is active, load the task, acquire the
// wake guarantee, draw the surface, and only then commit the
// Planned→InProgress transition. Drawing before committing keeps the
// inconsistency window of "started but never locked" as small as the
// platform allows.
//
// Returns ErrSessionActive if a session already holds the lock surface,
// ErrTaskNotFound for a stale trigger referencing a deleted task, a wrapped
// ErrResourceUnavailable if the surface cannot be drawn, and the manager's
// ErrInvalidTransition if the task is no longer Planned (the duplicate-
// delivery safety net).
func (c *Controller) StartSession(ctx context.Context, payload domain.TriggerPayload) error {
	c.mu.Lock()
	if c.state != constants.SessionIdle {
		active := c.taskID
		c.mu.Unlock()
		return fmt.Errorf("%w: task %d holds the surface", tempoerrors.ErrSessionActive, active)
	}
	c.state = constants.SessionLocking
	c.mu.Unlock()

	sessionID := uuid.NewString()
	log := c.log.With().Str("session_id", sessionID).Int64("task_id", payload.TaskID).Logger()

	t, err := c.manager.Get(ctx, payload.TaskID)
	if err != nil {
		c.abort()
		return tempoerrors.Wrapf(err, "failed to load task %d for lock session", payload.TaskID)
	}
	if t == nil {
		c.abort()
		log.Warn().Msg("stale trigger: task no longer exists")
		return fmt.Errorf("%w: task %d", tempoerrors.ErrTaskNotFound, payload.TaskID)
	}

	total := t.PlannedDuration()
	c.guard.Acquire(total + guardGrace)

	content := domain.SurfaceContent{
		TaskID:    t.ID,
		Title:     t.Title,
		Remaining: total,
		Total:     total,
	}
	if err := c.surface.Show(ctx, content); err != nil {
		c.guard.Release()
		c.abort()
		return tempoerrors.Wrap(err, "failed to draw lock surface")
	}

	started, err := c.manager.Start(ctx, t)
	if err != nil {
		c.surface.Hide()
		c.guard.Release()
		c.abort()
		return err
	}

	deadline := c.clk.Now().Add(total)

	c.mu.Lock()
	c.state = constants.SessionLocked
	c.sessionID = sessionID
	c.taskID = started.ID
	c.stopCh = make(chan struct{})
	c.stopOnce = &sync.Once{}
	stopCh := c.stopCh
	c.mu.Unlock()

	log.Info().
		Time("deadline", deadline).
		Dur("duration", total).
		Msg("lock session started")

	go c.run(sessionID, started.ID, deadline, stopCh)

	return nil
}

// Stop requests an early end of the active session with stop reason
// user-ended, regardless of elapsed time. Idempotent: issuing it twice, or
// when no session is Locked, is a no-op. Stopping never fails; releasing
// already-released resources is defined as a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != constants.SessionLocked {
		return
	}
	stopCh := c.stopCh
	c.stopOnce.Do(func() { close(stopCh) })
}

// run owns the countdown. It is the single processor of both tick and stop
// signals, so once a stop is observed no further tick can be handled.
func (c *Controller) run(sessionID string, taskID int64, deadline time.Time, stopCh chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			c.unlock(sessionID, taskID, constants.StopReasonUserEnded)
			return
		case <-ticker.C:
			// A stop issued during the same instant as a tick wins;
			// no tick is processed after cancellation.
			select {
			case <-stopCh:
				c.unlock(sessionID, taskID, constants.StopReasonUserEnded)
				return
			default:
			}

			remaining := deadline.Sub(c.clk.Now())
			if remaining <= 0 {
				c.unlock(sessionID, taskID, constants.StopReasonExpired)
				return
			}
			c.surface.Update(remaining)
		}
	}
}

// unlock performs the Unlocking step: release the surface and the wake
// guarantee, clear the originating alert, emit the session's terminal event,
// and return to Idle. Completion of the task itself happens only when the
// work log is submitted; the event consumer drives that.
func (c *Controller) unlock(sessionID string, taskID int64, reason constants.StopReason) {
	c.mu.Lock()
	if c.state != constants.SessionLocked || c.sessionID != sessionID {
		c.mu.Unlock()
		return
	}
	c.state = constants.SessionUnlocking
	c.mu.Unlock()

	c.surface.Hide()
	c.guard.Release()
	if c.alerts != nil {
		c.alerts.Clear(taskID)
	}

	endedAt := c.clk.Now()

	c.mu.Lock()
	c.state = constants.SessionIdle
	c.sessionID = ""
	c.taskID = 0
	c.mu.Unlock()

	c.log.Info().
		Str("session_id", sessionID).
		Int64("task_id", taskID).
		Str("reason", reason.String()).
		Msg("lock session ended")

	event := domain.SessionEvent{
		SessionID: sessionID,
		TaskID:    taskID,
		Reason:    reason,
		EndedAt:   endedAt,
	}
	select {
	case c.events <- event:
	default:
		// Only reachable when the consumer has abandoned the channel;
		// the task stays InProgress and can be completed manually.
		c.log.Error().
			Str("session_id", sessionID).
			Int64("task_id", taskID).
			Msg("session event dropped: no consumer")
	}
}

// abort rolls a failed Locking attempt back to Idle.
// The caller has already released whatever it acquired.
func (c *Controller) abort() {
	c.mu.Lock()
	c.state = constants.SessionIdle
	c.mu.Unlock()
}
