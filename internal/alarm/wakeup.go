// Package alarm provides alarm coordination for TEMPO: translating a task's
// scheduled time into a wake-up registration, the boot-recovery sweep, and
// the handler invoked when a wake-up fires.
//
// The wake-up primitive itself is an external collaborator reached through
// the Wakeup interface; this package ships an in-process implementation for
// the daemon process model.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/task, std lib
//   - MUST NOT import: internal/lock, internal/tui, internal/cli
package alarm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// Wakeup is the boundary to the platform's future-wake-up service.
//
// Registrations are keyed by the payload's task id: registering again for
// the same task replaces the prior registration, never duplicates it. Exact
// delivery is preferred and may be refused with ErrSchedulingPermission;
// best-effort delivery is the degraded fallback.
type Wakeup interface {
	// RegisterExact registers a doze-resistant wake-up at the given instant.
	// Returns ErrSchedulingPermission if exact delivery is not permitted.
	RegisterExact(triggerAt time.Time, payload domain.TriggerPayload) error

	// RegisterBestEffort registers a wake-up that may be deferred by the
	// platform.
	RegisterBestEffort(triggerAt time.Time, payload domain.TriggerPayload) error

	// Cancel removes any pending wake-up for the task id. No-op if none
	// exists; it has no effect on an already-fired trigger.
	Cancel(taskID int64)

	// Registered returns the task ids with a pending registration. Used by
	// the reschedule sweep to cancel registrations whose task was abandoned
	// or deleted from another process.
	Registered() []int64
}

// TriggerFunc is invoked when a registered wake-up fires. It runs on the
// timer's goroutine; implementations hand off quickly.
type TriggerFunc func(payload domain.TriggerPayload)

// TimerWakeup implements Wakeup with in-process timers, standing in for the
// OS alarm service when TEMPO runs as a long-lived daemon. Registrations die
// with the process, which is why the daemon runs the boot sweep at startup.
type TimerWakeup struct {
	mu         sync.Mutex
	timers     map[int64]*time.Timer
	fire       TriggerFunc
	allowExact bool
	closed     bool
	log        zerolog.Logger
}

// NewTimerWakeup creates a TimerWakeup delivering fired payloads to fire.
// allowExact models the platform's exact-alarm capability grant; when false,
// RegisterExact is refused and callers must fall back.
func NewTimerWakeup(fire TriggerFunc, allowExact bool, log zerolog.Logger) *TimerWakeup {
	return &TimerWakeup{
		timers:     make(map[int64]*time.Timer),
		fire:       fire,
		allowExact: allowExact,
		log:        log.With().Str("component", "wakeup").Logger(),
	}
}

// RegisterExact implements Wakeup.
func (w *TimerWakeup) RegisterExact(triggerAt time.Time, payload domain.TriggerPayload) error {
	if !w.allowExact {
		return tempoerrors.ErrSchedulingPermission
	}
	return w.register(triggerAt, payload, true)
}

// RegisterBestEffort implements Wakeup. In-process timers have no doze to
// contend with, so delivery is identical to exact; the split exists to keep
// the degradation path honest.
func (w *TimerWakeup) RegisterBestEffort(triggerAt time.Time, payload domain.TriggerPayload) error {
	return w.register(triggerAt, payload, false)
}

func (w *TimerWakeup) register(triggerAt time.Time, payload domain.TriggerPayload, exact bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return tempoerrors.ErrSchedulingUnavailable
	}

	// Replace, never duplicate: one pending wake-up per task id.
	if prior, ok := w.timers[payload.TaskID]; ok {
		prior.Stop()
	}

	delay := time.Until(triggerAt)
	if delay < 0 {
		delay = 0
	}

	taskID := payload.TaskID
	w.timers[taskID] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.timers, taskID)
		w.mu.Unlock()
		w.fire(payload)
	})

	w.log.Debug().
		Int64("task_id", taskID).
		Time("trigger_at", triggerAt).
		Bool("exact", exact).
		Msg("wakeup registered")

	return nil
}

// Cancel implements Wakeup.
func (w *TimerWakeup) Cancel(taskID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	timer, ok := w.timers[taskID]
	if !ok {
		return
	}
	timer.Stop()
	delete(w.timers, taskID)
	w.log.Debug().Int64("task_id", taskID).Msg("wakeup cancelled")
}

// Registered implements Wakeup.
func (w *TimerWakeup) Registered() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]int64, 0, len(w.timers))
	for id := range w.timers {
		ids = append(ids, id)
	}
	return ids
}

// Pending returns the number of pending registrations.
func (w *TimerWakeup) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// Close stops all pending timers. Further registrations are refused.
func (w *TimerWakeup) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
}

// Ensure TimerWakeup implements Wakeup.
var _ Wakeup = (*TimerWakeup)(nil)
