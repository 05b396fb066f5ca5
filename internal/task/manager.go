package task

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/ctxutil"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// CreateParams holds the caller-supplied fields for a new task.
// Everything here is immutable after creation.
type CreateParams struct {
	// Title is the task summary. Must be non-blank.
	Title string

	// Description is optional free-form detail.
	Description string

	// ScheduledDate is the day the task belongs to. Normalized to its day
	// boundary before persisting.
	ScheduledDate time.Time

	// ScheduledTimeMinutes is the start offset from midnight (0–1439).
	ScheduledTimeMinutes int

	// DurationMinutes is the planned lock session length. Must be positive.
	DurationMinutes int64

	// Color is the ARGB display color for the timeline block.
	Color uint32
}

// Manager owns the task lifecycle: it is the only component that writes
// status transitions to the store. It has no side effect on alarm
// scheduling; callers register and cancel wake-ups around it.
type Manager struct {
	store Store
	clk   clock.Clock
	log   zerolog.Logger
}

// NewManager creates a Manager over the given store.
// The clock is injectable for tests; pass clock.RealClock{} in production.
func NewManager(store Store, clk clock.Clock, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		clk:   clk,
		log:   log.With().Str("component", "task_manager").Logger(),
	}
}

// Create validates the input and persists a new Planned task, returning the
// record with its assigned id. Fails with a wrapped ErrValidation on blank
// title, non-positive duration, or an out-of-range time of day.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	now := m.clk.Now()
	task := &domain.Task{
		Title:                  params.Title,
		Description:            params.Description,
		ScheduledDate:          clock.DayStart(params.ScheduledDate),
		ScheduledTimeMinutes:   params.ScheduledTimeMinutes,
		PlannedDurationMinutes: params.DurationMinutes,
		Color:                  params.Color,
		Status:                 constants.TaskStatusPlanned,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	// Validate surfaces malformed input before anything touches disk.
	if err := task.Validate(); err != nil {
		return nil, err
	}

	id, err := m.store.Insert(ctx, task)
	if err != nil {
		return nil, tempoerrors.Wrap(err, "failed to create task")
	}
	task.ID = id

	m.log.Info().
		Int64("task_id", id).
		Str("title", task.Title).
		Time("scheduled_start", task.ScheduledStart()).
		Int64("duration_minutes", task.PlannedDurationMinutes).
		Msg("task created")

	return task, nil
}

// Start transitions a Planned task to InProgress, setting the start
// timestamp, and persists it. Any non-Planned status is rejected with a
// wrapped ErrInvalidTransition and the stored record is left unchanged.
//
// The rejection is the designed safety net against duplicate alarm
// deliveries: a redelivered trigger finds the task already in progress and
// stops here instead of resetting a running lock session.
func (m *Manager) Start(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return m.transition(ctx, task, constants.TaskStatusInProgress, func(*domain.Task) {})
}

// Complete transitions an InProgress task to Completed, setting the end
// timestamp and attaching the work log, and persists it. The work log may be
// empty at this layer; requiring a non-empty entry is a presentation
// concern.
func (m *Manager) Complete(ctx context.Context, task *domain.Task, workLog string) (*domain.Task, error) {
	return m.transition(ctx, task, constants.TaskStatusCompleted, func(t *domain.Task) {
		t.WorkLog = &workLog
	})
}

// Abandon transitions a task to Abandoned and persists it. Legal from both
// Planned and InProgress; nothing calls this automatically. The caller must
// cancel any pending wake-up registration for the task.
func (m *Manager) Abandon(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return m.transition(ctx, task, constants.TaskStatusAbandoned, func(*domain.Task) {})
}

// Get looks up a task by id. Absence is not an error: a nil task and nil
// error means not found.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := m.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, tempoerrors.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, tempoerrors.Wrapf(err, "failed to get task %d", id)
	}
	return task, nil
}

// ListDay returns the tasks scheduled on the given day, ordered by
// time-of-day ascending.
func (m *Manager) ListDay(ctx context.Context, date time.Time) ([]*domain.Task, error) {
	tasks, err := m.store.GetByDate(ctx, date)
	if err != nil {
		return nil, tempoerrors.Wrap(err, "failed to list day")
	}
	return tasks, nil
}

// Delete removes a task record entirely. The caller must cancel any pending
// wake-up registration for the task; the store has no scheduling knowledge.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return tempoerrors.Wrapf(err, "failed to delete task %d", id)
	}
	m.log.Info().Int64("task_id", id).Msg("task deleted")
	return nil
}

// transition re-reads the task, applies the state change against the
// current stored status, and persists the result. Re-reading makes the
// status precondition authoritative even when the caller holds a stale copy.
func (m *Manager) transition(
	ctx context.Context,
	task *domain.Task,
	to constants.TaskStatus,
	apply func(*domain.Task),
) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task is nil", tempoerrors.ErrInvalidTransition)
	}

	current, err := m.store.GetByID(ctx, task.ID)
	if err != nil {
		return nil, tempoerrors.Wrapf(err, "failed to load task %d", task.ID)
	}

	from := current.Status
	apply(current)
	if err := Transition(ctx, current, to, m.clk.Now()); err != nil {
		m.log.Warn().
			Int64("task_id", current.ID).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("transition rejected")
		return nil, err
	}

	if err := m.store.Update(ctx, current); err != nil {
		return nil, tempoerrors.Wrapf(err, "failed to persist task %d", current.ID)
	}

	m.log.Info().
		Int64("task_id", current.ID).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("task transitioned")

	return current, nil
}
