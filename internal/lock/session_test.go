package lock

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tempo/internal/alarm"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
	"github.com/mrz1836/tempo/internal/task"
)

// fakeClock is a Clock pinned to a settable instant.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSurface records surface calls and can refuse Show.
type fakeSurface struct {
	mu      sync.Mutex
	content domain.SurfaceContent
	shown   int
	hidden  int
	updates []time.Duration
	showErr error
}

func (s *fakeSurface) Show(_ context.Context, content domain.SurfaceContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showErr != nil {
		return s.showErr
	}
	s.content = content
	s.shown++
	return nil
}

func (s *fakeSurface) Update(remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, remaining)
}

func (s *fakeSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden++
}

func (s *fakeSurface) hiddenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// fakeGuard records acquire/release calls.
type fakeGuard struct {
	mu       sync.Mutex
	acquires []time.Duration
	releases int
}

func (g *fakeGuard) Acquire(timeout time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquires = append(g.acquires, timeout)
}

func (g *fakeGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releases++
}

func (g *fakeGuard) releaseCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.releases
}

// clearRecorder records alert clears.
type clearRecorder struct {
	mu      sync.Mutex
	cleared []int64
}

func (r *clearRecorder) Clear(taskID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, taskID)
}

// sessionFixture bundles a controller over a real file store.
type sessionFixture struct {
	controller *Controller
	manager    *task.Manager
	surface    *fakeSurface
	guard      *fakeGuard
	alerts     *clearRecorder
	clk        *fakeClock
	task       *domain.Task
}

// newSessionFixture creates a controller with a planned 25-minute task and a
// short test tick.
func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	store, err := task.NewFileStore(t.TempDir())
	require.NoError(t, err)

	clk := &fakeClock{now: time.Date(2026, 8, 30, 10, 30, 0, 0, time.Local)}
	manager := task.NewManager(store, clk, zerolog.Nop())

	created, err := manager.Create(context.Background(), task.CreateParams{
		Title:                "Deep work",
		ScheduledDate:        clk.Now(),
		ScheduledTimeMinutes: 630,
		DurationMinutes:      25,
	})
	require.NoError(t, err)

	surface := &fakeSurface{}
	guard := &fakeGuard{}
	alerts := &clearRecorder{}
	controller := NewController(manager, surface, guard, clk, zerolog.Nop(),
		WithTick(5*time.Millisecond),
		WithAlertClearer(alerts))

	return &sessionFixture{
		controller: controller,
		manager:    manager,
		surface:    surface,
		guard:      guard,
		alerts:     alerts,
		clk:        clk,
		task:       created,
	}
}

// payload builds the trigger payload for the fixture task.
func (f *sessionFixture) payload() domain.TriggerPayload {
	return domain.TriggerPayload{
		TaskID:          f.task.ID,
		Title:           f.task.Title,
		DurationMinutes: f.task.PlannedDurationMinutes,
	}
}

// waitEvent waits for the session's terminal event.
func waitEvent(t *testing.T, c *Controller) domain.SessionEvent {
	t.Helper()
	select {
	case event := <-c.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no session event")
		return domain.SessionEvent{}
	}
}

func TestController_StartSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))
	assert.Equal(t, constants.SessionLocked, f.controller.State())

	activeID, active := f.controller.Active()
	assert.True(t, active)
	assert.Equal(t, f.task.ID, activeID)

	// The task is committed in progress.
	current, err := f.manager.Get(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusInProgress, current.Status)

	// Surface shows the full countdown; guard outlives it by the grace.
	assert.Equal(t, 1, f.surface.shown)
	assert.Equal(t, "Deep work", f.surface.content.Title)
	assert.Equal(t, 25*time.Minute, f.surface.content.Total)
	assert.Equal(t, 25*time.Minute, f.surface.content.Remaining)
	require.Len(t, f.guard.acquires, 1)
	assert.Equal(t, 25*time.Minute+guardGrace, f.guard.acquires[0])

	f.controller.Stop()
	waitEvent(t, f.controller)
}

// TestController_SecondSessionRefused verifies the surface is exclusive.
func TestController_SecondSessionRefused(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))

	err := f.controller.StartSession(ctx, f.payload())
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrSessionActive)

	f.controller.Stop()
	waitEvent(t, f.controller)
}

// TestController_StaleTrigger verifies a trigger for a deleted task aborts
// back to Idle without acquiring anything.
func TestController_StaleTrigger(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	err := f.controller.StartSession(ctx, domain.TriggerPayload{TaskID: 9999, Title: "gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrTaskNotFound)
	assert.Equal(t, constants.SessionIdle, f.controller.State())
	assert.Empty(t, f.guard.acquires)
	assert.Equal(t, 0, f.surface.shown)
}

// TestController_SurfaceFailureAborts verifies the resource-unavailable path:
// guard released, no transition committed, controller back to Idle.
func TestController_SurfaceFailureAborts(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.surface.showErr = tempoerrors.ErrResourceUnavailable

	err := f.controller.StartSession(ctx, f.payload())
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrResourceUnavailable)
	assert.Equal(t, constants.SessionIdle, f.controller.State())
	assert.Equal(t, 1, f.guard.releaseCount(), "guard released on abort")

	current, err := f.manager.Get(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusPlanned, current.Status,
		"no transition is committed when the surface cannot be drawn")
}

// TestController_DuplicateTriggerAfterStart verifies the safety net: a
// redelivered trigger for a task already in progress tears its own acquisitions
// down and leaves the running session alone.
func TestController_DuplicateTriggerAfterStart(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))
	f.controller.Stop()
	waitEvent(t, f.controller)

	// Session over, task in progress. A redelivery now reaches the start
	// transition and is rejected there.
	err := f.controller.StartSession(ctx, f.payload())
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrInvalidTransition)
	assert.Equal(t, constants.SessionIdle, f.controller.State())

	current, err := f.manager.Get(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusInProgress, current.Status)
}

// TestController_CountdownExpiry verifies the timer-expired unlock: event
// emitted, surface hidden, guard released, alert cleared, task untouched.
func TestController_CountdownExpiry(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))

	// Jump past the deadline; the next tick observes it.
	f.clk.advance(26 * time.Minute)

	event := waitEvent(t, f.controller)
	assert.Equal(t, constants.StopReasonExpired, event.Reason)
	assert.Equal(t, f.task.ID, event.TaskID)
	assert.NotEmpty(t, event.SessionID)

	assert.Equal(t, constants.SessionIdle, f.controller.State())
	assert.Equal(t, 1, f.surface.hiddenCount())
	assert.Equal(t, 1, f.guard.releaseCount())
	assert.Equal(t, []int64{f.task.ID}, f.alerts.cleared)

	// Completion belongs to the work-log handoff, not the unlock.
	current, err := f.manager.Get(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusInProgress, current.Status)
}

// TestController_UserStop verifies the early-end path and that stopping is
// idempotent: exactly one event regardless of how often Stop is issued.
func TestController_UserStop(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))

	f.controller.Stop()
	f.controller.Stop()
	f.controller.Stop()

	event := waitEvent(t, f.controller)
	assert.Equal(t, constants.StopReasonUserEnded, event.Reason)

	// No second event arrives.
	select {
	case extra := <-f.controller.Events():
		t.Fatalf("unexpected second event: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, constants.SessionIdle, f.controller.State())
	assert.Equal(t, 1, f.surface.hiddenCount())
	assert.Equal(t, 1, f.guard.releaseCount())
}

// TestController_StopWhenIdle verifies stopping without a session is a no-op.
func TestController_StopWhenIdle(t *testing.T) {
	f := newSessionFixture(t)

	f.controller.Stop()
	assert.Equal(t, constants.SessionIdle, f.controller.State())

	select {
	case event := <-f.controller.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestController_AlarmDrivenLifecycle runs the full path through real
// collaborators: a registered wake-up fires, the trigger handler opens the
// session, the countdown expires, and a work log completes the task. The
// fake clock sits just before the scheduled instant so the scheduler
// registers the alarm, while the instant lies in the real past so the timer
// fires immediately.
func TestController_AlarmDrivenLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := task.NewFileStore(t.TempDir())
	require.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1)
	dayStart := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.Local)
	clk := &fakeClock{now: dayStart.Add(629 * time.Minute)}
	manager := task.NewManager(store, clk, zerolog.Nop())

	created, err := manager.Create(ctx, task.CreateParams{
		Title:                "Deep Work",
		ScheduledDate:        dayStart,
		ScheduledTimeMinutes: 630,
		DurationMinutes:      50,
	})
	require.NoError(t, err)

	// Two distinct wake holds, as in the daemon wiring: the handoff guard
	// bridges trigger delivery, the session guard spans the countdown.
	surface := &fakeSurface{}
	sessionGuard := NewTimedGuard(zerolog.Nop())
	handoffGuard := NewTimedGuard(zerolog.Nop())
	controller := NewController(manager, surface, sessionGuard, clk, zerolog.Nop(),
		WithTick(5*time.Millisecond))

	notifier := alarm.NewNotifierWithWriter(alarm.NotifierConfig{}, zerolog.Nop(), io.Discard)
	handler := alarm.NewTriggerHandler(controller, handoffGuard, notifier, zerolog.Nop())
	wakeup := alarm.NewTimerWakeup(func(p domain.TriggerPayload) {
		handler.HandleTrigger(ctx, p)
	}, true, zerolog.Nop())
	defer wakeup.Close()

	scheduler := alarm.NewScheduler(wakeup, store, clk, zerolog.Nop())
	scheduler.Schedule(created)

	require.Eventually(t, func() bool {
		return controller.State() == constants.SessionLocked
	}, 2*time.Second, 5*time.Millisecond, "fired alarm should open the session")

	current, err := manager.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusInProgress, current.Status)
	assert.Equal(t, 50*time.Minute, surface.content.Total)

	// The session holds its own wake guarantee for the whole countdown; the
	// handler's handoff hold is dropped once the session has taken over.
	assert.True(t, sessionGuard.Held(), "wake guarantee held while locked")
	require.Eventually(t, func() bool { return !handoffGuard.Held() },
		time.Second, 5*time.Millisecond, "handoff hold released after session start")

	clk.advance(51 * time.Minute)
	event := waitEvent(t, controller)
	assert.Equal(t, constants.StopReasonExpired, event.Reason)
	assert.False(t, sessionGuard.Held(), "wake guarantee released at unlock")

	completed, err := manager.Complete(ctx, current, "done")
	require.NoError(t, err)
	assert.Equal(t, constants.TaskStatusCompleted, completed.Status)
	require.NotNil(t, completed.WorkLog)
	assert.Equal(t, "done", *completed.WorkLog)

	actual, ok := completed.ActualDuration()
	require.True(t, ok)
	assert.Equal(t, 51*time.Minute, actual)
}

// TestController_SurfaceUpdatesWhileLocked verifies the countdown drives
// display refreshes with the remaining time.
func TestController_SurfaceUpdatesWhileLocked(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.controller.StartSession(ctx, f.payload()))

	// Let a few ticks pass, then check updates carry a sane remaining value.
	time.Sleep(50 * time.Millisecond)
	f.surface.mu.Lock()
	updates := len(f.surface.updates)
	var last time.Duration
	if updates > 0 {
		last = f.surface.updates[updates-1]
	}
	f.surface.mu.Unlock()

	assert.Positive(t, updates, "display refreshes while locked")
	assert.LessOrEqual(t, last, 25*time.Minute)
	assert.Positive(t, last)

	f.controller.Stop()
	waitEvent(t, f.controller)
}
