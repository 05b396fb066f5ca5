package alarm

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// fakeStarter records session start requests and can fail them.
type fakeStarter struct {
	mu       sync.Mutex
	payloads []domain.TriggerPayload
	err      error
}

func (s *fakeStarter) StartSession(_ context.Context, payload domain.TriggerPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

// fakeGuard records acquire/release ordering.
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

// newTestNotifier returns a notifier writing to the given buffer.
func newTestNotifier(buf *bytes.Buffer) *Notifier {
	return NewNotifierWithWriter(DefaultNotifierConfig(), zerolog.Nop(), buf)
}

func TestTriggerHandler_HandleTrigger(t *testing.T) {
	var buf bytes.Buffer
	starter := &fakeStarter{}
	guard := &fakeGuard{}
	notifier := newTestNotifier(&buf)
	h := NewTriggerHandler(starter, guard, notifier, zerolog.Nop())

	payload := domain.TriggerPayload{TaskID: 7, Title: "Deep work", DurationMinutes: 25}
	h.HandleTrigger(context.Background(), payload)

	require.Len(t, starter.payloads, 1)
	assert.Equal(t, payload, starter.payloads[0])

	// The wake guarantee is bounded and released.
	require.Len(t, guard.acquires, 1)
	assert.LessOrEqual(t, guard.acquires[0], 60*time.Second)
	assert.Equal(t, 1, guard.releases)

	// The alert is the guaranteed signal.
	assert.Contains(t, buf.String(), "Deep work")
	assert.True(t, notifier.PendingAlert(7))
}

// TestTriggerHandler_MalformedPayload verifies a payload without a task id is
// ignored entirely: no guard, no alert, no session.
func TestTriggerHandler_MalformedPayload(t *testing.T) {
	var buf bytes.Buffer
	starter := &fakeStarter{}
	guard := &fakeGuard{}
	h := NewTriggerHandler(starter, guard, newTestNotifier(&buf), zerolog.Nop())

	h.HandleTrigger(context.Background(), domain.TriggerPayload{Title: "no id"})

	assert.Empty(t, starter.payloads)
	assert.Empty(t, guard.acquires)
	assert.Empty(t, buf.String())
}

// TestTriggerHandler_SessionStartFailure verifies the alert still stands and
// the guard is released when the session cannot start.
func TestTriggerHandler_SessionStartFailure(t *testing.T) {
	var buf bytes.Buffer
	starter := &fakeStarter{err: stderrors.Join(tempoerrors.ErrResourceUnavailable)}
	guard := &fakeGuard{}
	notifier := newTestNotifier(&buf)
	h := NewTriggerHandler(starter, guard, notifier, zerolog.Nop())

	payload := domain.TriggerPayload{TaskID: 3, Title: "Writing"}
	h.HandleTrigger(context.Background(), payload)

	require.Len(t, starter.payloads, 1, "start was attempted")
	assert.Equal(t, 1, guard.releases, "guard released on the failure path")
	assert.Contains(t, buf.String(), "Writing", "alert posted before the failed start")
	assert.True(t, notifier.PendingAlert(3), "alert survives a failed session start")
}

func TestNotifier_ClearAndQuiet(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifierWithWriter(NotifierConfig{BellEnabled: false, Quiet: false}, zerolog.Nop(), &buf)

	n.TaskDue(1, "Deep work")
	assert.NotContains(t, buf.String(), "\a", "bell disabled")
	assert.True(t, n.PendingAlert(1))

	n.Clear(1)
	assert.False(t, n.PendingAlert(1))
	n.Clear(1) // idempotent

	buf.Reset()
	quiet := NewNotifierWithWriter(NotifierConfig{BellEnabled: true, Quiet: true}, zerolog.Nop(), &buf)
	quiet.TaskDue(2, "Silent")
	assert.Empty(t, buf.String(), "quiet suppresses output")
	assert.True(t, quiet.PendingAlert(2), "alert state is tracked even when quiet")
}
