package alarm

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// fireCollector records fired payloads for assertions.
type fireCollector struct {
	mu       sync.Mutex
	payloads []domain.TriggerPayload
	fired    chan struct{}
}

func newFireCollector() *fireCollector {
	return &fireCollector{fired: make(chan struct{}, 16)}
}

func (c *fireCollector) fire(p domain.TriggerPayload) {
	c.mu.Lock()
	c.payloads = append(c.payloads, p)
	c.mu.Unlock()
	c.fired <- struct{}{}
}

func (c *fireCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func TestTimerWakeup_RegisterExact_Refused(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, false, zerolog.Nop())
	defer w.Close()

	err := w.RegisterExact(time.Now().Add(time.Hour), domain.TriggerPayload{TaskID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrSchedulingPermission)
	assert.Zero(t, w.Pending())
}

func TestTimerWakeup_FiresAndForgets(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, true, zerolog.Nop())
	defer w.Close()

	payload := domain.TriggerPayload{TaskID: 7, Title: "Deep work", DurationMinutes: 25}
	require.NoError(t, w.RegisterExact(time.Now().Add(10*time.Millisecond), payload))
	assert.Equal(t, 1, w.Pending())

	select {
	case <-c.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("wakeup did not fire")
	}

	assert.Equal(t, payload, c.payloads[0])
	assert.Zero(t, w.Pending(), "a fired registration is forgotten")
}

// TestTimerWakeup_ReplaceOnRegister verifies one pending wake-up per task id:
// re-registering replaces, never duplicates.
func TestTimerWakeup_ReplaceOnRegister(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, true, zerolog.Nop())
	defer w.Close()

	payload := domain.TriggerPayload{TaskID: 7}
	require.NoError(t, w.RegisterExact(time.Now().Add(time.Hour), payload))
	require.NoError(t, w.RegisterBestEffort(time.Now().Add(20*time.Millisecond), payload))
	assert.Equal(t, 1, w.Pending())

	select {
	case <-c.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement wakeup did not fire")
	}

	// Only the replacement may ever fire.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, c.count())
}

func TestTimerWakeup_Cancel(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, true, zerolog.Nop())
	defer w.Close()

	require.NoError(t, w.RegisterExact(time.Now().Add(30*time.Millisecond), domain.TriggerPayload{TaskID: 3}))
	w.Cancel(3)
	assert.Zero(t, w.Pending())

	// Cancelling an unknown id is a no-op.
	w.Cancel(99)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, c.count(), "cancelled wakeup must not fire")
}

func TestTimerWakeup_Registered(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, true, zerolog.Nop())
	defer w.Close()

	require.NoError(t, w.RegisterExact(time.Now().Add(time.Hour), domain.TriggerPayload{TaskID: 3}))
	require.NoError(t, w.RegisterExact(time.Now().Add(time.Hour), domain.TriggerPayload{TaskID: 5}))
	assert.ElementsMatch(t, []int64{3, 5}, w.Registered())

	w.Cancel(3)
	assert.ElementsMatch(t, []int64{5}, w.Registered())
}

func TestTimerWakeup_Close(t *testing.T) {
	c := newFireCollector()
	w := NewTimerWakeup(c.fire, true, zerolog.Nop())

	require.NoError(t, w.RegisterExact(time.Now().Add(time.Hour), domain.TriggerPayload{TaskID: 1}))
	w.Close()
	assert.Zero(t, w.Pending())

	err := w.RegisterBestEffort(time.Now().Add(time.Hour), domain.TriggerPayload{TaskID: 2})
	assert.ErrorIs(t, err, tempoerrors.ErrSchedulingUnavailable)
}
