package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_ContextActive(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	select {
	case <-h.Context().Done():
		t.Fatal("context should not be done before a signal or Stop")
	default:
	}

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should not be closed without a signal")
	default:
	}
}

func TestHandler_StopCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("Stop should cancel the context")
	}
}

func TestHandler_StopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()
	h.Stop()
	h.Stop()
}

func TestHandler_HandleSignal(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()

	select {
	case <-h.Interrupted():
	case <-time.After(time.Second):
		t.Fatal("interrupted channel should close after a signal")
	}

	require.Error(t, h.Context().Err())
	assert.ErrorIs(t, h.Context().Err(), context.Canceled)

	// A second signal is drained without effect.
	h.handleSignal()
}

func TestHandler_ParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation should propagate")
	}
}
