package domain

import (
	"time"

	"github.com/mrz1836/tempo/internal/constants"
)

// TriggerPayload is the opaque payload a wake-up registration carries.
// Title and duration ride along so the lock surface can render without a
// synchronous store read; the store is still consulted before any transition.
type TriggerPayload struct {
	// TaskID identifies the task the wake-up was registered for.
	TaskID int64 `json:"task_id"`

	// Title is the task title at registration time.
	Title string `json:"title"`

	// DurationMinutes is the planned duration at registration time.
	DurationMinutes int64 `json:"duration_minutes"`
}

// Valid reports whether the payload carries a usable task id.
func (p TriggerPayload) Valid() bool {
	return p.TaskID > 0
}

// SurfaceContent describes what the exclusive lock surface displays.
// The surface receives one of these on show and updated remaining times
// while the countdown runs.
type SurfaceContent struct {
	// TaskID identifies the task the session guards.
	TaskID int64

	// Title is the task title shown on the surface.
	Title string

	// Remaining is the time left on the countdown.
	Remaining time.Duration

	// Total is the full planned duration, for progress display.
	Total time.Duration
}

// SessionEvent is the single terminal event a lock session produces.
// Exactly one is emitted per session, consumed by the daemon loop to drive
// the work-log handoff. Delivery through a single-consumer channel keeps
// ordering explicit and delivery exactly-once.
type SessionEvent struct {
	// SessionID correlates log lines for one session. Sessions are
	// ephemeral; the id is never persisted.
	SessionID string

	// TaskID is the task the session guarded.
	TaskID int64

	// Reason records whether the countdown expired or the user ended early.
	Reason constants.StopReason

	// EndedAt is when the session reached Unlocking.
	EndedAt time.Time
}
