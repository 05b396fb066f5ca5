// Package lock provides the lock session controller for TEMPO.
//
// A lock session owns the countdown for one in-progress task and the two
// exclusive resources that exist system-wide: the full-screen lock surface
// and the stay-awake guarantee. At most one session is ever active.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/task, std lib
//   - MUST NOT import: internal/tui, internal/cli (implementations of the
//     boundaries below are injected)
package lock

import (
	"context"
	"time"

	"github.com/mrz1836/tempo/internal/domain"
)

// Surface is the exclusive full-screen lock overlay boundary.
// Show may fail (no terminal, refused foreground session); Hide must always
// succeed even if Show never completed, because it is called unconditionally
// on session teardown.
type Surface interface {
	// Show draws the blocking surface with the given content.
	// Returns a wrapped ErrResourceUnavailable if the surface cannot be drawn.
	Show(ctx context.Context, content domain.SurfaceContent) error

	// Update refreshes the remaining-time display. Display only; nothing
	// is persisted. Calls after Hide are ignored.
	Update(remaining time.Duration)

	// Hide tears the surface down. Safe to call at any time, any number of
	// times, including when Show failed.
	Hide()
}

// NoopSurface is a Surface that draws nothing. Used in headless mode and in
// tests; the session protocol runs identically with or without a display.
type NoopSurface struct{}

// Show implements Surface.
func (NoopSurface) Show(context.Context, domain.SurfaceContent) error { return nil }

// Update implements Surface.
func (NoopSurface) Update(time.Duration) {}

// Hide implements Surface.
func (NoopSurface) Hide() {}

// Ensure NoopSurface implements Surface.
var _ Surface = NoopSurface{}

// AlertClearer removes the user alert posted when the task's alarm fired.
// The session clears it on unlock so a completed session leaves nothing
// behind.
type AlertClearer interface {
	// Clear removes any pending alert for the task. No-op if none exists.
	Clear(taskID int64)
}
