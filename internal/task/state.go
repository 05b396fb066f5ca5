// Package task provides task lifecycle management for TEMPO.
//
// This file implements the task state machine, which enforces valid state
// transitions and applies each transition's timestamp effects.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/alarm, internal/lock, internal/cli
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the task lifecycle.
// Format: from_status -> []to_statuses
//
// The state machine follows this flow:
//
//	Planned → InProgress, Abandoned
//	InProgress → Completed, Abandoned
//
// No code path in the core drives the Abandoned edges automatically; they
// exist for explicit manual cancellation only.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPlanned: {
		constants.TaskStatusInProgress,
		constants.TaskStatusAbandoned,
	},
	constants.TaskStatusInProgress: {
		constants.TaskStatusCompleted,
		constants.TaskStatusAbandoned,
	},
}

// terminalStatuses defines states where no further transitions are allowed.
// Terminal states are those NOT present as keys in ValidTransitions.
// MAINTENANCE: When adding new statuses, update both ValidTransitions and this map.
//
//nolint:gochecknoglobals // Read-only lookup table for terminal state checks
var terminalStatuses = map[constants.TaskStatus]bool{
	constants.TaskStatusCompleted: true,
	constants.TaskStatusAbandoned: true,
}

// IsValidTransition checks if a transition from one status to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to constants.TaskStatus) bool {
	// Same status is not a valid transition
	if from == to {
		return false
	}

	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal state or unknown state
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus returns true for states where no further transitions are allowed.
// Terminal states: Completed, Abandoned
func IsTerminalStatus(status constants.TaskStatus) bool {
	return terminalStatuses[status]
}

// Transition validates and applies a state transition to the task.
// The status-owned timestamps are applied here and nowhere else:
// entering InProgress sets the start time, entering Completed sets the end
// time. A caller completing a task must attach the work log before calling.
// The caller is responsible for persisting the updated task.
//
// Returns an error if:
//   - ctx is canceled
//   - task is nil
//   - The transition is invalid (returns wrapped ErrInvalidTransition)
//   - The resulting record violates the status invariants
func Transition(ctx context.Context, task *domain.Task, to constants.TaskStatus, now time.Time) error {
	// Check for cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if task == nil {
		return fmt.Errorf("%w: task is nil", tempoerrors.ErrInvalidTransition)
	}

	from := task.Status
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			tempoerrors.ErrInvalidTransition, from, to)
	}

	task.Status = to
	task.UpdatedAt = now

	// Timestamps are attributes of the status being entered. Each is set
	// exactly once; the transition table guarantees neither edge repeats.
	switch to {
	case constants.TaskStatusInProgress:
		start := now
		task.StartTime = &start
	case constants.TaskStatusCompleted:
		end := now
		task.EndTime = &end
	case constants.TaskStatusPlanned, constants.TaskStatusAbandoned:
		// No timestamp effects.
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("transition from %s to %s left invalid record: %w", from, to, err)
	}

	return nil
}
