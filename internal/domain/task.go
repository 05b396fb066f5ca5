// Package domain provides shared domain types for the TEMPO time-blocking system.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrz1836/tempo/internal/constants"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// Task represents a single scheduled block of focused work.
//
// Identity and scheduling fields are immutable after creation; only status,
// the two actual timestamps, and the work log ever change, and each of those
// is set exactly once by its owning transition.
//
// Example JSON representation:
//
//	{
//	    "id": 42,
//	    "title": "Deep Work",
//	    "description": "",
//	    "scheduled_date": "2026-08-30T00:00:00+08:00",
//	    "scheduled_time_minutes": 630,
//	    "planned_duration_minutes": 25,
//	    "color": 4294921813,
//	    "status": "planned",
//	    "created_at": "2026-08-29T21:12:03+08:00",
//	    "schema_version": 1
//	}
type Task struct {
	// ID is the store-assigned integer identifier. Ids are never reused.
	ID int64 `json:"id"`

	// Title is a non-empty human-readable summary of the task.
	Title string `json:"title"`

	// Description is optional free-form detail.
	Description string `json:"description,omitempty"`

	// ScheduledDate is the day the task belongs to, normalized to local
	// midnight. Which-day queries key on this value.
	ScheduledDate time.Time `json:"scheduled_date"`

	// ScheduledTimeMinutes is the offset from ScheduledDate in minutes
	// (0–1439) at which the task starts.
	ScheduledTimeMinutes int `json:"scheduled_time_minutes"`

	// PlannedDurationMinutes is the length of the lock session. Positive.
	PlannedDurationMinutes int64 `json:"planned_duration_minutes"`

	// Color is an opaque 32-bit ARGB value used by the timeline display.
	Color uint32 `json:"color"`

	// Status represents the current state in the task lifecycle.
	// Uses constants.TaskStatus values (planned, in_progress, completed, abandoned).
	Status constants.TaskStatus `json:"status"`

	// StartTime is when the lock session marked the task in progress
	// (nil while planned). Set exactly once.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is when the work log was submitted (nil until completed).
	// Set exactly once, never before StartTime.
	EndTime *time.Time `json:"end_time,omitempty"`

	// WorkLog is the text submitted at completion (nil until completed).
	WorkLog *string `json:"work_log,omitempty"`

	// CreatedAt is when the task record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task record was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// SchemaVersion indicates the version of the Task struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// ScheduledStart returns the absolute instant the task is due to begin:
// the day boundary plus the time-of-day offset. Derived, never stored.
func (t *Task) ScheduledStart() time.Time {
	return t.ScheduledDate.Add(time.Duration(t.ScheduledTimeMinutes) * time.Minute)
}

// ScheduledEnd returns the scheduled start plus the planned duration.
func (t *Task) ScheduledEnd() time.Time {
	return t.ScheduledStart().Add(t.PlannedDuration())
}

// PlannedDuration returns the planned duration as a time.Duration.
func (t *Task) PlannedDuration() time.Duration {
	return time.Duration(t.PlannedDurationMinutes) * time.Minute
}

// IsPastScheduledTime reports whether now is at or past the scheduled start.
func (t *Task) IsPastScheduledTime(now time.Time) bool {
	return !now.Before(t.ScheduledStart())
}

// ActualDuration returns end minus start when both are set, zero otherwise.
// The boolean reports whether the value is meaningful.
func (t *Task) ActualDuration() (time.Duration, bool) {
	if t.StartTime == nil || t.EndTime == nil {
		return 0, false
	}
	return t.EndTime.Sub(*t.StartTime), true
}

// TimeRange formats the scheduled window as "10:30 - 11:30" for display.
func (t *Task) TimeRange() string {
	startHour := t.ScheduledTimeMinutes / 60
	startMin := t.ScheduledTimeMinutes % 60
	endTotal := t.ScheduledTimeMinutes + int(t.PlannedDurationMinutes)
	endHour := (endTotal / 60) % 24
	endMin := endTotal % 60
	return fmt.Sprintf("%02d:%02d - %02d:%02d", startHour, startMin, endHour, endMin)
}

// Validate checks the structural invariants that must hold on every write.
// Status is the single source of truth; the timestamps and work log are
// attributes of a status, never an alternate encoding of it.
//
// Returns a wrapped ErrValidation describing the first violation found.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title cannot be blank", tempoerrors.ErrValidation)
	}
	if t.PlannedDurationMinutes <= 0 {
		return fmt.Errorf("%w: planned duration must be positive, got %d",
			tempoerrors.ErrValidation, t.PlannedDurationMinutes)
	}
	if t.ScheduledTimeMinutes < 0 || t.ScheduledTimeMinutes >= constants.MinutesPerDay {
		return fmt.Errorf("%w: scheduled time %d outside [0, %d)",
			tempoerrors.ErrValidation, t.ScheduledTimeMinutes, constants.MinutesPerDay)
	}
	if t.EndTime != nil && t.StartTime == nil {
		return fmt.Errorf("%w: end time set without start time", tempoerrors.ErrValidation)
	}

	switch t.Status {
	case constants.TaskStatusPlanned:
		if t.StartTime != nil || t.EndTime != nil || t.WorkLog != nil {
			return fmt.Errorf("%w: planned task carries start/end/work-log data",
				tempoerrors.ErrValidation)
		}
	case constants.TaskStatusInProgress:
		if t.StartTime == nil {
			return fmt.Errorf("%w: in-progress task has no start time", tempoerrors.ErrValidation)
		}
		if t.EndTime != nil || t.WorkLog != nil {
			return fmt.Errorf("%w: in-progress task carries end/work-log data",
				tempoerrors.ErrValidation)
		}
	case constants.TaskStatusCompleted:
		if t.StartTime == nil || t.EndTime == nil || t.WorkLog == nil {
			return fmt.Errorf("%w: completed task missing start, end, or work log",
				tempoerrors.ErrValidation)
		}
	case constants.TaskStatusAbandoned:
		if t.EndTime != nil && t.StartTime == nil {
			return fmt.Errorf("%w: abandoned task has end without start", tempoerrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", tempoerrors.ErrValidation, t.Status)
	}

	return nil
}
