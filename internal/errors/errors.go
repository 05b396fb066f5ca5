// Package errors provides centralized error handling for TEMPO.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrValidation indicates malformed task creation input (blank title,
	// non-positive duration, out-of-range time of day). Surfaced to the
	// caller synchronously; never persisted.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates a lifecycle transition was attempted
	// from a status that does not permit it. Treated as a safety rejection,
	// not a crash; a duplicate alarm trigger lands here and goes no further.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSchedulingPermission indicates the platform denied exact-alarm
	// capability. Recovered locally via the best-effort fallback path.
	ErrSchedulingPermission = errors.New("exact scheduling not permitted")

	// ErrSchedulingUnavailable indicates no wake-up could be registered at
	// all, exact or best-effort. The task is left un-alarmed but startable.
	ErrSchedulingUnavailable = errors.New("scheduling unavailable")

	// ErrResourceUnavailable indicates the lock surface could not be drawn
	// or the foreground session was refused.
	ErrResourceUnavailable = errors.New("lock resource unavailable")

	// ErrTaskNotFound indicates a lookup by id found nothing. Absence is
	// routine (a stale alarm may reference a deleted task); the manager
	// converts this to a nil result.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates an attempt to create a task record whose id
	// is already on disk.
	ErrTaskExists = errors.New("task already exists")

	// ErrSessionActive indicates a lock session start was refused because
	// another session already holds the lock surface.
	ErrSessionActive = errors.New("lock session already active")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrEmptyPayload indicates a wake-up trigger arrived without a task id.
	ErrEmptyPayload = errors.New("trigger payload has no task id")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrCorruptRecord indicates a task state file could not be parsed.
	ErrCorruptRecord = errors.New("corrupted task record")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)
