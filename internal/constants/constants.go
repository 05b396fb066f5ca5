// Package constants provides centralized constant values used throughout TEMPO.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by TEMPO for state persistence.
const (
	// TaskFilePattern is the printf pattern for per-task JSON files (keyed by id).
	TaskFilePattern = "%06d.json"

	// CounterFileName is the file holding the next task id. Ids are assigned
	// monotonically and never reused, even after deletion.
	CounterFileName = "next_id"

	// CLILogFileName is the global log file under the logs directory.
	CLILogFileName = "tempo.log"

	// GlobalConfigName is the configuration file in the TEMPO home directory.
	GlobalConfigName = "config.yaml"
)

// Directory names used by TEMPO for organizing data.
const (
	// TempoHome is the hidden directory name where TEMPO stores all its data.
	// This directory is created in the user's home directory.
	TempoHome = ".tempo"

	// TasksDir is the directory name where task records are stored.
	TasksDir = "tasks"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Timing configuration for the alarm and lock subsystems.
const (
	// CountdownTick is the cadence of the lock session countdown signal.
	// Purely a display refresh rate; the deadline itself is absolute.
	CountdownTick = 1 * time.Second

	// WakeGuardTimeout bounds how long the trigger handler may hold the
	// wake guarantee while handing off to the lock session controller.
	WakeGuardTimeout = 60 * time.Second

	// BootSweepTimeout bounds the reschedule sweep run at startup. One-shot
	// boot handlers get tens of seconds at most, so the scan must fit inside it.
	BootSweepTimeout = 30 * time.Second
)

// Scheduling limits.
const (
	// MinutesPerDay is the upper bound (exclusive) for a task's time-of-day offset.
	MinutesPerDay = 24 * 60
)

// Log rotation settings for the global log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of retained files.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// Schema version constants for data migration support.
const (
	// TaskSchemaVersion is the current version of the task record schema.
	TaskSchemaVersion = 1
)
