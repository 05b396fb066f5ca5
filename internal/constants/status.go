package constants

// TaskStatus represents the state of a task in the TEMPO lifecycle.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
// These follow the task lifecycle state machine:
//
//	Planned → InProgress, Abandoned
//	InProgress → Completed, Abandoned
//
// Completed and Abandoned are terminal.
const (
	// TaskStatusPlanned indicates a task is scheduled but not yet started.
	// The alarm registration for a task lives exactly as long as this status.
	TaskStatusPlanned TaskStatus = "planned"

	// TaskStatusInProgress indicates a lock session started the task.
	// The start timestamp is set on entry to this status.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates the work log was submitted.
	// The end timestamp and work log are set on entry to this status.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusAbandoned indicates the task was manually cancelled.
	// Reachable from both Planned and InProgress; nothing in the core
	// drives this transition automatically.
	TaskStatusAbandoned TaskStatus = "abandoned"
)

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// AllTaskStatuses lists every status in lifecycle order. Call sites that
// switch over TaskStatus use this in tests to stay exhaustive when a new
// status is ever added.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusPlanned,
		TaskStatusInProgress,
		TaskStatusCompleted,
		TaskStatusAbandoned,
	}
}

// SessionState represents the state of the lock session controller.
type SessionState string

// Session state constants define the lock session machine:
//
//	Idle → Locking → Locked → Unlocking → Idle
const (
	// SessionIdle indicates no active lock session.
	SessionIdle SessionState = "idle"

	// SessionLocking indicates the session is starting: the task is being
	// marked in progress and the lock surface is being acquired.
	SessionLocking SessionState = "locking"

	// SessionLocked indicates the countdown is running and the lock surface is held.
	SessionLocked SessionState = "locked"

	// SessionUnlocking indicates the session is releasing its resources
	// and handing off to work-log capture.
	SessionUnlocking SessionState = "unlocking"
)

// String returns the string representation of the SessionState.
func (s SessionState) String() string {
	return string(s)
}

// StopReason records why a lock session ended. The two reasons are treated
// identically by the unlock transition; the distinction is kept for logging.
type StopReason string

// Stop reason constants.
const (
	// StopReasonExpired indicates the countdown reached zero.
	StopReasonExpired StopReason = "timer_expired"

	// StopReasonUserEnded indicates the user ended the session early.
	StopReasonUserEnded StopReason = "user_ended"
)

// String returns the string representation of the StopReason.
func (r StopReason) String() string {
	return string(r)
}
