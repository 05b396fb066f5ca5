// Package task provides task persistence and lifecycle management for TEMPO.
// This file implements the storage layer for task records, with atomic
// writes and file locking for data integrity.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/ctxutil"
	"github.com/mrz1836/tempo/internal/domain"
	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

// LockTimeout is the maximum duration to wait for acquiring the store lock.
const LockTimeout = 5 * time.Second

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// taskFileRegex matches task record file names (zero-padded id + .json).
var taskFileRegex = regexp.MustCompile(`^\d{6,}\.json$`)

// Store defines the interface for task persistence operations.
// Lifecycle transitions reach the store as single full-record writes gated
// by a status precondition, so per-task ordering is naturally serialized.
type Store interface {
	// Insert persists a new task and returns its assigned id.
	// Ids are monotonically increasing and never reused.
	Insert(ctx context.Context, task *domain.Task) (int64, error)

	// GetByID retrieves a task by id.
	// Returns ErrTaskNotFound if the task doesn't exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update saves the current task state (atomic full-record replace).
	// Returns ErrTaskNotFound if the task doesn't exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task record.
	Delete(ctx context.Context, id int64) error

	// GetByDate returns all tasks whose scheduled date equals the given day
	// boundary, ordered by scheduled time-of-day ascending.
	GetByDate(ctx context.Context, date time.Time) ([]*domain.Task, error)

	// GetPendingSince returns all tasks with the given status whose
	// scheduled date is at or after the given day boundary, ordered by
	// scheduled date then time-of-day ascending. The boot sweep uses this
	// with status planned.
	GetPendingSince(ctx context.Context, date time.Time, status constants.TaskStatus) ([]*domain.Task, error)
}

// FileStore implements Store using the local filesystem.
// Each task lives in its own JSON file under <home>/tasks; a counter file
// hands out ids under an exclusive flock so they are never reused.
type FileStore struct {
	tempoHome string // Usually ~/.tempo
}

// NewFileStore creates a new FileStore with the given tempo home directory.
// If tempoHome is empty, uses the default ~/.tempo directory.
func NewFileStore(tempoHome string) (*FileStore, error) {
	if tempoHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		tempoHome = filepath.Join(home, constants.TempoHome)
	}
	return &FileStore{tempoHome: tempoHome}, nil
}

// Insert persists a new task and returns its assigned id.
func (s *FileStore) Insert(ctx context.Context, task *domain.Task) (int64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}
	if task == nil {
		return 0, fmt.Errorf("failed to insert task: task %w", tempoerrors.ErrEmptyValue)
	}
	if err := task.Validate(); err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}

	if err := os.MkdirAll(s.tasksDir(), dirPerm); err != nil {
		return 0, fmt.Errorf("failed to create tasks directory: %w", err)
	}

	// The id counter and the record write share one critical section so a
	// crash between them cannot leak an id into a second record.
	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	id, err := s.nextID()
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID = id
	task.SchemaVersion = constants.TaskSchemaVersion

	taskFile := s.taskFilePath(id)
	if _, err := os.Stat(taskFile); err == nil {
		return 0, fmt.Errorf("failed to insert task %d: %w", id, tempoerrors.ErrTaskExists)
	}

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to insert task %d: %w", id, err)
	}
	if err := atomicWrite(taskFile, data); err != nil {
		return 0, fmt.Errorf("failed to insert task %d: %w", id, err)
	}

	return id, nil
}

// GetByID retrieves a task by id.
func (s *FileStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("failed to get task: id %w", tempoerrors.ErrEmptyValue)
	}

	data, err := os.ReadFile(s.taskFilePath(id)) //#nosec G304 -- path is constructed from a numeric id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get task %d: %w", id, tempoerrors.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to read task %d: %w", id, err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task %d: %w: %v", id, tempoerrors.ErrCorruptRecord, err)
	}

	return &task, nil
}

// Update saves the current task state (atomic full-record replace).
func (s *FileStore) Update(ctx context.Context, task *domain.Task) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("failed to update task: task %w", tempoerrors.ErrEmptyValue)
	}
	if task.ID <= 0 {
		return fmt.Errorf("failed to update task: id %w", tempoerrors.ErrEmptyValue)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}

	taskFile := s.taskFilePath(task.ID)
	if _, err := os.Stat(taskFile); os.IsNotExist(err) {
		return fmt.Errorf("failed to update task %d: %w", task.ID, tempoerrors.ErrTaskNotFound)
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	task.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	if err := atomicWrite(taskFile, data); err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}

	return nil
}

// Delete removes a task record. The id is not returned to the counter.
func (s *FileStore) Delete(ctx context.Context, id int64) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("failed to delete task: id %w", tempoerrors.ErrEmptyValue)
	}

	taskFile := s.taskFilePath(id)
	if _, err := os.Stat(taskFile); os.IsNotExist(err) {
		return fmt.Errorf("failed to delete task %d: %w", id, tempoerrors.ErrTaskNotFound)
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	if err := os.Remove(taskFile); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	return nil
}

// GetByDate returns all tasks scheduled on the given day, ordered by
// time-of-day ascending. The date is normalized to its day boundary before
// comparison.
func (s *FileStore) GetByDate(ctx context.Context, date time.Time) ([]*domain.Task, error) {
	day := clock.DayStart(date)

	tasks, err := s.scan(ctx, func(t *domain.Task) bool {
		return t.ScheduledDate.Equal(day)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for %s: %w", day.Format("2006-01-02"), err)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ScheduledTimeMinutes < tasks[j].ScheduledTimeMinutes
	})

	return tasks, nil
}

// GetPendingSince returns all tasks with the given status scheduled on or
// after the given day boundary, ordered by date then time-of-day ascending.
func (s *FileStore) GetPendingSince(ctx context.Context, date time.Time, status constants.TaskStatus) ([]*domain.Task, error) {
	day := clock.DayStart(date)

	tasks, err := s.scan(ctx, func(t *domain.Task) bool {
		return t.Status == status && !t.ScheduledDate.Before(day)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].ScheduledDate.Equal(tasks[j].ScheduledDate) {
			return tasks[i].ScheduledDate.Before(tasks[j].ScheduledDate)
		}
		return tasks[i].ScheduledTimeMinutes < tasks[j].ScheduledTimeMinutes
	})

	return tasks, nil
}

// scan reads every task record and returns those matching the filter.
// Records that fail to parse are skipped; a corrupt file must not take the
// whole listing down.
func (s *FileStore) scan(ctx context.Context, match func(*domain.Task) bool) ([]*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tasksDir := s.tasksDir()
	if _, err := os.Stat(tasksDir); os.IsNotExist(err) {
		return []*domain.Task{}, nil
	}

	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !taskFileRegex.MatchString(entry.Name()) {
			continue
		}

		// Check for cancellation during iteration
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		task, err := s.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if match(task) {
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

// Helper methods for path construction

// tasksDir returns the path to the tasks directory.
func (s *FileStore) tasksDir() string {
	return filepath.Join(s.tempoHome, constants.TasksDir)
}

// taskFilePath returns the path to a task's JSON file.
func (s *FileStore) taskFilePath(id int64) string {
	return filepath.Join(s.tasksDir(), fmt.Sprintf(constants.TaskFilePattern, id))
}

// counterFilePath returns the path to the id counter file.
func (s *FileStore) counterFilePath() string {
	return filepath.Join(s.tasksDir(), constants.CounterFileName)
}

// lockFilePath returns the path to the store lock file.
func (s *FileStore) lockFilePath() string {
	return filepath.Join(s.tasksDir(), constants.CounterFileName+".lock")
}

// nextID reads, increments, and writes back the id counter.
// Caller must hold the store lock.
func (s *FileStore) nextID() (int64, error) {
	counterPath := s.counterFilePath()

	next := int64(1)
	if data, err := os.ReadFile(counterPath); err == nil { //#nosec G304 -- path is constructed internally
		parsed, parseErr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if parseErr == nil && parsed > 0 {
			next = parsed
		}
	}

	if err := atomicWrite(counterPath, []byte(strconv.FormatInt(next+1, 10))); err != nil {
		return 0, fmt.Errorf("failed to advance id counter: %w", err)
	}

	return next, nil
}

// acquireLock acquires the exclusive store lock.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileStore) acquireLock(ctx context.Context) (*os.File, error) {
	if err := os.MkdirAll(s.tasksDir(), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockFilePath(), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire lock with timeout
	deadline := time.Now().Add(LockTimeout)
	for {
		if err := ctxutil.Canceled(ctx); err != nil {
			_ = f.Close()
			return nil, err
		}

		err := flockExclusive(f.Fd())
		if err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", tempoerrors.ErrLockTimeout)
		}

		// Wait a bit before retrying
		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases the store lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}

	if err := flockUnlock(f.Fd()); err != nil {
		// Still try to close the file
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
