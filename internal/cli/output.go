package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tempo/internal/clock"
	"github.com/mrz1836/tempo/internal/domain"
	"github.com/mrz1836/tempo/internal/errors"
	"github.com/mrz1836/tempo/internal/task"
	"github.com/mrz1836/tempo/internal/tui"
)

// newTaskManager constructs the file-backed task manager every command uses.
func newTaskManager(logger zerolog.Logger) (*task.Manager, error) {
	tempoHome, err := getTempoHome()
	if err != nil {
		return nil, err
	}
	store, err := task.NewFileStore(tempoHome)
	if err != nil {
		return nil, err
	}
	return task.NewManager(store, clock.RealClock{}, logger), nil
}

// taskResult is the JSON shape commands emit for a single task.
type taskResult struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Date            string `json:"date"`
	TimeRange       string `json:"time_range"`
	DurationMinutes int64  `json:"duration_minutes"`
	Status          string `json:"status"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	WorkLog         string `json:"work_log,omitempty"`
}

// newTaskResult converts a task record to its JSON output shape.
func newTaskResult(t *domain.Task) taskResult {
	r := taskResult{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Date:            t.ScheduledDate.Format("2006-01-02"),
		TimeRange:       t.TimeRange(),
		DurationMinutes: t.PlannedDurationMinutes,
		Status:          t.Status.String(),
	}
	if t.StartTime != nil {
		r.StartTime = t.StartTime.Format(time.RFC3339)
	}
	if t.EndTime != nil {
		r.EndTime = t.EndTime.Format(time.RFC3339)
	}
	if t.WorkLog != nil {
		r.WorkLog = *t.WorkLog
	}
	return r
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// renderTaskLine formats a single task for text output.
func renderTaskLine(t *domain.Task) string {
	icon := tui.StatusStyle(t.Status).Render(tui.StatusIcon(t.Status))
	return fmt.Sprintf("#%d %s %s  %s (%dm)", t.ID, icon, t.TimeRange(), t.Title, t.PlannedDurationMinutes)
}

// parseTaskID parses a positive task id from a command argument.
func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: task id must be a positive integer, got %q", errors.ErrValidation, arg)
	}
	return id, nil
}

// parseDate parses a date flag: "today", "tomorrow", or "2006-01-02".
// Returns the local day boundary.
func parseDate(value string, now time.Time) (time.Time, error) {
	switch strings.ToLower(value) {
	case "", "today":
		return clock.DayStart(now), nil
	case "tomorrow":
		return clock.DayStart(now).AddDate(0, 0, 1), nil
	}

	parsed, err := time.ParseInLocation("2006-01-02", value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be today, tomorrow, or YYYY-MM-DD, got %q",
			errors.ErrValidation, value)
	}
	return clock.DayStart(parsed), nil
}

// parseClockTime parses "HH:MM" into minutes from midnight.
func parseClockTime(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("%w: time must be HH:MM, got %q", errors.ErrValidation, value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// parseColor parses an optional "#RRGGBB" hex color into an ARGB value with
// full alpha. An empty value selects the default block color.
func parseColor(value string) (uint32, error) {
	if value == "" {
		return defaultTaskColor, nil
	}
	hex := strings.TrimPrefix(value, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("%w: color must be #RRGGBB, got %q", errors.ErrValidation, value)
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color must be #RRGGBB, got %q", errors.ErrValidation, value)
	}
	return 0xFF000000 | uint32(rgb), nil
}

// defaultTaskColor is the timeline block color when none is given (teal,
// full alpha).
const defaultTaskColor = 0xFF26A69A
