package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tempo/internal/constants"
	"github.com/mrz1836/tempo/internal/domain"
)

// timelineTask builds a task row for rendering tests.
func timelineTask(title string, minutes int, duration int64, status constants.TaskStatus) *domain.Task {
	return &domain.Task{
		ID:                     1,
		Title:                  title,
		ScheduledDate:          time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local),
		ScheduledTimeMinutes:   minutes,
		PlannedDurationMinutes: duration,
		Color:                  0xFF26A69A,
		Status:                 status,
	}
}

func TestRenderTimeline_Empty(t *testing.T) {
	out := RenderTimeline(nil)
	assert.Contains(t, out, "No tasks scheduled")
}

func TestRenderTimeline_Rows(t *testing.T) {
	tasks := []*domain.Task{
		timelineTask("Morning review", 540, 30, constants.TaskStatusCompleted),
		timelineTask("Deep work", 630, 50, constants.TaskStatusPlanned),
	}

	out := RenderTimeline(tasks)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "09:00–09:30")
	assert.Contains(t, lines[0], "Morning review")
	assert.Contains(t, lines[1], "10:30–11:20")
	assert.Contains(t, lines[1], "Deep work")
	assert.Contains(t, lines[1], timelineBlockRune)
}

// TestRenderTimeline_WrapsPastMidnight verifies a window crossing midnight
// renders a wrapped end time, matching Task.TimeRange.
func TestRenderTimeline_WrapsPastMidnight(t *testing.T) {
	row := renderTimelineRow(timelineTask("Night owl", 23*60+50, 60, constants.TaskStatusPlanned))
	assert.Contains(t, row, "23:50–00:50")
}

func TestRenderTimeline_BlockSizing(t *testing.T) {
	short := renderTimelineRow(timelineTask("Tiny", 0, 5, constants.TaskStatusPlanned))
	assert.Equal(t, 1, strings.Count(short, timelineBlockRune), "short tasks get one cell")

	hour := renderTimelineRow(timelineTask("Hour", 0, 60, constants.TaskStatusPlanned))
	assert.Equal(t, 4, strings.Count(hour, timelineBlockRune))

	long := renderTimelineRow(timelineTask("Marathon", 0, 10*60, constants.TaskStatusPlanned))
	assert.Equal(t, timelineMaxCells, strings.Count(long, timelineBlockRune), "blocks are capped")
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, timelineTitleWidth, len([]rune(truncateTitle("short", timelineTitleWidth))),
		"short titles are padded to the column width")

	long := strings.Repeat("x", timelineTitleWidth+10)
	got := truncateTitle(long, timelineTitleWidth)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestStatusIcon(t *testing.T) {
	seen := make(map[string]bool)
	for _, status := range constants.AllTaskStatuses() {
		icon := StatusIcon(status)
		assert.NotEqual(t, "?", icon, "every status has an icon")
		assert.False(t, seen[icon], "icons are distinct")
		seen[icon] = true
	}
	assert.Equal(t, "?", StatusIcon("bogus"))
}

func TestTaskColor(t *testing.T) {
	assert.Equal(t, "#26A69A", string(TaskColor(0xFF26A69A)), "alpha channel is dropped")
	assert.Equal(t, "#000000", string(TaskColor(0)))
}
