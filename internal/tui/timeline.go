package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/tempo/internal/domain"
)

// Timeline layout constants.
const (
	// timelineTitleWidth is the column width reserved for task titles.
	timelineTitleWidth = 32

	// timelineBlockRune draws the colored duration block.
	timelineBlockRune = "█"

	// timelineMinutesPerCell is how many minutes one block cell represents.
	timelineMinutesPerCell = 15

	// timelineMaxCells caps the block width so very long tasks stay readable.
	timelineMaxCells = 24
)

// RenderTimeline renders a day's tasks as an ordered timeline, one row per
// task: time range, status icon, title, and a colored block sized to the
// planned duration. Tasks must already be ordered by time of day; the store
// guarantees that.
func RenderTimeline(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return StyleDim.Render("No tasks scheduled.") + "\n"
	}

	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(renderTimelineRow(t))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTimelineRow renders a single timeline row.
func renderTimelineRow(t *domain.Task) string {
	start := FormatClockMinutes(int64(t.ScheduledTimeMinutes))
	end := FormatClockMinutes(int64(t.ScheduledTimeMinutes) + t.PlannedDurationMinutes)

	icon := StatusStyle(t.Status).Render(StatusIcon(t.Status))
	title := truncateTitle(t.Title, timelineTitleWidth)
	block := renderDurationBlock(t)

	return fmt.Sprintf("%s–%s  %s  %s  %s", start, end, icon, title, block)
}

// renderDurationBlock draws a block of cells proportional to planned
// duration, colored with the task's display color.
func renderDurationBlock(t *domain.Task) string {
	cells := int(t.PlannedDurationMinutes / timelineMinutesPerCell)
	if cells < 1 {
		cells = 1
	}
	if cells > timelineMaxCells {
		cells = timelineMaxCells
	}

	block := strings.Repeat(timelineBlockRune, cells)
	if CheckNoColor() {
		return block
	}
	return lipgloss.NewStyle().Foreground(TaskColor(t.Color)).Render(block)
}

// truncateTitle pads or truncates a title to the given display width,
// accounting for wide runes.
func truncateTitle(title string, width int) string {
	if runewidth.StringWidth(title) > width {
		return runewidth.Truncate(title, width, "…")
	}
	return runewidth.FillRight(title, width)
}
