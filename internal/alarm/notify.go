package alarm

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// NotifierConfig holds configuration for task-due alerts.
type NotifierConfig struct {
	// BellEnabled controls whether the terminal bell rings with the alert.
	BellEnabled bool

	// Quiet suppresses all alert output.
	Quiet bool
}

// DefaultNotifierConfig returns sensible defaults.
// These should match config.DefaultConfig().Notifications for consistency.
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		BellEnabled: true,
		Quiet:       false,
	}
}

// Notifier posts the high-urgency "task due" alert when a wake-up fires.
// The alert is the user's guaranteed signal: it is posted before the lock
// session starts, so even when the lock surface cannot be drawn the user
// still learns the task is due. It is cleared on session unlock.
type Notifier struct {
	config NotifierConfig
	writer io.Writer
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[int64]bool
}

// NewNotifier creates a Notifier writing alerts to stdout.
func NewNotifier(cfg NotifierConfig, log zerolog.Logger) *Notifier {
	return NewNotifierWithWriter(cfg, log, os.Stdout)
}

// NewNotifierWithWriter creates a Notifier with a custom writer.
// This is useful for testing.
func NewNotifierWithWriter(cfg NotifierConfig, log zerolog.Logger, w io.Writer) *Notifier {
	return &Notifier{
		config:  cfg,
		writer:  w,
		log:     log.With().Str("component", "notifier").Logger(),
		pending: make(map[int64]bool),
	}
}

// TaskDue posts the alert for a due task.
func (n *Notifier) TaskDue(taskID int64, title string) {
	if n == nil {
		return
	}

	n.mu.Lock()
	n.pending[taskID] = true
	n.mu.Unlock()

	n.log.Info().Int64("task_id", taskID).Str("title", title).Msg("task due")

	if n.config.Quiet {
		return
	}

	bell := ""
	if n.config.BellEnabled {
		bell = "\a"
	}
	_, _ = fmt.Fprintf(n.writer, "%s⏰ %s — time to focus\n", bell, title)
}

// Clear removes the pending alert for a task. No-op if none exists.
// Satisfies the lock package's AlertClearer boundary.
func (n *Notifier) Clear(taskID int64) {
	if n == nil {
		return
	}

	n.mu.Lock()
	wasPending := n.pending[taskID]
	delete(n.pending, taskID)
	n.mu.Unlock()

	if wasPending {
		n.log.Debug().Int64("task_id", taskID).Msg("alert cleared")
	}
}

// PendingAlert reports whether an alert is outstanding for the task.
func (n *Notifier) PendingAlert(taskID int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending[taskID]
}
