package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mrz1836/tempo/internal/errors"
)

// createWorkLogForm is the default factory for creating work-log entry forms.
// This variable can be overridden in tests to inject mock forms.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createWorkLogForm = defaultCreateWorkLogForm

// formRunner is an interface that matches huh.Form's Run method.
type formRunner interface {
	Run() error
}

// defaultCreateWorkLogForm creates the Charm Huh form for work-log entry.
// The entry must be non-empty: the work log is what turns a finished focus
// session into a completed task.
func defaultCreateWorkLogForm(title string, workLog *string) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("What did you get done on '%s'?", title)).
				Description("The task completes once the work log is saved.").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("work log %w", errors.ErrEmptyValue)
					}
					return nil
				}).
				Value(workLog),
		),
	)
}

// promptWorkLog asks the user for a work-log entry for the given task title.
func promptWorkLog(title string) (string, error) {
	var workLog string
	form := createWorkLogForm(title, &workLog)

	if err := form.Run(); err != nil {
		return "", err
	}

	return strings.TrimSpace(workLog), nil
}
