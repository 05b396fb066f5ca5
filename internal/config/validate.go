package config

import (
	"fmt"

	"github.com/mrz1836/tempo/internal/errors"
)

// Validate checks that every configuration value is usable.
// Returns a wrapped ErrConfigInvalid describing the first violation found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Scheduler.RefreshInterval <= 0 {
		return fmt.Errorf("%w: scheduler.refresh_interval must be positive, got %s",
			errors.ErrConfigInvalid, cfg.Scheduler.RefreshInterval)
	}

	if cfg.Session.TickInterval <= 0 {
		return fmt.Errorf("%w: session.tick_interval must be positive, got %s",
			errors.ErrConfigInvalid, cfg.Session.TickInterval)
	}

	switch cfg.Session.Surface {
	case SurfaceTUI, SurfaceNone:
	default:
		return fmt.Errorf("%w: session.surface must be %q or %q, got %q",
			errors.ErrConfigInvalid, SurfaceTUI, SurfaceNone, cfg.Session.Surface)
	}

	return nil
}
