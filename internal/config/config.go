// Package config provides configuration management for TEMPO with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (TEMPO_* prefix)
//  3. Global config (~/.tempo/config.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for TEMPO.
// It contains all configuration sections for the application.
type Config struct {
	// Scheduler contains settings for alarm scheduling.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler" mapstructure:"scheduler"`

	// Session contains settings for the lock session.
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`

	// Notifications contains settings for task-due alerts.
	Notifications NotificationsConfig `json:"notifications" yaml:"notifications" mapstructure:"notifications"`
}

// SchedulerConfig contains settings for alarm scheduling.
type SchedulerConfig struct {
	// ExactAlarms controls whether exact, doze-resistant delivery is
	// requested. When the platform refuses it the scheduler degrades to
	// best-effort delivery on its own; setting this false skips straight
	// to best effort.
	// Default: true
	ExactAlarms bool `json:"exact_alarms" yaml:"exact_alarms" mapstructure:"exact_alarms"`

	// RefreshInterval is how often the daemon re-sweeps pending tasks so
	// records created by other processes gain registrations. Safe at any
	// cadence because registration replaces by task id.
	// Default: 1m
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// SessionConfig contains settings for the lock session.
type SessionConfig struct {
	// TickInterval is the countdown display cadence.
	// Default: 1s
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval" mapstructure:"tick_interval"`

	// Surface selects the lock surface implementation: "tui" for the
	// full-screen terminal surface, "none" for headless operation.
	// Default: "tui"
	Surface string `json:"surface" yaml:"surface" mapstructure:"surface"`
}

// NotificationsConfig contains settings for task-due alerts.
type NotificationsConfig struct {
	// BellEnabled controls whether the terminal bell rings with an alert.
	// Default: true
	BellEnabled bool `json:"bell_enabled" yaml:"bell_enabled" mapstructure:"bell_enabled"`

	// Quiet suppresses all alert output.
	// Default: false
	Quiet bool `json:"quiet" yaml:"quiet" mapstructure:"quiet"`
}

// Surface implementation names accepted by SessionConfig.Surface.
const (
	// SurfaceTUI is the full-screen terminal lock surface.
	SurfaceTUI = "tui"

	// SurfaceNone disables the lock surface entirely.
	SurfaceNone = "none"
)
