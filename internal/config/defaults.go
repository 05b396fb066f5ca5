package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/mrz1836/tempo/internal/constants"
)

// Default values for all configuration keys.
const (
	defaultExactAlarms     = true
	defaultRefreshInterval = 1 * time.Minute
	defaultSurface         = SurfaceTUI
	defaultBellEnabled     = true
	defaultQuiet           = false
)

// DefaultConfig returns the built-in defaults as a Config struct.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			ExactAlarms:     defaultExactAlarms,
			RefreshInterval: defaultRefreshInterval,
		},
		Session: SessionConfig{
			TickInterval: constants.CountdownTick,
			Surface:      defaultSurface,
		},
		Notifications: NotificationsConfig{
			BellEnabled: defaultBellEnabled,
			Quiet:       defaultQuiet,
		},
	}
}

// setDefaults registers every default with the given viper instance so that
// unset keys resolve to them at any precedence level.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.exact_alarms", defaultExactAlarms)
	v.SetDefault("scheduler.refresh_interval", defaultRefreshInterval.String())
	v.SetDefault("session.tick_interval", constants.CountdownTick.String())
	v.SetDefault("session.surface", defaultSurface)
	v.SetDefault("notifications.bell_enabled", defaultBellEnabled)
	v.SetDefault("notifications.quiet", defaultQuiet)
}
