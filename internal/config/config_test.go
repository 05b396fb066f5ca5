package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tempoerrors "github.com/mrz1836/tempo/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Scheduler.ExactAlarms)
	assert.Equal(t, time.Minute, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.Equal(t, SurfaceTUI, cfg.Session.Surface)
	assert.True(t, cfg.Notifications.BellEnabled)
	assert.False(t, cfg.Notifications.Quiet)

	require.NoError(t, Validate(cfg), "defaults must validate")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"zero refresh interval", func(c *Config) { c.Scheduler.RefreshInterval = 0 }, tempoerrors.ErrConfigInvalid},
		{"negative tick interval", func(c *Config) { c.Session.TickInterval = -time.Second }, tempoerrors.ErrConfigInvalid},
		{"unknown surface", func(c *Config) { c.Session.Surface = "hologram" }, tempoerrors.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrConfigNil)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_GlobalConfigFile(t *testing.T) {
	home := t.TempDir()
	content := []byte(`scheduler:
  exact_alarms: false
  refresh_interval: 5m
session:
  surface: none
`)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), content, 0o600))

	cfg, err := Load(context.Background(), home)
	require.NoError(t, err)

	assert.False(t, cfg.Scheduler.ExactAlarms)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, SurfaceNone, cfg.Session.Surface)
	// Untouched sections keep their defaults.
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.True(t, cfg.Notifications.BellEnabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	content := []byte("session:\n  tick_interval: 2s\n")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), content, 0o600))

	t.Setenv("TEMPO_SESSION_TICK_INTERVAL", "250ms")
	t.Setenv("TEMPO_NOTIFICATIONS_QUIET", "true")

	cfg, err := Load(context.Background(), home)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.TickInterval)
	assert.True(t, cfg.Notifications.Quiet)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	home := t.TempDir()
	content := []byte("session:\n  surface: hologram\n")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), content, 0o600))

	_, err := Load(context.Background(), home)
	require.Error(t, err)
	assert.ErrorIs(t, err, tempoerrors.ErrConfigInvalid)
}

func TestGlobalConfigPath(t *testing.T) {
	path, err := GlobalConfigPath("/tmp/tempo-home")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/tempo-home", "config.yaml"), path)
}
