package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubClock pins Now to a fixed instant.
type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "00:00"},
		{"negative clamps", -5 * time.Second, "00:00"},
		{"seconds only", 9 * time.Second, "00:09"},
		{"minutes and seconds", 5*time.Minute + 9*time.Second, "05:09"},
		{"just under an hour", 59*time.Minute + 59*time.Second, "59:59"},
		{"exactly an hour", time.Hour, "1:00:00"},
		{"hours", time.Hour + 5*time.Minute + 9*time.Second, "1:05:09"},
		{"sub-second rounds", 1500 * time.Millisecond, "00:02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCountdown(tt.d))
		})
	}
}

func TestFormatClockMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatClockMinutes(0))
	assert.Equal(t, "09:05", FormatClockMinutes(545))
	assert.Equal(t, "23:59", FormatClockMinutes(1439))
	assert.Equal(t, "00:50", FormatClockMinutes(1490), "windows past midnight wrap")
}

func TestRelativeTimeWith(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clk := stubClock{now: now}

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-10 * time.Minute), "10 minutes ago"},
		{"one hour", now.Add(-90 * time.Minute), "1 hour ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"one day", now.Add(-25 * time.Hour), "1 day ago"},
		{"days", now.Add(-3 * 24 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTimeWith(tt.t, clk))
		})
	}
}
