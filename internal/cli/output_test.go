package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tempo/internal/errors"
)

func TestParseTaskID(t *testing.T) {
	id, err := parseTaskID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := parseTaskID(bad)
		require.Error(t, err, "input %q", bad)
		assert.ErrorIs(t, err, errors.ErrValidation)
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 17, 45, 0, 0, time.Local)
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)

	got, err := parseDate("today", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(today))

	got, err = parseDate("", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(today), "empty defaults to today")

	got, err = parseDate("tomorrow", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(today.AddDate(0, 0, 1)))

	got, err = parseDate("2026-09-15", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)))

	_, err = parseDate("next tuesday", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestParseClockTime(t *testing.T) {
	minutes, err := parseClockTime("10:30")
	require.NoError(t, err)
	assert.Equal(t, 630, minutes)

	minutes, err = parseClockTime("00:00")
	require.NoError(t, err)
	assert.Zero(t, minutes)

	minutes, err = parseClockTime("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, minutes)

	for _, bad := range []string{"", "25:00", "10:61", "9am", "9"} {
		_, err := parseClockTime(bad)
		require.Error(t, err, "input %q", bad)
		assert.ErrorIs(t, err, errors.ErrValidation)
	}
}

func TestParseColor(t *testing.T) {
	color, err := parseColor("")
	require.NoError(t, err)
	assert.Equal(t, uint32(defaultTaskColor), color)

	color, err = parseColor("#26A69A")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF26A69A), color)

	color, err = parseColor("26a69a")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF26A69A), color, "leading # is optional")

	for _, bad := range []string{"#FFF", "#GGGGGG", "#26A69A00"} {
		_, err := parseColor(bad)
		require.Error(t, err, "input %q", bad)
		assert.ErrorIs(t, err, errors.ErrValidation)
	}
}
