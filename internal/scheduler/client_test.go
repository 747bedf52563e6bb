package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewingTime(t *testing.T) {
	at, ok := parseViewingTime("2026-10-01", "14:00 - 15:00")
	require.True(t, ok)
	assert.Equal(t, 14, at.Hour())
	assert.Equal(t, 1, at.Day())
	assert.Equal(t, "Asia/Singapore", at.Location().String())
}

func TestParseViewingTimeRejectsPlaceholders(t *testing.T) {
	_, ok := parseViewingTime("UNKNOWN-DATE", "14:00 - 15:00")
	assert.False(t, ok)

	_, ok = parseViewingTime("2026-10-01", "UNKNOWN-TIME")
	assert.False(t, ok)
}

func TestParseViewingTimeRejectsBadHours(t *testing.T) {
	_, ok := parseViewingTime("2026-10-01", "25:00 - 26:00")
	assert.False(t, ok)
}

func TestNewViewingReminderTask(t *testing.T) {
	task, err := NewViewingReminderTask(ViewingReminderPayload{
		TenantID:     "t",
		ThreadID:     "659",
		PropertyName: "Sunrise Loft",
		Date:         "2026-10-01",
		TimeRange:    "14:00 - 15:00",
	})
	require.NoError(t, err)
	assert.Equal(t, TypeViewingReminder, task.Type())
	assert.Contains(t, string(task.Payload()), "Sunrise Loft")
}
