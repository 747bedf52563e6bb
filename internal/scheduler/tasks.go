// Package scheduler enqueues and processes delayed tasks, currently viewing
// reminders, on an asynq queue backed by Redis.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeViewingReminder is the task type for pre-viewing reminder messages.
const TypeViewingReminder = "viewing:reminder"

// ViewingReminderPayload is everything the worker needs to send a reminder.
type ViewingReminderPayload struct {
	TenantID     string `json:"tenant_id"`
	ThreadID     string `json:"thread_id"`
	PropertyName string `json:"property_name"`
	Date         string `json:"date"`
	TimeRange    string `json:"time_range"`
}

// NewViewingReminderTask builds the asynq task for a reminder.
func NewViewingReminderTask(payload ViewingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode reminder payload: %w", err)
	}
	return asynq.NewTask(TypeViewingReminder, data), nil
}
