package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"proppanda_backend/internal/events"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

// reminderLead is how long before the viewing the reminder goes out.
const reminderLead = time.Hour

// Client enqueues delayed tasks. It also subscribes to booking events so
// reminders are scheduled without the engine knowing about the queue.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewClient creates a scheduler client.
func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	opts, err := asynq.ParseRedisURI(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Client{
		client: asynq.NewClient(opts),
		queue:  cfg.GetTaskQueueName(),
		log:    log,
	}, nil
}

// Close releases the underlying queue connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Register attaches the booking subscription to the bus.
func (c *Client) Register(bus events.Bus) {
	bus.Subscribe(events.AppointmentBooked{}.EventName(), events.HandlerFunc(c.onAppointmentBooked))
}

func (c *Client) onAppointmentBooked(_ context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentBooked)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	viewingAt, ok := parseViewingTime(e.Date, e.TimeRange)
	if !ok {
		// Bookings with unresolved placeholders get no automated reminder;
		// the agent confirms the time manually.
		return nil
	}

	remindAt := viewingAt.Add(-reminderLead)
	if remindAt.Before(time.Now()) {
		return nil
	}

	task, err := NewViewingReminderTask(ViewingReminderPayload{
		TenantID:     e.TenantID,
		ThreadID:     e.ThreadID,
		PropertyName: e.PropertyName,
		Date:         e.Date,
		TimeRange:    e.TimeRange,
	})
	if err != nil {
		return err
	}

	info, err := c.client.Enqueue(task, asynq.ProcessAt(remindAt), asynq.Queue(c.queue), asynq.MaxRetry(3))
	if err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	c.log.Info("reminder scheduled", "task_id", info.ID, "process_at", remindAt.String())
	return nil
}

// parseViewingTime combines a YYYY-MM-DD date with the start hour of a
// "HH:00 - HH:00" range, in Singapore time.
func parseViewingTime(date, timeRange string) (time.Time, bool) {
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		loc = time.UTC
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, false
	}

	parts := strings.SplitN(timeRange, "-", 2)
	if len(parts) == 0 {
		return time.Time{}, false
	}
	start := strings.TrimSpace(parts[0])
	hourPart := strings.SplitN(start, ":", 2)[0]
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}

	return day.Add(time.Duration(hour) * time.Hour), true
}
