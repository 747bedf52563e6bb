package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/whatsapp"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

// TenantGetter loads tenant credentials for outbound messages.
type TenantGetter interface {
	GetByID(ctx context.Context, tenantID uuid.UUID) (*tenant.Tenant, error)
}

// Sender delivers the reminder over WhatsApp.
type Sender interface {
	SendText(ctx context.Context, creds whatsapp.Credentials, to, body string) error
}

// Worker consumes the task queue and sends reminder messages.
type Worker struct {
	server  *asynq.Server
	queue   string
	tenants TenantGetter
	sender  Sender
	log     *logger.Logger
}

// NewWorker creates the queue worker.
func NewWorker(cfg config.SchedulerConfig, tenants TenantGetter, sender Sender, log *logger.Logger) (*Worker, error) {
	opts, err := asynq.ParseRedisURI(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	server := asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{cfg.GetTaskQueueName(): 1},
	})

	return &Worker{
		server:  server,
		queue:   cfg.GetTaskQueueName(),
		tenants: tenants,
		sender:  sender,
		log:     log,
	}, nil
}

// Run blocks processing tasks until Shutdown is called.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeViewingReminder, w.handleViewingReminder)
	return w.server.Run(mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleViewingReminder(ctx context.Context, task *asynq.Task) error {
	var payload ViewingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode reminder payload: %w", err)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id: %w", err)
	}

	t, err := w.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"⏰ Reminder: your viewing for *%s* is coming up at %s on %s. See you there!",
		payload.PropertyName, payload.TimeRange, payload.Date,
	)
	creds := whatsapp.Credentials{
		PhoneNumberID: t.WhatsAppPhoneNumberID,
		AccessToken:   t.WhatsAppAccessToken,
	}
	if err := w.sender.SendText(ctx, creds, payload.ThreadID, body); err != nil {
		return err
	}

	w.log.Info("reminder sent", "thread_id", payload.ThreadID)
	return nil
}
