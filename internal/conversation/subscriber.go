package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"proppanda_backend/internal/events"
	"proppanda_backend/platform/logger"
)

// Subscriber writes every completed turn into the durable transcript. It
// runs off the event bus so a slow insert never delays the reply.
type Subscriber struct {
	repo *Repository
	log  *logger.Logger
}

// NewSubscriber creates the transcript subscriber.
func NewSubscriber(repo *Repository, log *logger.Logger) *Subscriber {
	return &Subscriber{repo: repo, log: log}
}

// Register attaches the subscriber to the bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.TurnCompleted{}.EventName(), events.HandlerFunc(s.onTurnCompleted))
}

func (s *Subscriber) onTurnCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.TurnCompleted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	tenantID, err := uuid.Parse(e.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id in event: %w", err)
	}

	if err := s.repo.LogMessage(ctx, tenantID, e.ThreadID, "user", e.UserMessage); err != nil {
		s.log.DatabaseError("log_user_message", err)
		return err
	}
	if err := s.repo.LogMessage(ctx, tenantID, e.ThreadID, "assistant", e.BotReply); err != nil {
		s.log.DatabaseError("log_bot_message", err)
		return err
	}
	return nil
}
