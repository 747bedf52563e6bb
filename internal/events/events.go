// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"proppanda_backend/platform/events"
	"proppanda_backend/platform/logger"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Conversation Domain Events
// =============================================================================

// TurnCompleted is published after a conversation turn has produced a reply
// and the state has been checkpointed. The conversation module subscribes to
// it to write the audit log.
type TurnCompleted struct {
	BaseEvent
	TenantID    string `json:"tenantId"`
	ThreadID    string `json:"threadId"`
	UserMessage string `json:"userMessage"`
	BotReply    string `json:"botReply"`
	ActiveFlow  string `json:"activeFlow,omitempty"`
}

func (e TurnCompleted) EventName() string { return "bot.turn.completed" }

// AppointmentBooked is published when a viewing has been scheduled with the
// workflow collaborator. The scheduler module subscribes to it to enqueue a
// reminder task.
type AppointmentBooked struct {
	BaseEvent
	TenantID     string `json:"tenantId"`
	ThreadID     string `json:"threadId"`
	UserName     string `json:"userName"`
	PropertyName string `json:"propertyName"`
	Date         string `json:"date"`
	TimeRange    string `json:"timeRange"`
	ViewingType  string `json:"viewingType"`
}

func (e AppointmentBooked) EventName() string { return "bot.appointment.booked" }

// HandoffTriggered is published when a conversation has been escalated to a
// human agent, either explicitly or automatically from chat.
type HandoffTriggered struct {
	BaseEvent
	TenantID  string `json:"tenantId"`
	ThreadID  string `json:"threadId"`
	Reason    string `json:"reason"`
	Automatic bool   `json:"automatic"`
}

func (e HandoffTriggered) EventName() string { return "bot.handoff.triggered" }
