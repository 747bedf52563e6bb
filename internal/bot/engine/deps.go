// Package engine is the dialogue orchestration core: it routes each inbound
// message, advances the active flow, and produces exactly one reply per turn.
package engine

import (
	"context"

	"github.com/google/uuid"

	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/workflow"
)

// Completer is the slice of the LLM client the engine uses.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteJSON(ctx context.Context, system, user string, out any) error
}

// Geocoder resolves a location name, returning nil when it cannot.
type Geocoder interface {
	Resolve(ctx context.Context, locationName string) (*properties.GeoPoint, error)
}

// PropertyStore is the read side of the listing store.
type PropertyStore interface {
	Search(ctx context.Context, query string, args []any) ([]properties.Property, error)
	DistinctEnvironments(ctx context.Context, tenantID uuid.UUID, category properties.Category) (map[string]bool, error)
}

// CapabilityStore loads tenant capability flags by column name.
type CapabilityStore interface {
	GetCapabilities(ctx context.Context, tenantID uuid.UUID, columns []string) (tenant.Capabilities, error)
}

// WorkflowRunner triggers the automation webhooks.
type WorkflowRunner interface {
	GetAvailableSlots(ctx context.Context, req workflow.SlotsRequest) ([]workflow.DaySlots, error)
	ScheduleAppointment(ctx context.Context, req workflow.ScheduleRequest) error
	TriggerHandoff(ctx context.Context, req workflow.HandoffRequest) (string, error)
}

// KnowledgeProvider renders the tenant's knowledge base for grounding.
type KnowledgeProvider interface {
	ReferenceText(ctx context.Context, tenantID uuid.UUID) (string, error)
}
