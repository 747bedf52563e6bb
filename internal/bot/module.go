// Package bot assembles the dialogue engine from its collaborators. It has
// no HTTP surface of its own; the webhook module drives it.
package bot

import (
	"proppanda_backend/internal/bot/checkpoint"
	"proppanda_backend/internal/bot/engine"
	"proppanda_backend/internal/events"
	"proppanda_backend/platform/logger"
	"proppanda_backend/platform/validator"
)

// Module owns the assembled dialogue engine.
type Module struct {
	orchestrator *engine.Orchestrator
}

// Deps are the collaborators the engine is built from. Interfaces keep the
// module testable with fakes.
type Deps struct {
	Store      checkpoint.Store
	Bus        events.Bus
	Logger     *logger.Logger
	Completer  engine.Completer
	Geocoder   engine.Geocoder
	Properties engine.PropertyStore
	Tenants    engine.CapabilityStore
	Workflows  engine.WorkflowRunner
	Knowledge  engine.KnowledgeProvider
}

// NewModule wires the engine together.
func NewModule(d Deps) *Module {
	return &Module{
		orchestrator: engine.NewOrchestrator(
			d.Store,
			d.Bus,
			d.Logger,
			engine.NewRouter(d.Completer, d.Logger),
			engine.NewExtractor(d.Completer, d.Logger),
			engine.NewCapabilityGate(d.Tenants),
			engine.NewInventoryCheck(d.Properties),
			engine.NewSearcher(d.Geocoder, d.Properties, d.Logger),
			engine.NewQuestionGenerator(d.Completer, d.Logger),
			engine.NewChatHandler(d.Completer, d.Knowledge, d.Logger),
			engine.NewAppointmentFlow(d.Workflows, d.Completer, validator.New(), d.Logger),
			engine.NewHandoffFlow(d.Workflows, d.Logger),
		),
	}
}

// Engine returns the turn orchestrator.
func (m *Module) Engine() *engine.Orchestrator {
	return m.orchestrator
}
