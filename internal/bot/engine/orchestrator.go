package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proppanda_backend/internal/bot/checkpoint"
	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/events"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/platform/logger"
)

// Orchestrator drives one conversation turn end to end: load the thread's
// checkpoint, route the message, run the chosen handler, save, and publish.
// Turns on the same thread are serialized; different threads run freely.
type Orchestrator struct {
	store checkpoint.Store
	locks *checkpoint.ThreadLocks
	bus   events.Bus
	log   *logger.Logger

	router      *Router
	extractor   *Extractor
	gate        *CapabilityGate
	inventory   *InventoryCheck
	searcher    *Searcher
	generator   *QuestionGenerator
	chat        *ChatHandler
	appointment *AppointmentFlow
	handoff     *HandoffFlow
}

// NewOrchestrator assembles the engine.
func NewOrchestrator(
	store checkpoint.Store,
	bus events.Bus,
	log *logger.Logger,
	router *Router,
	extractor *Extractor,
	gate *CapabilityGate,
	inventory *InventoryCheck,
	searcher *Searcher,
	generator *QuestionGenerator,
	chat *ChatHandler,
	appointment *AppointmentFlow,
	handoff *HandoffFlow,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		locks:       checkpoint.NewThreadLocks(),
		bus:         bus,
		log:         log,
		router:      router,
		extractor:   extractor,
		gate:        gate,
		inventory:   inventory,
		searcher:    searcher,
		generator:   generator,
		chat:        chat,
		appointment: appointment,
		handoff:     handoff,
	}
}

// HandleTurn processes one inbound message and returns the single reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, t *tenant.Tenant, threadID, message string) (string, error) {
	release := o.locks.Acquire(threadID)
	defer release()

	started := time.Now()

	st, err := o.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}
	if st == nil {
		st = state.New(threadID)
	}
	st.AddUserMessage(message)

	route := o.router.Resolve(ctx, st)
	reply, err := o.dispatch(ctx, t, st, route)
	if err != nil {
		return "", err
	}
	st.AddBotMessage(reply)

	if err := o.store.Save(ctx, st); err != nil {
		return "", err
	}

	o.bus.Publish(ctx, events.TurnCompleted{
		BaseEvent:   events.NewBaseEvent(),
		TenantID:    t.ID.String(),
		ThreadID:    threadID,
		UserMessage: message,
		BotReply:    reply,
		ActiveFlow:  string(st.ActiveFlow),
	})
	o.log.TurnCompleted(threadID, routeName(route), float64(time.Since(started).Milliseconds()))

	return reply, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, t *tenant.Tenant, st *state.ConversationState, route Route) (string, error) {
	switch route.Kind {
	case RouteAppointmentExit:
		return o.appointment.ExitReply(st), nil

	case RouteAppointment:
		reply, booked, err := o.appointment.Handle(ctx, t, st)
		if err != nil {
			return "", err
		}
		if booked != nil {
			o.bus.Publish(ctx, events.AppointmentBooked{
				BaseEvent:    events.NewBaseEvent(),
				TenantID:     t.ID.String(),
				ThreadID:     st.ThreadID,
				UserName:     booked.Email,
				PropertyName: booked.PropertyName,
				Date:         booked.SlotDate,
				TimeRange:    booked.SlotTime,
				ViewingType:  booked.ViewingType,
			})
		}
		return reply, nil

	case RouteHandoffExit:
		return o.handoff.ExitReply(st), nil

	case RouteHandoff:
		reply, reason := o.handoff.Handle(ctx, t, st)
		if reason != "" {
			o.publishHandoff(ctx, t, st, reason, false)
		}
		return reply, nil

	case RouteClarify:
		return route.Reply, nil

	case RouteSearch:
		return o.handleSearch(ctx, t, st, route)

	default:
		reply, wantsHandoff, err := o.chat.Reply(ctx, t, st)
		if err != nil {
			return "", err
		}
		if wantsHandoff {
			reason := "knowledge base could not answer: " + st.LastUserMessage()
			o.publishHandoff(ctx, t, st, reason, true)
			return o.handoff.Trigger(ctx, t, st, reason), nil
		}
		return reply, nil
	}
}

func (o *Orchestrator) publishHandoff(ctx context.Context, t *tenant.Tenant, st *state.ConversationState, reason string, automatic bool) {
	o.bus.Publish(ctx, events.HandoffTriggered{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  t.ID.String(),
		ThreadID:  st.ThreadID,
		Reason:    reason,
		Automatic: automatic,
	})
}

// handleSearch runs one turn of the property search flow: settle the
// category, absorb new criteria, check the environment inventory, then take
// the single next step the decision table picks.
func (o *Orchestrator) handleSearch(ctx context.Context, t *tenant.Tenant, st *state.ConversationState, route Route) (string, error) {
	if category := route.Category; category != "" && category != st.Category {
		allowed, decline, err := o.gate.Check(ctx, t.ID, category)
		if err != nil {
			return "", err
		}
		if !allowed {
			return decline, nil
		}
		st.Category = category
		// Criteria collected for the old segment don't carry over.
		st.ResetSearch()
	} else if route.Reset {
		st.ResetSearch()
	}
	if st.Category == "" {
		// No category yet and none resolved; ask what they're looking for.
		return fmt.Sprintf("Hi! I'm %s from %s. Are you looking for a co-living space or a room for rent?", t.ChatbotName, t.CompanyName), nil
	}

	o.extractor.Extract(ctx, st)

	verdict, err := o.inventory.CheckEnvironment(ctx, t.ID, st.Category, st)
	if err != nil {
		return "", err
	}
	if verdict != "" {
		st.InventoryCheckStatus = verdict
	}

	switch step := NextStep(st); step {
	case state.StepDisplayMore:
		return RenderNextBatch(st), nil

	case state.StepExecuteSearch:
		return o.executeSearch(ctx, t, st)

	default:
		question := o.generator.Ask(ctx, t.ChatbotName, step, st.InventoryCheckStatus)
		if question == "" {
			question = "Could you tell me a bit more about what you're looking for?"
		}
		return question, nil
	}
}

func (o *Orchestrator) executeSearch(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) (string, error) {
	var notice string
	if strings.HasPrefix(st.InventoryCheckStatus, envUnavailable) {
		pref := st.Filters.EnvironmentPref()
		st.Filters.Environment = nil
		st.InventoryCheckStatus = ""
		notice = fmt.Sprintf("Just a heads up: we don't have %s places right now, so I'll show you what's available.\n\n", pref)
	}

	if err := o.searcher.Run(ctx, t.ID, st.Category, st); err != nil {
		return "", err
	}

	if len(st.Results) == 0 {
		return notice + "I couldn't find anything matching all your criteria. Want to adjust the budget or location and try again?", nil
	}
	return notice + RenderNextBatch(st), nil
}

func routeName(r Route) string {
	switch r.Kind {
	case RouteSearch:
		return "search"
	case RouteAppointment:
		return "appointment"
	case RouteAppointmentExit:
		return "appointment_exit"
	case RouteHandoff:
		return "handoff"
	case RouteHandoffExit:
		return "handoff_exit"
	case RouteClarify:
		return "clarify"
	default:
		return "chat"
	}
}
