package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proppanda_backend/internal/bot/checkpoint"
	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/events"
	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/workflow"
	"proppanda_backend/platform/validator"
)

func newTestOrchestrator(
	store checkpoint.Store,
	completer *fakeCompleter,
	listings *fakePropertyStore,
	workflows *fakeWorkflows,
	caps tenant.Capabilities,
) *Orchestrator {
	log := testLogger()
	return NewOrchestrator(
		store,
		events.NewInMemoryBus(log),
		log,
		NewRouter(completer, log),
		NewExtractor(completer, log),
		NewCapabilityGate(&fakeCapabilityStore{caps: caps}),
		NewInventoryCheck(listings),
		NewSearcher(&fakeGeocoder{point: &properties.GeoPoint{Lat: 1.3, Lng: 103.8}}, listings, log),
		NewQuestionGenerator(completer, log),
		NewChatHandler(completer, &fakeKnowledge{}, log),
		NewAppointmentFlow(workflows, completer, validator.New(), log),
		NewHandoffFlow(workflows, log),
	)
}

func TestOrchestratorSearchToBookingScenario(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{
		jsonReply: `{"location_query": "orchard", "budget_max": 1500, "move_in_date": "2026-10-01",
			"tenant_gender": "female", "tenant_nationality": "Malaysian"}`,
	}
	listings := &fakePropertyStore{results: sampleResults(5)}
	workflows := &fakeWorkflows{slots: []workflow.DaySlots{
		{Date: "2025-04-12", Day: "Saturday", Slots: []string{"10-11"}},
	}}
	caps := tenant.Capabilities{"co_living_property": true}

	orch := newTestOrchestrator(store, completer, listings, workflows, caps)
	tn := testTenant()
	ctx := context.Background()
	thread := "6591234567"

	// All criteria in one message: the search runs and the first batch shows.
	reply, err := orch.HandleTurn(ctx, tn, thread, "looking for a coliving room near orchard, 1500 budget, moving october, female, malaysian")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sunrise Loft 1")
	assert.Contains(t, reply, "Sunrise Loft 3")
	assert.NotContains(t, reply, "Sunrise Loft 4")
	assert.Contains(t, reply, "2 more")

	// Affirmative pages through the rest.
	reply, err = orch.HandleTurn(ctx, tn, thread, "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sunrise Loft 4")
	assert.Contains(t, reply, "Sunrise Loft 5")
	assert.Contains(t, reply, "book a viewing")

	// Booking intent enters the appointment flow with the chosen property.
	reply, err = orch.HandleTurn(ctx, tn, thread, "book the first one")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sunrise Loft 1")
	assert.Contains(t, reply, "email")

	st, err := store.Load(ctx, thread)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, state.FlowAppointment, st.ActiveFlow)
	assert.Equal(t, "prop-1", st.Appointment.PropertyID)
}

func TestOrchestratorCapabilityDecline(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{}
	orch := newTestOrchestrator(store, completer, &fakePropertyStore{}, &fakeWorkflows{},
		tenant.Capabilities{"rooms_for_rent": true})

	reply, err := orch.HandleTurn(context.Background(), testTenant(), "t1", "looking for a coliving space")
	require.NoError(t, err)
	assert.Contains(t, reply, "Standard Rooms")

	// The declined category must not stick.
	st, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, properties.Category(""), st.Category)
}

func TestOrchestratorChatFallbackToHandoff(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{
		jsonReply:     `{"intent": "INTELLIGENT_CHAT"}`,
		completeReply: "NO_DATA_HANDOFF",
	}
	workflows := &fakeWorkflows{handoffAck: "An agent will reach out shortly."}
	orch := newTestOrchestrator(store, completer, &fakePropertyStore{}, workflows, tenant.Capabilities{})

	reply, err := orch.HandleTurn(context.Background(), testTenant(), "t2", "do you handle commercial insurance claims?")
	require.NoError(t, err)
	assert.Equal(t, "An agent will reach out shortly.", reply)

	require.Len(t, workflows.handoffs, 1)
	assert.True(t, workflows.handoffs[0].Automatic)
}

func TestOrchestratorExplicitHandoffFlow(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	workflows := &fakeWorkflows{}
	orch := newTestOrchestrator(store, &fakeCompleter{}, &fakePropertyStore{}, workflows, tenant.Capabilities{})
	tn := testTenant()
	ctx := context.Background()

	reply, err := orch.HandleTurn(ctx, tn, "t3", "I want to talk to a person")
	require.NoError(t, err)
	assert.Contains(t, reply, "tell me")

	reply, err = orch.HandleTurn(ctx, tn, "t3", "my rental contract has a dispute")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	require.Len(t, workflows.handoffs, 1)
	assert.Equal(t, "my rental contract has a dispute", workflows.handoffs[0].Reason)
	assert.False(t, workflows.handoffs[0].Automatic)

	// Lock released after submission.
	st, err := store.Load(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, state.FlowNone, st.ActiveFlow)
}

func TestOrchestratorCategorySwitchResetsFilters(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{}
	orch := newTestOrchestrator(store, completer, &fakePropertyStore{}, &fakeWorkflows{},
		tenant.Capabilities{"co_living_property": true, "commercial_property_rent": true})

	st := state.New("t5")
	st.Category = properties.CategoryColiving
	st.Filters.LocationQuery = strPtr("orchard")
	st.Filters.BudgetMax = intPtr(1500)
	st.Results = sampleResults(3)
	st.SearchRan = true
	st.AddUserMessage("actually I need an office to rent")

	_, err := orch.handleSearch(context.Background(), testTenant(), st,
		Route{Kind: RouteSearch, Category: properties.CategoryCommercialRent, Reset: true})
	require.NoError(t, err)

	assert.Equal(t, properties.CategoryCommercialRent, st.Category)
	assert.Nil(t, st.Filters.LocationQuery)
	assert.Nil(t, st.Filters.BudgetMax)
	assert.Empty(t, st.Results)
	assert.False(t, st.SearchRan)
}

func TestOrchestratorClarificationReplySentVerbatim(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{jsonReply: `{"intent": "CLARIFICATION", "clarification_question": "Are you looking to rent or buy?"}`}
	orch := newTestOrchestrator(store, completer, &fakePropertyStore{}, &fakeWorkflows{}, tenant.Capabilities{})

	reply, err := orch.HandleTurn(context.Background(), testTenant(), "t6", "something in the east maybe")
	require.NoError(t, err)
	assert.Equal(t, "Are you looking to rent or buy?", reply)
}

func TestOrchestratorEnvironmentUnavailableNotice(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	completer := &fakeCompleter{
		jsonReply: `{"location_query": "bugis", "budget_max": 1200, "move_in_date": "2026-09-15",
			"tenant_gender": "female", "tenant_nationality": "Indian", "environment": "female only"}`,
	}
	listings := &fakePropertyStore{
		results:      sampleResults(2),
		environments: map[string]bool{"mixed": true},
	}
	orch := newTestOrchestrator(store, completer, listings, &fakeWorkflows{},
		tenant.Capabilities{"co_living_property": true})

	reply, err := orch.HandleTurn(context.Background(), testTenant(), "t4",
		"female only coliving room in bugis, 1200, mid september, female, indian")
	require.NoError(t, err)
	assert.Contains(t, reply, "don't have female only")
	assert.Contains(t, reply, "Sunrise Loft 1")
}
