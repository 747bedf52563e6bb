package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
)

func newTestRouter(completer *fakeCompleter) *Router {
	return NewRouter(completer, testLogger())
}

func stateWithUser(msg string) *state.ConversationState {
	st := state.New("6591234567")
	st.AddUserMessage(msg)
	return st
}

func TestRouterAppointmentLockHoldsThread(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	st := stateWithUser("my email is jane@example.com")
	st.EnterAppointment()

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteAppointment, route.Kind)
}

func TestRouterAppointmentExitKeywords(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	for _, msg := range []string{"stop", "cancel that", "actually I don't want this", "go back"} {
		st := stateWithUser(msg)
		st.EnterAppointment()

		route := router.Resolve(context.Background(), st)
		assert.Equal(t, RouteAppointmentExit, route.Kind, "message %q", msg)
	}
}

func TestRouterHandoffExitKeywords(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	st := stateWithUser("nevermind")
	st.EnterHandoff()

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteHandoffExit, route.Kind)
}

func TestRouterHandoffRequest(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	route := router.Resolve(context.Background(), stateWithUser("can I talk to a person please"))
	assert.Equal(t, RouteHandoff, route.Kind)
}

func TestRouterPaginationGoesToSearch(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	st := state.New("6591234567")
	st.Category = properties.CategoryColiving
	st.SearchRan = true
	st.Results = sampleResults(5)
	st.DisplayedCount = 3
	st.AddBotMessage("I have 2 more option(s). Want to see them?")
	st.AddUserMessage("yes")

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryColiving, route.Category)
}

func TestRouterAffirmativeAfterBookingOfferStartsAppointment(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	st := state.New("6591234567")
	st.Category = properties.CategoryColiving
	st.SearchRan = true
	st.Results = sampleResults(2)
	st.AddBotMessage("Would you like to book a viewing for any of these?")
	st.AddUserMessage("sure")

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteAppointment, route.Kind)
}

func TestRouterRoomReferenceGoesToChat(t *testing.T) {
	// Naming a specific room is a question about a listing, not booking
	// intent; the chat handler answers it against the shown results.
	router := newTestRouter(&fakeCompleter{})

	st := state.New("6591234567")
	st.SearchRan = true
	st.Results = sampleResults(3)
	st.AddUserMessage("does room 2 allow cooking?")

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteChat, route.Kind)
}

func TestRouterBookingKeywordStartsAppointment(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	st := state.New("6591234567")
	st.SearchRan = true
	st.Results = sampleResults(3)
	st.AddUserMessage("can i arrange a visit for the second")

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteAppointment, route.Kind)
}

func TestRouterBookingKeywordBeforeAnySearch(t *testing.T) {
	// Booking intent holds even before a search has produced candidates;
	// the flow itself asks which property they mean.
	router := newTestRouter(&fakeCompleter{})

	route := router.Resolve(context.Background(), stateWithUser("I'd like to book a viewing"))
	assert.Equal(t, RouteAppointment, route.Kind)
}

func TestRouterHardCategoryMatch(t *testing.T) {
	router := newTestRouter(&fakeCompleter{})

	tests := []struct {
		msg  string
		want properties.Category
	}{
		{"looking for a coliving space", properties.CategoryColiving},
		{"any co-living options in the east?", properties.CategoryColiving},
		{"I want a room", properties.CategoryColiving},
		{"standard room directly from the landlord", properties.CategoryRoomsForRent},
		{"room from the owner please", properties.CategoryRoomsForRent},
	}
	for _, tt := range tests {
		route := router.Resolve(context.Background(), stateWithUser(tt.msg))
		assert.Equal(t, RouteSearch, route.Kind, "message %q", tt.msg)
		assert.Equal(t, tt.want, route.Category, "message %q", tt.msg)
	}
}

func TestRouterClassifierPropertySearch(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "PROPERTY_SEARCH", "target_table": "coliving_property"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("I just moved to Singapore for work"))
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryColiving, route.Category)
	assert.False(t, route.Reset)
}

func TestRouterClassifierChatIntent(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "INTELLIGENT_CHAT"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("what are your opening hours?"))
	assert.Equal(t, RouteChat, route.Kind)
}

func TestRouterClassifierAppointmentIntent(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "APPOINTMENT"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("when can i come by to take a look"))
	assert.Equal(t, RouteAppointment, route.Kind)
}

func TestRouterClassifierHandoffIntent(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "HUMAN_HANDOFF"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("get me your staff on the line"))
	assert.Equal(t, RouteHandoff, route.Kind)
}

func TestRouterClassifierClarificationSurfacesQuestion(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "CLARIFICATION", "clarification_question": "Are you looking to rent or buy?"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("something in the east maybe"))
	assert.Equal(t, RouteClarify, route.Kind)
	assert.Equal(t, "Are you looking to rent or buy?", route.Reply)
}

func TestRouterClassifierClarificationWithoutQuestionGoesToChat(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "CLARIFICATION"}`}
	router := newTestRouter(completer)

	route := router.Resolve(context.Background(), stateWithUser("hmm"))
	assert.Equal(t, RouteChat, route.Kind)
}

func TestRouterClassifierMissingTableKeepsCurrentCategory(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "PROPERTY_SEARCH"}`}
	router := newTestRouter(completer)

	st := stateWithUser("something cheaper maybe")
	st.Category = properties.CategoryColiving

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryColiving, route.Category)
}

func TestRouterClassifierFlickerDoesNotSwitchCategory(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "PROPERTY_SEARCH", "target_table": "rooms_for_rent"}`}
	router := newTestRouter(completer)

	st := stateWithUser("somewhere quiet would be nice")
	st.Category = properties.CategoryColiving

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryColiving, route.Category)
	assert.False(t, route.Reset)
}

func TestRouterExplicitKeywordSwitchResetsCategory(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "PROPERTY_SEARCH", "target_table": "commercial_properties_for_rent"}`}
	router := newTestRouter(completer)

	st := stateWithUser("actually I need an office to rent")
	st.Category = properties.CategoryColiving

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryCommercialRent, route.Category)
	assert.True(t, route.Reset)
}

func TestRouterSwitchSearchIntentResetsCategory(t *testing.T) {
	completer := &fakeCompleter{jsonReply: `{"intent": "SWITCH_SEARCH", "target_table": "residential_properties_for_rent"}`}
	router := newTestRouter(completer)

	st := stateWithUser("i need a whole unit for my family instead")
	st.Category = properties.CategoryColiving

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryResidentialRent, route.Category)
	assert.True(t, route.Reset)
}

func TestRouterClassifierFailureKeepsCurrentCategory(t *testing.T) {
	completer := &fakeCompleter{jsonErr: assert.AnError}
	router := newTestRouter(completer)

	st := stateWithUser("hmm let me think")
	st.Category = properties.CategoryColiving

	route := router.Resolve(context.Background(), st)
	assert.Equal(t, RouteSearch, route.Kind)
	assert.Equal(t, properties.CategoryColiving, route.Category)
}
