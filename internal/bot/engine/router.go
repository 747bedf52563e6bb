package engine

import (
	"context"
	"regexp"
	"strings"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/llm"
	"proppanda_backend/internal/properties"
	"proppanda_backend/platform/logger"
)

// RouteKind names the handler a turn is dispatched to.
type RouteKind int

const (
	RouteChat RouteKind = iota
	RouteSearch
	RouteAppointment
	RouteAppointmentExit
	RouteHandoff
	RouteHandoffExit
	RouteClarify
)

// Route is the router's verdict for one turn. Reset marks an explicit
// category switch, which wipes the collected criteria before the search
// flow runs. Reply carries the clarification question for RouteClarify.
type Route struct {
	Kind     RouteKind
	Category properties.Category
	Reset    bool
	Reply    string
}

// classifyWindow is how many recent messages the LLM fallback sees.
const classifyWindow = 7

var (
	appointmentExitWords = []string{"stop", "cancel", "back", "exit", "don't want", "dont want"}
	handoffExitWords     = []string{"stop", "cancel", "nevermind", "never mind"}
	handoffWords         = []string{"human agent", "real person", "speak to someone", "talk to a person", "customer service"}
	bookingWords         = []string{"book", "booking", "schedule", "arrange", "appointment", "viewing", "visit"}
	paginationWords      = []string{"yes", "yeah", "yep", "sure", "show more", "next", "continue"}
	bookingContextWords  = []string{"book", "viewing", "appointment"}
	switchGuardWords     = []string{"buy", "rent", "commercial", "residential", "office", "shop", "store"}
	roomsSubWords        = []string{"standard", "traditional", "landlord", "owner"}

	roomRefPattern = regexp.MustCompile(`\b(room\s+\d+|r\d+)\b`)
)

// Router decides which handler owns each inbound message. Keyword rules run
// first; the LLM classifier is only the fallback for ambiguous messages.
type Router struct {
	llm Completer
	log *logger.Logger
}

// NewRouter creates a router.
func NewRouter(completer Completer, log *logger.Logger) *Router {
	return &Router{llm: completer, log: log}
}

// Resolve routes the latest user message. Active flows hold the thread until
// they finish or the user backs out with an exit keyword.
func (r *Router) Resolve(ctx context.Context, st *state.ConversationState) Route {
	msg := st.NormalizedLast()

	// An active flow owns the turn unless the user backs out.
	switch st.ActiveFlow {
	case state.FlowAppointment:
		if containsAny(msg, appointmentExitWords) {
			return Route{Kind: RouteAppointmentExit}
		}
		return Route{Kind: RouteAppointment}
	case state.FlowHandoff:
		if containsAny(msg, handoffExitWords) {
			return Route{Kind: RouteHandoffExit}
		}
		return Route{Kind: RouteHandoff}
	}

	if containsAny(msg, handoffWords) {
		return Route{Kind: RouteHandoff}
	}

	// A short affirmative is ambiguous: it either pages through results or
	// accepts a booking offer, depending on what the bot last said.
	if matchesAny(msg, paginationWords) {
		if containsAny(strings.ToLower(st.LastBotMessage()), bookingContextWords) && st.SearchRan {
			return Route{Kind: RouteAppointment}
		}
		return Route{Kind: RouteSearch, Category: st.Category}
	}

	// A room reference is a question about a shown listing, not booking
	// intent; the chat handler answers it against the current results.
	if roomRefPattern.MatchString(msg) {
		return Route{Kind: RouteChat}
	}

	if containsAny(msg, bookingWords) {
		return Route{Kind: RouteAppointment}
	}

	if cat, ok := hardMatchCategory(msg); ok {
		return Route{Kind: RouteSearch, Category: cat}
	}

	return r.classify(ctx, st, msg)
}

// hardMatchCategory applies the deterministic category keywords before any
// LLM involvement. Room mentions split on who manages the room.
func hardMatchCategory(msg string) (properties.Category, bool) {
	if strings.Contains(msg, "co-living") || strings.Contains(msg, "coliving") {
		return properties.CategoryColiving, true
	}
	if strings.Contains(msg, "room") {
		if containsAny(msg, roomsSubWords) {
			return properties.CategoryRoomsForRent, true
		}
		return properties.CategoryColiving, true
	}
	return "", false
}

func (r *Router) classify(ctx context.Context, st *state.ConversationState, msg string) Route {
	transcript := transcriptOf(st.Recent(classifyWindow))

	var verdict struct {
		Intent                string `json:"intent"`
		TargetTable           string `json:"target_table"`
		ClarificationQuestion string `json:"clarification_question"`
	}
	if err := r.llm.CompleteJSON(ctx, llm.ClassifySystem, transcript, &verdict); err != nil {
		r.log.CollaboratorError("llm", "classify", err)
		if st.Category != "" {
			return Route{Kind: RouteSearch, Category: st.Category}
		}
		return Route{Kind: RouteChat}
	}

	switch verdict.Intent {
	case "APPOINTMENT":
		return Route{Kind: RouteAppointment}

	case "HUMAN_HANDOFF":
		return Route{Kind: RouteHandoff}

	case "PROPERTY_SEARCH":
		return r.searchRoute(st, msg, properties.Category(verdict.TargetTable), false)

	case "SWITCH_SEARCH":
		return r.searchRoute(st, msg, properties.Category(verdict.TargetTable), true)

	case "CLARIFICATION":
		if q := strings.TrimSpace(verdict.ClarificationQuestion); q != "" {
			return Route{Kind: RouteClarify, Reply: q}
		}
		return Route{Kind: RouteChat}

	default:
		return Route{Kind: RouteChat}
	}
}

// searchRoute settles the category for a search intent. The classifier is
// never trusted to switch an established category on its own: without an
// explicit switch (the SWITCH_SEARCH intent or a segment keyword in the
// message) the old category wins, and a missing table falls back to it too.
func (r *Router) searchRoute(st *state.ConversationState, msg string, cat properties.Category, explicitSwitch bool) Route {
	if !cat.Known() {
		if st.Category != "" {
			return Route{Kind: RouteSearch, Category: st.Category}
		}
		return Route{Kind: RouteChat}
	}

	if st.Category != "" && cat != st.Category {
		if !explicitSwitch && !containsAny(msg, switchGuardWords) {
			return Route{Kind: RouteSearch, Category: st.Category}
		}
		return Route{Kind: RouteSearch, Category: cat, Reset: true}
	}

	if explicitSwitch && st.Category != "" {
		// Same category restated as a switch still starts the form over.
		return Route{Kind: RouteSearch, Category: cat, Reset: true}
	}
	return Route{Kind: RouteSearch, Category: cat}
}

func transcriptOf(msgs []state.Message) string {
	turns := make([]llm.TranscriptTurn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, llm.TranscriptTurn{FromBot: m.Role == state.RoleAssistant, Text: m.Text})
	}
	return llm.FormatTranscript(turns)
}

// containsAny reports whether any needle appears as a substring of msg.
func containsAny(msg string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// matchesAny reports whether msg equals or starts with any of the needles.
// Used for short affirmatives, where substring matching is too eager.
func matchesAny(msg string, needles []string) bool {
	for _, n := range needles {
		if msg == n || strings.HasPrefix(msg, n+" ") || strings.HasPrefix(msg, n+"!") || strings.HasPrefix(msg, n+",") {
			return true
		}
	}
	return false
}
