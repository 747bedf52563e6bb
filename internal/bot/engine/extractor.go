package engine

import (
	"context"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/llm"
	"proppanda_backend/internal/properties"
	"proppanda_backend/platform/logger"
)

var confirmationWords = []string{"yes", "sure", "okay", "ok", "fine", "proceed", "continue", "go ahead"}

// Extractor pulls structured search criteria out of user messages and merges
// them into the accumulated filter form.
type Extractor struct {
	llm Completer
	log *logger.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(completer Completer, log *logger.Logger) *Extractor {
	return &Extractor{llm: completer, log: log}
}

// Extract merges any new criteria from the latest user message into the
// state's filters. Bare confirmations carry no criteria and are skipped.
// Extraction failure is tolerated; the turn continues on what was already
// collected.
func (e *Extractor) Extract(ctx context.Context, st *state.ConversationState) {
	msg := st.NormalizedLast()
	if msg == "" || matchesAny(msg, confirmationWords) {
		return
	}

	var extracted properties.SearchFilters
	if err := e.llm.CompleteJSON(ctx, llm.ExtractFiltersSystem, st.LastUserMessage(), &extracted); err != nil {
		e.log.CollaboratorError("llm", "extract_filters", err)
		return
	}

	if st.Filters == nil {
		st.Filters = &properties.SearchFilters{}
	}

	before := *st.Filters
	st.Filters.Merge(&extracted)

	// New criteria invalidate a finished search; the next decision pass
	// will run it again with the updated form.
	if filtersChanged(&before, st.Filters) {
		st.ClearSearch()
	}
}

func filtersChanged(a, b *properties.SearchFilters) bool {
	return !strPtrEq(a.LocationQuery, b.LocationQuery) ||
		!intPtrEq(a.BudgetMax, b.BudgetMax) ||
		!strPtrEq(a.MoveInDate, b.MoveInDate) ||
		!strPtrEq(a.TenantGender, b.TenantGender) ||
		!strPtrEq(a.TenantNationality, b.TenantNationality) ||
		!strPtrEq(a.RoomType, b.RoomType) ||
		!boolPtrEq(a.NeedsEnsuite, b.NeedsEnsuite) ||
		!boolPtrEq(a.NeedsCooking, b.NeedsCooking) ||
		!boolPtrEq(a.HasPets, b.HasPets) ||
		!boolPtrEq(a.NeedsGym, b.NeedsGym) ||
		!boolPtrEq(a.NeedsPool, b.NeedsPool) ||
		!boolPtrEq(a.NeedsVisitorAllowance, b.NeedsVisitorAllowance) ||
		!boolPtrEq(a.NeedsWifi, b.NeedsWifi) ||
		!strPtrEq(a.Environment, b.Environment)
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
