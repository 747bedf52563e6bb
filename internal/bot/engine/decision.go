package engine

import (
	"proppanda_backend/internal/bot/state"
)

var displayMoreWords = []string{"yes", "show", "more", "next", "okay", "sure", "go ahead", "yup", "yeah", "yea", "please"}

// NextStep is the decision table for the search flow. It inspects the state
// after extraction and returns the single next action. An affirmative pages
// through pending results; anything else falls through to the intake checks,
// so adjusting a criterion mid-pagination goes back to searching instead of
// nagging about the old result set.
func NextStep(st *state.ConversationState) state.Step {
	if st.PendingResults() && containsAny(st.NormalizedLast(), displayMoreWords) {
		return state.StepDisplayMore
	}

	f := st.Filters
	switch {
	case f == nil || f.LocationQuery == nil:
		return state.StepAskLocation
	case f.BudgetMax == nil:
		return state.StepAskBudget
	case f.MoveInDate == nil:
		return state.StepAskMoveInDate
	case f.TenantGender == nil:
		return state.StepAskGender
	case f.TenantNationality == nil:
		return state.StepAskNationality
	default:
		return state.StepExecuteSearch
	}
}
