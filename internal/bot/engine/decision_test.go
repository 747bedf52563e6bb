package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNextStepFieldOrder(t *testing.T) {
	st := state.New("t")

	assert.Equal(t, state.StepAskLocation, NextStep(st))

	st.Filters.LocationQuery = strPtr("orchard")
	assert.Equal(t, state.StepAskBudget, NextStep(st))

	st.Filters.BudgetMax = intPtr(1500)
	assert.Equal(t, state.StepAskMoveInDate, NextStep(st))

	st.Filters.MoveInDate = strPtr("2026-10-01")
	assert.Equal(t, state.StepAskGender, NextStep(st))

	st.Filters.TenantGender = strPtr("female")
	assert.Equal(t, state.StepAskNationality, NextStep(st))

	st.Filters.TenantNationality = strPtr("Malaysian")
	assert.Equal(t, state.StepExecuteSearch, NextStep(st))
}

func TestNextStepAffirmativePagesPendingResults(t *testing.T) {
	st := state.New("t")
	st.Filters.LocationQuery = strPtr("orchard")
	st.Results = sampleResults(6)
	st.DisplayedCount = 3
	st.SearchRan = true

	st.AddUserMessage("yes please")
	assert.Equal(t, state.StepDisplayMore, NextStep(st))
}

func TestNextStepNonAffirmativeFallsThroughToIntake(t *testing.T) {
	// Pending results don't trap the conversation: anything that isn't a
	// paging affirmative goes back to the intake checks.
	st := state.New("t")
	st.Filters.LocationQuery = strPtr("orchard")
	st.Results = sampleResults(6)
	st.DisplayedCount = 3
	st.SearchRan = true

	st.AddUserMessage("hmm let me think about it")
	assert.Equal(t, state.StepAskBudget, NextStep(st))
}

func TestNextStepAdjustedCriteriaMidPaginationSearchesAgain(t *testing.T) {
	st := state.New("t")
	st.Filters.LocationQuery = strPtr("tampines")
	st.Filters.BudgetMax = intPtr(1200)
	st.Filters.MoveInDate = strPtr("2026-09-01")
	st.Filters.TenantGender = strPtr("female")
	st.Filters.TenantNationality = strPtr("Malaysian")
	st.Results = sampleResults(6)
	st.DisplayedCount = 3
	st.SearchRan = true

	st.AddUserMessage("what about tampines instead of bugis")
	assert.Equal(t, state.StepExecuteSearch, NextStep(st))
}

func TestNextStepAllShownResumesIntake(t *testing.T) {
	st := state.New("t")
	st.Category = properties.CategoryColiving
	st.Results = sampleResults(3)
	st.DisplayedCount = 3
	st.SearchRan = true
	st.AddUserMessage("yes")

	// Nothing pending, missing fields win again.
	assert.Equal(t, state.StepAskLocation, NextStep(st))
}

func TestNextStepDisplayMoreKeywords(t *testing.T) {
	for _, msg := range []string{"yes", "show me", "more please", "next", "okay", "sure", "go ahead", "yup", "yeah", "yea"} {
		st := state.New("t")
		st.Results = sampleResults(5)
		st.DisplayedCount = 3
		st.SearchRan = true
		st.AddUserMessage(msg)

		assert.Equal(t, state.StepDisplayMore, NextStep(st), "message %q", msg)
	}
}
