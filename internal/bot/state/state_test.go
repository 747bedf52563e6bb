package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"proppanda_backend/internal/properties"
)

func TestHistoryCapped(t *testing.T) {
	st := New("t")
	for i := 0; i < 100; i++ {
		st.AddUserMessage(fmt.Sprintf("msg %d", i))
	}

	assert.Len(t, st.Messages, 40)
	assert.Equal(t, "msg 99", st.LastUserMessage())
}

func TestLastMessagesByRole(t *testing.T) {
	st := New("t")
	st.AddUserMessage("first user")
	st.AddBotMessage("first bot")
	st.AddUserMessage("second user")

	assert.Equal(t, "second user", st.LastUserMessage())
	assert.Equal(t, "first bot", st.LastBotMessage())
}

func TestPendingResults(t *testing.T) {
	st := New("t")
	assert.False(t, st.PendingResults())

	st.Results = []properties.Property{{ID: "a"}, {ID: "b"}}
	st.SearchRan = true
	assert.True(t, st.PendingResults())

	st.DisplayedCount = 2
	assert.False(t, st.PendingResults())
}

func TestFlowTransitions(t *testing.T) {
	st := New("t")

	st.EnterAppointment()
	assert.Equal(t, FlowAppointment, st.ActiveFlow)
	assert.Equal(t, ApptSelectProperty, st.Appointment.Step)

	st.ExitAppointment()
	assert.Equal(t, FlowNone, st.ActiveFlow)
	assert.Nil(t, st.Appointment)

	st.EnterHandoff()
	assert.Equal(t, FlowHandoff, st.ActiveFlow)
	assert.True(t, st.Handoff.AwaitingReason)

	st.ExitHandoff()
	assert.Equal(t, FlowNone, st.ActiveFlow)
}

func TestClearSearchKeepsFilters(t *testing.T) {
	st := New("t")
	loc := "orchard"
	st.Filters.LocationQuery = &loc
	st.Results = []properties.Property{{ID: "a"}}
	st.DisplayedCount = 1
	st.SearchRan = true

	st.ClearSearch()

	assert.Nil(t, st.Results)
	assert.Zero(t, st.DisplayedCount)
	assert.False(t, st.SearchRan)
	assert.Equal(t, "orchard", *st.Filters.LocationQuery)
}

func TestResetSearchWipesFilters(t *testing.T) {
	st := New("t")
	loc := "orchard"
	budget := 1500
	st.Filters.LocationQuery = &loc
	st.Filters.BudgetMax = &budget
	st.Results = []properties.Property{{ID: "a"}}
	st.SearchRan = true
	st.InventoryCheckStatus = "CONFIRMED: female only"

	st.ResetSearch()

	assert.Nil(t, st.Results)
	assert.False(t, st.SearchRan)
	assert.Nil(t, st.Filters.LocationQuery)
	assert.Nil(t, st.Filters.BudgetMax)
	assert.Empty(t, st.InventoryCheckStatus)
}
