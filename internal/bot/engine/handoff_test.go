package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proppanda_backend/internal/bot/state"
)

func TestHandoffPayloadCarriesUserContext(t *testing.T) {
	workflows := &fakeWorkflows{}
	flow := NewHandoffFlow(workflows, testLogger())

	st := state.New("6591234567")
	st.Filters.TenantGender = strPtr("female")
	st.Filters.TenantNationality = strPtr("Malaysian")
	st.Filters.MoveInDate = strPtr("2026-10-01")
	st.EnterHandoff()
	st.AddUserMessage("I have a question about agent fees")

	reply, reason := flow.Handle(context.Background(), testTenant(), st)
	assert.NotEmpty(t, reply)
	assert.Equal(t, "I have a question about agent fees", reason)

	require.Len(t, workflows.handoffs, 1)
	req := workflows.handoffs[0]
	assert.Equal(t, "6591234567", req.Phone)
	assert.Equal(t, "female", req.Gender)
	assert.Equal(t, "Malaysian", req.Nationality)
	assert.Equal(t, "2026-10-01", req.MoveInDate)
	assert.Equal(t, "-", req.Email)
	assert.Contains(t, req.ChatSummary, "agent fees")
	assert.False(t, req.Automatic)
}

func TestHandoffPayloadIncludesBookingFormWhenPresent(t *testing.T) {
	st := state.New("6591234567")
	st.EnterAppointment()
	st.Appointment.Email = "jane@example.com"
	st.Appointment.PassType = "EP"
	st.Appointment.PropertyName = "Sunrise Loft"
	st.Appointment.RoomNumber = "2"

	got := handoffPayload(testTenant(), st, "needs a human", false)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "EP", got.PassType)
	assert.Equal(t, "Sunrise Loft", got.PropertyName)
	assert.Equal(t, "2", got.RoomNumber)
	assert.Equal(t, "-", got.Gender)
}

func TestHandoffAutomaticSummary(t *testing.T) {
	st := state.New("6591234567")
	got := handoffPayload(testTenant(), st, "knowledge base could not answer: visa help", true)
	assert.True(t, got.Automatic)
	assert.Contains(t, got.ChatSummary, "Automatic escalation")
}
