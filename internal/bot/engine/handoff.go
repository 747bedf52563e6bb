package engine

import (
	"context"
	"fmt"
	"strings"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/workflow"
	"proppanda_backend/platform/logger"
)

// HandoffFlow collects a reason and escalates the thread to a human agent.
// The lock is always released after the attempt, success or not, so the bot
// never wedges a thread behind a broken webhook.
type HandoffFlow struct {
	workflows WorkflowRunner
	log       *logger.Logger
}

// NewHandoffFlow creates the handoff flow handler.
func NewHandoffFlow(workflows WorkflowRunner, log *logger.Logger) *HandoffFlow {
	return &HandoffFlow{workflows: workflows, log: log}
}

// Handle advances the handoff flow. The first turn asks for a reason; the
// second submits it. reason is non-empty when the handoff was submitted.
func (f *HandoffFlow) Handle(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) (reply, reason string) {
	if st.ActiveFlow != state.FlowHandoff {
		st.EnterHandoff()
		return "Of course! Before I connect you with one of our agents, could you briefly tell me what you'd like help with?", ""
	}

	reason = strings.TrimSpace(st.LastUserMessage())
	return f.submit(ctx, t, st, reason, false), reason
}

// Trigger escalates automatically, without asking for a reason. Used when
// the knowledge base cannot answer a question.
func (f *HandoffFlow) Trigger(ctx context.Context, t *tenant.Tenant, st *state.ConversationState, reason string) string {
	return f.submit(ctx, t, st, reason, true)
}

// ExitReply abandons the handoff in response to an exit keyword.
func (f *HandoffFlow) ExitReply(st *state.ConversationState) string {
	st.ExitHandoff()
	return "No worries! I'm here if you need anything else."
}

func (f *HandoffFlow) submit(ctx context.Context, t *tenant.Tenant, st *state.ConversationState, reason string, automatic bool) string {
	defer st.ExitHandoff()

	ack, err := f.workflows.TriggerHandoff(ctx, handoffPayload(t, st, reason, automatic))
	if err != nil {
		f.log.CollaboratorError("workflow", "handoff", err)
		return "I've noted your request, and one of our agents will reach out to you here as soon as possible."
	}
	if ack != "" {
		return ack
	}
	return "Thanks! I've passed this to one of our agents, and they'll get back to you here shortly."
}

// handoffPayload gathers everything the conversation has learned so the
// receiving agent starts with context instead of a bare phone number. Fields
// the conversation never reached render as "-".
func handoffPayload(t *tenant.Tenant, st *state.ConversationState, reason string, automatic bool) workflow.HandoffRequest {
	var filters properties.SearchFilters
	if st.Filters != nil {
		filters = *st.Filters
	}

	req := workflow.HandoffRequest{
		TenantID:     t.ID.String(),
		ThreadID:     st.ThreadID,
		Phone:        st.ThreadID,
		Reason:       reason,
		Email:        "-",
		Gender:       fieldOr(filters.TenantGender),
		Nationality:  fieldOr(filters.TenantNationality),
		MoveInDate:   fieldOr(filters.MoveInDate),
		PassType:     "-",
		LeaseMonths:  "-",
		PropertyName: "-",
		RoomNumber:   "-",
		ChatSummary:  fmt.Sprintf("User requested human help. Reason: %s", reason),
		Automatic:    automatic,
	}
	if automatic {
		req.ChatSummary = fmt.Sprintf("Automatic escalation. Reason: %s", reason)
	}

	if form := st.Appointment; form != nil {
		if form.Email != "" {
			req.Email = form.Email
		}
		if form.PassType != "" {
			req.PassType = form.PassType
		}
		if form.LeaseMonths != "" {
			req.LeaseMonths = form.LeaseMonths
		}
		if form.PropertyName != "" {
			req.PropertyName = form.PropertyName
		}
		if form.RoomNumber != "" {
			req.RoomNumber = form.RoomNumber
		}
	}
	return req
}
