// Package state defines the per-thread conversation state the engine
// checkpoints between turns. Everything here must round-trip through JSON.
package state

import (
	"strings"
	"time"

	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/workflow"
)

// historyCap bounds the in-state transcript. The durable transcript lives in
// the conversation log; this copy only feeds prompts and keyword checks.
const historyCap = 40

// Role identifies who produced a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of in-state history.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Flow names the exclusive sub-dialogue holding the thread, if any. While a
// flow is active the router sends every message to it until it completes or
// the user backs out with an exit keyword.
type Flow string

const (
	FlowNone        Flow = ""
	FlowAppointment Flow = "appointment"
	FlowHandoff     Flow = "handoff"
)

// Step is the next intake action the decision table selected. Steps are
// dispatched centrally by the orchestrator, never inline.
type Step string

const (
	StepAskLocation    Step = "ask_location"
	StepAskBudget      Step = "ask_budget"
	StepAskMoveInDate  Step = "ask_move_in_date"
	StepAskGender      Step = "ask_gender"
	StepAskNationality Step = "ask_nationality"
	StepExecuteSearch  Step = "execute_search"
	StepDisplayMore    Step = "display_more"
)

// AppointmentStep tracks progress through the booking form.
type AppointmentStep string

const (
	ApptSelectProperty AppointmentStep = "select_property"
	ApptAskEmail       AppointmentStep = "ask_email"
	ApptAskPassType    AppointmentStep = "ask_pass_type"
	ApptAskLease       AppointmentStep = "ask_lease_months"
	ApptAskViewingType AppointmentStep = "ask_viewing_type"
	ApptAskTimePref    AppointmentStep = "ask_time_preference"
	ApptSelectSlot     AppointmentStep = "select_slot"
)

// AppointmentForm is the booking flow's working form.
type AppointmentForm struct {
	Step            AppointmentStep `json:"step"`
	PropertyID      string          `json:"property_id,omitempty"`
	PropertyName    string          `json:"property_name,omitempty"`
	PropertyAddress string          `json:"property_address,omitempty"`
	RoomNumber      string          `json:"room_number,omitempty"`
	MonthlyRent     float64         `json:"monthly_rent,omitempty"`
	Email           string          `json:"email,omitempty"`
	PassType        string          `json:"pass_type,omitempty"`
	LeaseMonths     string          `json:"lease_months,omitempty"`
	ViewingType     string          `json:"viewing_type,omitempty"`
	TimePreference  string          `json:"time_preference,omitempty"`
	SlotsFetched    bool            `json:"slots_fetched,omitempty"`
	SlotDate        string          `json:"slot_date,omitempty"`
	SlotTime        string          `json:"slot_time,omitempty"`

	// Availability fetched for the current time preference. Cleared when
	// the preference is, so a new preference triggers a fresh fetch.
	AvailableSlots []workflow.DaySlots `json:"available_slots,omitempty"`
}

// HandoffForm is the handoff flow's working form. The flow only ever waits
// for one thing: the reason to pass along.
type HandoffForm struct {
	AwaitingReason bool `json:"awaiting_reason"`
}

// ConversationState is everything the engine knows about a thread.
type ConversationState struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages,omitempty"`

	Category properties.Category       `json:"category,omitempty"`
	Filters  *properties.SearchFilters `json:"filters,omitempty"`

	// Results of the last search, and how many of them have been shown.
	Results        []properties.Property `json:"results,omitempty"`
	DisplayedCount int                   `json:"displayed_count,omitempty"`
	SearchRan      bool                  `json:"search_ran,omitempty"`

	// Latest environment inventory verdict. Overwritten whenever the check
	// produces a new verdict, consumed when the search executes.
	InventoryCheckStatus string `json:"inventory_check_status,omitempty"`

	ActiveFlow  Flow             `json:"active_flow,omitempty"`
	Appointment *AppointmentForm `json:"appointment,omitempty"`
	Handoff     *HandoffForm     `json:"handoff,omitempty"`
}

// New creates an empty state for a thread.
func New(threadID string) *ConversationState {
	return &ConversationState{
		ThreadID: threadID,
		Filters:  &properties.SearchFilters{},
	}
}

// AddUserMessage appends an inbound message, trimming the history cap.
func (s *ConversationState) AddUserMessage(text string) {
	s.append(Message{Role: RoleUser, Text: text, Timestamp: time.Now().UTC()})
}

// AddBotMessage appends an outbound message, trimming the history cap.
func (s *ConversationState) AddBotMessage(text string) {
	s.append(Message{Role: RoleAssistant, Text: text, Timestamp: time.Now().UTC()})
}

func (s *ConversationState) append(m Message) {
	s.Messages = append(s.Messages, m)
	if len(s.Messages) > historyCap {
		s.Messages = s.Messages[len(s.Messages)-historyCap:]
	}
}

// LastBotMessage returns the most recent assistant message, or empty.
func (s *ConversationState) LastBotMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Text
		}
	}
	return ""
}

// LastUserMessage returns the most recent user message, or empty.
func (s *ConversationState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Text
		}
	}
	return ""
}

// Recent returns up to n of the latest messages, oldest first.
func (s *ConversationState) Recent(n int) []Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// PendingResults reports whether a finished search still has unshown rows.
func (s *ConversationState) PendingResults() bool {
	return s.SearchRan && s.DisplayedCount < len(s.Results)
}

// RemainingResults returns the rows not yet shown to the user.
func (s *ConversationState) RemainingResults() []properties.Property {
	if s.DisplayedCount >= len(s.Results) {
		return nil
	}
	return s.Results[s.DisplayedCount:]
}

// ClearSearch drops search results and progress, keeping collected filters.
func (s *ConversationState) ClearSearch() {
	s.Results = nil
	s.DisplayedCount = 0
	s.SearchRan = false
}

// ResetSearch wipes the collected criteria along with the results. Switching
// to a different property category starts the form over; criteria gathered
// for one market segment mean nothing in another.
func (s *ConversationState) ResetSearch() {
	s.Filters = &properties.SearchFilters{}
	s.InventoryCheckStatus = ""
	s.ClearSearch()
}

// EnterAppointment locks the thread into the booking flow.
func (s *ConversationState) EnterAppointment() {
	s.ActiveFlow = FlowAppointment
	s.Appointment = &AppointmentForm{Step: ApptSelectProperty}
}

// ExitAppointment abandons the booking flow and releases the lock.
func (s *ConversationState) ExitAppointment() {
	s.ActiveFlow = FlowNone
	s.Appointment = nil
}

// EnterHandoff locks the thread into the handoff flow.
func (s *ConversationState) EnterHandoff() {
	s.ActiveFlow = FlowHandoff
	s.Handoff = &HandoffForm{AwaitingReason: true}
}

// ExitHandoff releases the handoff lock.
func (s *ConversationState) ExitHandoff() {
	s.ActiveFlow = FlowNone
	s.Handoff = nil
}

// NormalizedLast lowercases and trims the latest user message for keyword
// matching.
func (s *ConversationState) NormalizedLast() string {
	return strings.ToLower(strings.TrimSpace(s.LastUserMessage()))
}
