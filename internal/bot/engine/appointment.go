package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/llm"
	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/workflow"
	"proppanda_backend/platform/logger"
	"proppanda_backend/platform/validator"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	slotDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slotTimePattern = regexp.MustCompile(`\b(\d{1,2})\s*-\s*(\d{1,2})\b`)
	bareDigitRef    = regexp.MustCompile(`\b([1-9])\b`)
	roomDigits      = regexp.MustCompile(`\d+`)
)

// Placeholders carried into the scheduling payload when the user's slot
// reply did not contain a parseable date or hour range. The scheduling
// workflow resolves them with the agent.
const (
	unknownDate = "UNKNOWN-DATE"
	unknownTime = "UNKNOWN-TIME"
)

// maxSlotDays caps how many day groups of availability are shown at once.
const maxSlotDays = 5

// summaryWindow is how many recent messages feed the booking summary.
const summaryWindow = 10

// ordinalRefs maps spoken ordinals to result indices. Checked in order, so
// "the second one" resolves on "second" before the trailing "one".
var ordinalRefs = []struct {
	word string
	idx  int
}{
	{"1st", 0}, {"first", 0},
	{"2nd", 1}, {"second", 1},
	{"3rd", 2}, {"third", 2},
	{"one", 0}, {"two", 1}, {"three", 2},
}

// BookingResult reports a completed booking for event publication.
type BookingResult struct {
	PropertyID   string
	PropertyName string
	Email        string
	ViewingType  string
	SlotDate     string
	SlotTime     string
}

// AppointmentFlow walks the user through booking a viewing: pick a property,
// collect the intake fields in a fixed order, offer availability matching
// their preferred time window, and submit the booking to the scheduling
// workflow along with a summary of the conversation.
type AppointmentFlow struct {
	workflows WorkflowRunner
	llm       Completer
	validate  *validator.Validator
	log       *logger.Logger
}

// NewAppointmentFlow creates the booking flow handler.
func NewAppointmentFlow(workflows WorkflowRunner, completer Completer, validate *validator.Validator, log *logger.Logger) *AppointmentFlow {
	return &AppointmentFlow{workflows: workflows, llm: completer, validate: validate, log: log}
}

// Handle advances the flow by one turn. On first entry it also tries to
// resolve a property reference from the triggering message, so "book room 2"
// skips the selection question entirely.
func (f *AppointmentFlow) Handle(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) (string, *BookingResult, error) {
	if st.ActiveFlow != state.FlowAppointment {
		st.EnterAppointment()
		return f.selectProperty(st, true), nil, nil
	}

	form := st.Appointment
	switch form.Step {
	case state.ApptSelectProperty:
		return f.selectProperty(st, false), nil, nil
	case state.ApptAskEmail:
		return f.collectEmail(st), nil, nil
	case state.ApptAskPassType:
		form.PassType = strings.TrimSpace(st.LastUserMessage())
		form.Step = state.ApptAskLease
		return "Got it. How many months are you planning to lease for?", nil, nil
	case state.ApptAskLease:
		form.LeaseMonths = strings.TrimSpace(st.LastUserMessage())
		form.Step = state.ApptAskViewingType
		return "Would you prefer a physical viewing or a video call viewing?", nil, nil
	case state.ApptAskViewingType:
		form.ViewingType = strings.TrimSpace(st.LastUserMessage())
		form.Step = state.ApptAskTimePref
		return "What time usually works best for you? Morning, after lunch, or after work?", nil, nil
	case state.ApptAskTimePref:
		form.TimePreference = strings.TrimSpace(st.LastUserMessage())
		return f.offerSlots(ctx, t, st), nil, nil
	case state.ApptSelectSlot:
		return f.finalize(ctx, t, st)
	default:
		st.ExitAppointment()
		return "Something went wrong with the booking, let's start over. Which property would you like to view?", nil, nil
	}
}

// ExitReply abandons the flow in response to an exit keyword.
func (f *AppointmentFlow) ExitReply(st *state.ConversationState) string {
	st.ExitAppointment()
	return "No problem, I've cancelled the booking. Let me know if you'd like to see more places or book a different viewing!"
}

func (f *AppointmentFlow) selectProperty(st *state.ConversationState, firstEntry bool) string {
	form := st.Appointment

	// A single result needs no selection question.
	if len(st.Results) == 1 {
		applySelection(form, st.Results[0])
		return fmt.Sprintf("Let's book a viewing for *%s*! First, what's your email address?", form.PropertyName)
	}

	if p := resolveSelection(st.NormalizedLast(), st.Results); p != nil {
		applySelection(form, *p)
		return fmt.Sprintf("Let's book a viewing for *%s*! First, what's your email address?", form.PropertyName)
	}

	if firstEntry {
		return "Sure! Which of the places I showed you would you like to view? You can reply with the number, the name, or the room."
	}
	return "Sorry, I couldn't tell which place you meant. Reply with the number (e.g. 1), the property name, or the room number."
}

func applySelection(form *state.AppointmentForm, p properties.Property) {
	form.PropertyID = p.ID
	form.PropertyName = p.Name
	form.PropertyAddress = p.Address
	form.RoomNumber = p.RoomNumber
	form.MonthlyRent = p.MonthlyRent
	form.Step = state.ApptAskEmail
}

// resolveSelection matches a message against the result list: ordinals
// first, then a bare digit in a short message, then a fuzzy name match, then
// room numbers. Names outrank rooms because a property name can itself
// contain a number that collides with another listing's room.
func resolveSelection(msg string, results []properties.Property) *properties.Property {
	if len(results) == 0 {
		return nil
	}

	for _, ref := range ordinalRefs {
		if containsWord(msg, ref.word) && ref.idx < len(results) {
			return &results[ref.idx]
		}
	}

	// A lone digit in a short reply ("2" or "no. 2") is a list index.
	// Longer messages mention digits for other reasons (budgets, dates).
	if len(msg) < 10 {
		if m := bareDigitRef.FindStringSubmatch(msg); m != nil {
			idx, _ := strconv.Atoi(m[1])
			if idx >= 1 && idx <= len(results) {
				return &results[idx-1]
			}
		}
	}

	for i := range results {
		name := strings.ToLower(results[i].Name)
		if name != "" && (strings.Contains(msg, name) || strings.Contains(name, msg)) {
			return &results[i]
		}
	}

	if m := roomRefPattern.FindString(msg); m != "" {
		num := roomDigits.FindString(m)
		for i := range results {
			if results[i].RoomNumber != "" && roomDigits.FindString(results[i].RoomNumber) == num {
				return &results[i]
			}
		}
	}
	return nil
}

// containsWord reports whether word appears as a whole token in msg.
func containsWord(msg, word string) bool {
	for _, f := range strings.Fields(msg) {
		if strings.Trim(f, ".,!?") == word {
			return true
		}
	}
	return false
}

func (f *AppointmentFlow) collectEmail(st *state.ConversationState) string {
	form := st.Appointment
	email := emailPattern.FindString(st.LastUserMessage())
	if email == "" || f.validate.Var(email, "required,email") != nil {
		return "That doesn't look like an email address. Could you type it again? (e.g. name@example.com)"
	}
	form.Email = email
	form.Step = state.ApptAskPassType
	return "Thanks! What pass are you holding? (e.g. EP, S Pass, Work Permit, Student Pass, Citizen/PR)"
}

// offerSlots fetches availability for the chosen time window and shows it.
// Nothing usable for that window clears the preference so the next message
// picks a different one; the fetch runs once per preference.
func (f *AppointmentFlow) offerSlots(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) string {
	form := st.Appointment

	if !form.SlotsFetched {
		days, err := f.workflows.GetAvailableSlots(ctx, workflow.SlotsRequest{
			TenantID:       t.ID.String(),
			PropertyID:     form.PropertyID,
			PropertyName:   form.PropertyName,
			ThreadID:       st.ThreadID,
			TimePreference: form.TimePreference,
		})
		form.SlotsFetched = true
		if err != nil {
			f.log.CollaboratorError("workflow", "slots", err)
		} else {
			form.AvailableSlots = days
		}
	}

	rendered := renderSlots(form.AvailableSlots)
	if rendered == "" {
		form.TimePreference = ""
		form.SlotsFetched = false
		form.AvailableSlots = nil
		return "I couldn't find available slots for that time. Would a different window work? Morning, after lunch, or after work?"
	}

	form.Step = state.ApptSelectSlot
	return fmt.Sprintf("📅 Here's the upcoming availability:\n\n%s\n\nReply with the date and time that works for you.", rendered)
}

// renderSlots flattens the day groups into display lines, capped so the
// message stays readable on a phone. Days with no open slots are skipped.
func renderSlots(days []workflow.DaySlots) string {
	lines := make([]string, 0, maxSlotDays)
	for _, d := range days {
		if len(d.Slots) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("• *%s* (%s): %s", d.Day, d.Date, strings.Join(d.Slots, ", ")))
		if len(lines) == maxSlotDays {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// parseSlotChoice pulls the date and hour range out of the user's reply.
// Anything unparseable becomes a placeholder the workflow resolves manually;
// the booking itself always goes through.
func parseSlotChoice(msg string) (date, timeRange string) {
	date = unknownDate
	timeRange = unknownTime

	if d := slotDatePattern.FindString(msg); d != "" {
		date = d
		// Strip the date so its digits can't be misread as an hour range.
		msg = strings.Replace(msg, d, "", 1)
	}

	if m := slotTimePattern.FindStringSubmatch(msg); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		timeRange = fmt.Sprintf("%02d:00 - %02d:00", from, to)
	}
	return date, timeRange
}

// finalize books the slot the user just picked. Failure is terminal for the
// flow: the user gets an apology, an agent picks the booking up manually,
// and the thread is released rather than wedged on a retry loop.
func (f *AppointmentFlow) finalize(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) (string, *BookingResult, error) {
	form := st.Appointment
	form.SlotDate, form.SlotTime = parseSlotChoice(st.LastUserMessage())

	var filters properties.SearchFilters
	if st.Filters != nil {
		filters = *st.Filters
	}

	err := f.workflows.ScheduleAppointment(ctx, workflow.ScheduleRequest{
		TenantID:        t.ID.String(),
		ThreadID:        st.ThreadID,
		PropertyID:      form.PropertyID,
		PropertyName:    form.PropertyName,
		PropertyAddress: form.PropertyAddress,
		RoomNumber:      form.RoomNumber,
		MonthlyRent:     form.MonthlyRent,
		Email:           form.Email,
		Gender:          fieldOr(filters.TenantGender),
		Nationality:     fieldOr(filters.TenantNationality),
		MoveInDate:      fieldOr(filters.MoveInDate),
		PassType:        form.PassType,
		LeaseMonths:     form.LeaseMonths,
		ViewingType:     form.ViewingType,
		TimePreference:  form.TimePreference,
		SlotDate:        form.SlotDate,
		SlotTime:        form.SlotTime,
		ChatSummary:     f.bookingSummary(ctx, st, form),
	})
	if err != nil {
		st.ExitAppointment()
		return "I'm sorry, I couldn't finalize the booking automatically. I've notified one of our agents, and they'll sort it out with you shortly.", nil, nil
	}

	result := &BookingResult{
		PropertyID:   form.PropertyID,
		PropertyName: form.PropertyName,
		Email:        form.Email,
		ViewingType:  form.ViewingType,
		SlotDate:     form.SlotDate,
		SlotTime:     form.SlotTime,
	}
	reply := fmt.Sprintf(
		"✅ Your viewing for *%s* is confirmed!\n\n📅 %s\n🕐 %s\n\nA confirmation will reach you at %s shortly. Anything else I can help with?",
		form.PropertyName, form.SlotDate, form.SlotTime, form.Email,
	)
	st.ExitAppointment()
	return reply, result, nil
}

// bookingSummary condenses the conversation for the human agent receiving
// the booking. The LLM writes it; a broken LLM falls back to a one-liner
// rather than delaying the booking.
func (f *AppointmentFlow) bookingSummary(ctx context.Context, st *state.ConversationState, form *state.AppointmentForm) string {
	fallback := fmt.Sprintf("User %s booked a %s viewing for %s.", form.Email, form.ViewingType, form.PropertyName)

	filtersJSON, err := json.Marshal(st.Filters)
	if err != nil {
		filtersJSON = []byte("{}")
	}
	system := llm.BuildBookingSummarySystem(form.PropertyName, form.ViewingType, string(filtersJSON))
	summary, err := f.llm.Complete(ctx, system, transcriptOf(st.Recent(summaryWindow)))
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			f.log.CollaboratorError("llm", "booking_summary", err)
		}
		return fallback
	}
	return summary
}

// fieldOr renders an optional filter field for a workflow payload.
func fieldOr(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}
