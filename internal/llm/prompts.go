package llm

import (
	"fmt"
	"strings"
)

// NoDataHandoff is the sentinel the reply prompt instructs the model to emit
// when it cannot answer from the provided context. The engine converts it
// into an automatic human handoff instead of sending it to the user.
const NoDataHandoff = "NO_DATA_HANDOFF"

// ClassifySystem instructs the model to route an ambiguous message by intent.
// target_table labels match the category registry; clarification_question is
// only set for the CLARIFICATION intent and is sent to the user verbatim.
const ClassifySystem = `You route messages in a Singapore real estate WhatsApp conversation.
Reply with a JSON object: {"intent": "<intent>", "target_table": "<label>", "clarification_question": "<question>"}.
Intents:
- PROPERTY_SEARCH: the user is looking for a place. Set target_table to the best matching label.
- SWITCH_SEARCH: the user explicitly abandons the current search for a different property category. Set target_table.
- APPOINTMENT: the user wants to book or arrange a viewing.
- HUMAN_HANDOFF: the user asks for a human agent or staff member.
- CLARIFICATION: you cannot tell what the user wants. Set clarification_question to ONE short question that would resolve it.
- INTELLIGENT_CHAT: a general question or small talk, answered from the agency's knowledge.
target_table labels (required for PROPERTY_SEARCH and SWITCH_SEARCH, omit otherwise):
- coliving_property: managed co-living rooms with shared facilities
- rooms_for_rent: standard rooms rented directly by a landlord or owner
- residential_properties_for_rent: whole residential units for rent
- residential_properties_for_resale: residential units for purchase (resale)
- residential_properties_for_sale_by_developers: new launch residential
- commercial_properties_for_rent: offices, shops, commercial space for rent
- commercial_properties_for_resale: commercial property for purchase
- commercial_properties_for_sale_by_developers: new launch commercial
Pick the single best intent for the latest user message.`

// ExtractFiltersSystem instructs the model to pull search criteria out of
// the latest user message. Field names line up with the search form, so the
// reply decodes straight into it. Omitted fields mean "not mentioned".
const ExtractFiltersSystem = `You extract room search criteria from a message in a Singapore property conversation.
Reply with a JSON object containing ONLY fields the user actually mentioned:
{"location_query": string, "budget_max": integer (SGD per month), "move_in_date": "YYYY-MM-DD",
"tenant_gender": "male"|"female"|"couple", "tenant_nationality": string,
"room_type": "Master"|"Common", "needs_ensuite": bool, "needs_cooking": bool,
"has_pets": bool, "needs_gym": bool, "needs_pool": bool,
"needs_visitor_allowance": bool, "needs_wifi": bool,
"environment": "female only"|"male only"|"mixed"}
Never guess. If nothing was mentioned, reply with {}.`

// ReplyContext carries the grounding material for a free-form reply.
type ReplyContext struct {
	Knowledge string // tenant knowledge base extract
	Listings  string // JSON snapshot of the current search results, if any
	Greeting  string // opening instruction, set on the first interaction
}

// BuildReplySystem assembles the persona prompt for free-form replies,
// grounded strictly in the tenant's knowledge base and current results.
func BuildReplySystem(botName, companyName, bio string, rc ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the assistant for %s, a real estate agency in Singapore.\n", botName, companyName)
	if bio != "" {
		fmt.Fprintf(&b, "About the agency: %s\n", bio)
	}
	b.WriteString("Answer the user's last message in a short, friendly WhatsApp style.\n")
	b.WriteString("Only use facts from the reference material below. ")
	fmt.Fprintf(&b, "If the reference material does not contain the answer, reply with exactly %s and nothing else.\n", NoDataHandoff)
	if rc.Greeting != "" {
		b.WriteString(rc.Greeting)
		b.WriteString("\n")
	}
	b.WriteString("\n--- REFERENCE MATERIAL ---\n")
	if rc.Knowledge == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(rc.Knowledge)
		b.WriteString("\n")
	}
	if rc.Listings != "" {
		b.WriteString("\n--- CURRENT SEARCH RESULTS ---\n")
		b.WriteString(rc.Listings)
		b.WriteString("\n")
	}
	b.WriteString("--- END REFERENCE MATERIAL ---")
	return b.String()
}

// BuildQuestionSystem assembles the prompt used to phrase the next intake
// question naturally instead of sending a canned line. inventoryNote, when
// set, is the environment check verdict; an unavailable verdict turns the
// question into a recovery message before the form moves on.
func BuildQuestionSystem(botName, field, inventoryNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly Singapore property assistant on WhatsApp.\n", botName)
	fmt.Fprintf(&b, "Write ONE short message asking the user for their %s.\n", field)
	if inventoryNote != "" {
		fmt.Fprintf(&b, "INVENTORY STATUS: %s\n", inventoryNote)
		b.WriteString("If the status says UNAVAILABLE, apologize, explain what IS available, and ask whether they are open to one of those instead of asking the question above.\n")
		b.WriteString("If the status says CONFIRMED, briefly acknowledge the good news first, then ask the question.\n")
	}
	b.WriteString("Keep the tone light, no more than two sentences, no markdown.")
	return b.String()
}

// BuildBookingSummarySystem assembles the prompt that condenses a finished
// booking conversation for the human agent picking it up.
func BuildBookingSummarySystem(propertyName, viewingType, filtersJSON string) string {
	return fmt.Sprintf(`You summarize a real estate WhatsApp conversation for a human agent.
Write a concise but detailed summary of the user's requirements and the booking context.
Property: %s
Viewing type: %s
Extracted criteria: %s
Start with "User is looking for...". Include budget, location, move-in date, and any specific
questions they asked (cooking, visitors, and so on). Mention they scheduled a %s viewing.`,
		propertyName, viewingType, filtersJSON, viewingType)
}

// FormatTranscript renders alternating turns into the plain-text transcript
// shape the prompts expect.
func FormatTranscript(turns []TranscriptTurn) string {
	var b strings.Builder
	for _, t := range turns {
		role := "User"
		if t.FromBot {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Text)
	}
	return strings.TrimSpace(b.String())
}

// TranscriptTurn is one line of conversation for prompt building.
type TranscriptTurn struct {
	FromBot bool
	Text    string
}
