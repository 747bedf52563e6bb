package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/llm"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/platform/logger"
)

// chatWindow is how many recent messages ground a free-form reply.
const chatWindow = 7

// ChatHandler answers general questions from the tenant's knowledge base.
// When the knowledge base cannot answer, it signals an automatic handoff
// instead of letting the model improvise.
type ChatHandler struct {
	llm       Completer
	knowledge KnowledgeProvider
	log       *logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(completer Completer, knowledge KnowledgeProvider, log *logger.Logger) *ChatHandler {
	return &ChatHandler{llm: completer, knowledge: knowledge, log: log}
}

// Reply produces the free-form answer. handoff is true when the knowledge
// base had no answer and a human should take over.
func (h *ChatHandler) Reply(ctx context.Context, t *tenant.Tenant, st *state.ConversationState) (reply string, handoff bool, err error) {
	reference, err := h.knowledge.ReferenceText(ctx, t.ID)
	if err != nil {
		// A broken knowledge base should not silence the bot; answer from
		// the persona alone.
		h.log.DatabaseError("knowledge_reference", err)
		reference = ""
	}

	rc := llm.ReplyContext{
		Knowledge: reference,
		Listings:  listingsContext(st),
		Greeting:  greetingInstruction(t, st, time.Now()),
	}
	system := llm.BuildReplySystem(t.ChatbotName, t.CompanyName, t.Bio, rc)
	answer, err := h.llm.Complete(ctx, system, transcriptOf(st.Recent(chatWindow)))
	if err != nil {
		return "", false, err
	}

	if strings.Contains(answer, llm.NoDataHandoff) {
		return "", true, nil
	}
	return answer, false, nil
}

// listingsContext renders the top results as JSON so follow-up questions
// about a shown listing can be answered without rerunning the search.
func listingsContext(st *state.ConversationState) string {
	if len(st.Results) == 0 {
		return ""
	}
	top := st.Results
	if len(top) > 3 {
		top = top[:3]
	}
	raw, err := json.Marshal(top)
	if err != nil {
		return ""
	}
	return string(raw)
}

// greetingInstruction opens the very first interaction with a time-of-day
// greeting in Singapore time; later turns answer without one.
func greetingInstruction(t *tenant.Tenant, st *state.ConversationState, now time.Time) string {
	if len(st.Messages) > 1 {
		return "Do not start with a formal greeting. Answer naturally."
	}
	loc, err := time.LoadLocation("Asia/Singapore")
	if err == nil {
		now = now.In(loc)
	}
	greeting := "Good evening"
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		greeting = "Good morning"
	case h >= 12 && h < 18:
		greeting = "Good afternoon"
	}
	return fmt.Sprintf("Start with '%s! I'm %s from %s. What can I do for you today?'", greeting, t.ChatbotName, t.CompanyName)
}
