package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proppanda_backend/internal/bot/state"
)

func TestChatReplyGroundsOnKnowledge(t *testing.T) {
	completer := &fakeCompleter{completeReply: "We're open 9 to 6!"}
	h := NewChatHandler(completer, &fakeKnowledge{text: "Q: hours?\nA: 9-6"}, testLogger())

	st := state.New("t")
	st.AddUserMessage("what are your opening hours?")

	reply, handoff, err := h.Reply(context.Background(), testTenant(), st)
	require.NoError(t, err)
	assert.False(t, handoff)
	assert.Equal(t, "We're open 9 to 6!", reply)
	assert.Contains(t, completer.lastSystem, "Q: hours?")
}

func TestChatReplySignalsHandoffOnSentinel(t *testing.T) {
	completer := &fakeCompleter{completeReply: "NO_DATA_HANDOFF"}
	h := NewChatHandler(completer, &fakeKnowledge{}, testLogger())

	st := state.New("t")
	st.AddUserMessage("can you fix my visa situation?")

	_, handoff, err := h.Reply(context.Background(), testTenant(), st)
	require.NoError(t, err)
	assert.True(t, handoff)
}

func TestGreetingInstructionFirstInteraction(t *testing.T) {
	tn := testTenant()
	st := state.New("t")
	st.AddUserMessage("hello")

	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.FixedZone("SGT", 8*3600))
	got := greetingInstruction(tn, st, morning)
	assert.Contains(t, got, "Good morning")
	assert.Contains(t, got, tn.ChatbotName)

	evening := time.Date(2026, 3, 10, 21, 0, 0, 0, time.FixedZone("SGT", 8*3600))
	assert.Contains(t, greetingInstruction(tn, st, evening), "Good evening")
}

func TestGreetingInstructionLaterTurns(t *testing.T) {
	st := state.New("t")
	st.AddUserMessage("hello")
	st.AddBotMessage("hi!")
	st.AddUserMessage("what's the deposit?")

	got := greetingInstruction(testTenant(), st, time.Now())
	assert.Contains(t, got, "Do not start with a formal greeting")
}

func TestListingsContextTopThree(t *testing.T) {
	st := state.New("t")
	assert.Empty(t, listingsContext(st))

	st.Results = sampleResults(5)
	ctx := listingsContext(st)
	assert.Contains(t, ctx, "Sunrise Loft 3")
	assert.NotContains(t, ctx, "Sunrise Loft 4")
}
