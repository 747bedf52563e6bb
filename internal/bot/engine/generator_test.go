package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"proppanda_backend/internal/bot/state"
)

func TestAskPhrasesQuestionThroughLLM(t *testing.T) {
	completer := &fakeCompleter{completeReply: "Which neighbourhood feels like home?"}
	gen := NewQuestionGenerator(completer, testLogger())

	got := gen.Ask(context.Background(), "Panda", state.StepAskLocation, "")
	assert.Equal(t, "Which neighbourhood feels like home?", got)
	assert.Contains(t, completer.lastSystem, "location")
}

func TestAskFallsBackWhenLLMFails(t *testing.T) {
	completer := &fakeCompleter{completeErr: assert.AnError}
	gen := NewQuestionGenerator(completer, testLogger())

	got := gen.Ask(context.Background(), "Panda", state.StepAskBudget, "")
	assert.Contains(t, got, "budget")
}

func TestAskPassesInventoryVerdictToPrompt(t *testing.T) {
	completer := &fakeCompleter{completeReply: "Sorry, we only have mixed places. Open to one of those? And what's your budget?"}
	gen := NewQuestionGenerator(completer, testLogger())

	verdict := "UNAVAILABLE: user wants 'female only', but we only have: Mixed/Shared."
	gen.Ask(context.Background(), "Panda", state.StepAskBudget, verdict)
	assert.Contains(t, completer.lastSystem, verdict)
}

func TestAskUnavailableFallbackPitchesAlternatives(t *testing.T) {
	completer := &fakeCompleter{completeErr: assert.AnError}
	gen := NewQuestionGenerator(completer, testLogger())

	got := gen.Ask(context.Background(), "Panda", state.StepAskBudget,
		"UNAVAILABLE: user wants 'female only', but we only have: Mixed/Shared.")
	assert.Contains(t, got, "open")
	assert.Contains(t, got, "budget")
}

func TestAskUnknownStepReturnsEmpty(t *testing.T) {
	gen := NewQuestionGenerator(&fakeCompleter{}, testLogger())
	assert.Empty(t, gen.Ask(context.Background(), "Panda", state.StepExecuteSearch, ""))
}
