package engine

import (
	"context"
	"strings"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/llm"
	"proppanda_backend/platform/logger"
)

// intakeField describes each question step for the phrasing prompt and the
// canned fallback used when the LLM is unavailable.
var intakeFields = map[state.Step]struct {
	Field    string
	Fallback string
}{
	state.StepAskLocation: {
		Field:    "preferred location or nearest MRT station",
		Fallback: "Which area or MRT station would you like to stay near?",
	},
	state.StepAskBudget: {
		Field:    "monthly budget in SGD",
		Fallback: "What's your monthly budget (in SGD)?",
	},
	state.StepAskMoveInDate: {
		Field:    "move-in date",
		Fallback: "When are you planning to move in?",
	},
	state.StepAskGender: {
		Field:    "gender (so I can match landlord and housemate preferences)",
		Fallback: "May I know your gender? Some landlords have preferences for their units.",
	},
	state.StepAskNationality: {
		Field:    "nationality (some landlords have preferences)",
		Fallback: "May I know your nationality? A few landlords have preferences I need to match.",
	},
}

// QuestionGenerator phrases intake questions through the LLM so the bot does
// not repeat the same canned line every conversation. Failures fall back to
// the fixed phrasing; the question must always go out.
type QuestionGenerator struct {
	llm Completer
	log *logger.Logger
}

// NewQuestionGenerator creates a question generator.
func NewQuestionGenerator(completer Completer, log *logger.Logger) *QuestionGenerator {
	return &QuestionGenerator{llm: completer, log: log}
}

// Ask returns the outbound question for an intake step. inventoryNote is the
// environment check verdict, if any; an unavailable verdict makes the message
// pitch what's actually in stock before the form moves on.
func (g *QuestionGenerator) Ask(ctx context.Context, botName string, step state.Step, inventoryNote string) string {
	info, ok := intakeFields[step]
	if !ok {
		return ""
	}

	question, err := g.llm.Complete(ctx, llm.BuildQuestionSystem(botName, info.Field, inventoryNote), "Ask the question now.")
	if err != nil || question == "" {
		if err != nil {
			g.log.CollaboratorError("llm", "phrase_question", err)
		}
		if strings.HasPrefix(inventoryNote, envUnavailable) {
			return "Sorry, we don't have that kind of place at the moment. Would you be open to one of the options we do have? " + info.Fallback
		}
		return info.Fallback
	}
	return question
}
