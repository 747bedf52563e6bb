package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func TestBuildReplySystemIncludesSentinelInstruction(t *testing.T) {
	system := BuildReplySystem("Panda", "PropPanda Realty", "Est. 2019", ReplyContext{
		Knowledge: "Q: hours?\nA: 9-6",
		Listings:  `[{"property_name":"Sunrise Loft"}]`,
		Greeting:  "Start with 'Good morning!'",
	})

	assert.Contains(t, system, "Panda")
	assert.Contains(t, system, "PropPanda Realty")
	assert.Contains(t, system, "Est. 2019")
	assert.Contains(t, system, NoDataHandoff)
	assert.Contains(t, system, "Q: hours?")
	assert.Contains(t, system, "Sunrise Loft")
	assert.Contains(t, system, "Good morning")
}

func TestBuildReplySystemEmptyKnowledge(t *testing.T) {
	system := BuildReplySystem("Panda", "PropPanda Realty", "", ReplyContext{})
	assert.Contains(t, system, "(none)")
	assert.NotContains(t, system, "CURRENT SEARCH RESULTS")
}

func TestBuildQuestionSystemInventoryNote(t *testing.T) {
	system := BuildQuestionSystem("Panda", "monthly budget in SGD", "UNAVAILABLE: user wants 'female only', but we only have: Mixed/Shared.")
	assert.Contains(t, system, "INVENTORY STATUS")
	assert.Contains(t, system, "Mixed/Shared")

	system = BuildQuestionSystem("Panda", "monthly budget in SGD", "")
	assert.NotContains(t, system, "INVENTORY STATUS")
}

func TestBuildBookingSummarySystem(t *testing.T) {
	system := BuildBookingSummarySystem("Sunrise Loft", "physical", `{"budget_max":1500}`)
	assert.Contains(t, system, "Sunrise Loft")
	assert.Contains(t, system, "physical")
	assert.Contains(t, system, "budget_max")
}

func TestFormatTranscript(t *testing.T) {
	got := FormatTranscript([]TranscriptTurn{
		{FromBot: false, Text: "hi"},
		{FromBot: true, Text: "hello!"},
	})
	assert.Equal(t, "User: hi\nAssistant: hello!", got)
}
