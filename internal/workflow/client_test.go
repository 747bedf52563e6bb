package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSlots(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []DaySlots
	}{
		{
			"list of days",
			`[{"date": "2025-04-12", "day": "Saturday", "slots": ["10-11", "14-15"]}]`,
			[]DaySlots{{Date: "2025-04-12", Day: "Saturday", Slots: []string{"10-11", "14-15"}}},
		},
		{
			"single bare day",
			`{"date": "2025-04-12", "day": "Saturday", "slots": ["10-11"]}`,
			[]DaySlots{{Date: "2025-04-12", Day: "Saturday", Slots: []string{"10-11"}}},
		},
		{"empty list", `[]`, []DaySlots{}},
		{"garbage", `"nothing here"`, nil},
		{"empty body", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeSlots([]byte(tt.body)))
		})
	}
}

func TestUnwrapMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"response field", `{"response": "An agent will contact you"}`, "An agent will contact you"},
		{"message field", `{"message": "noted"}`, "noted"},
		{"text field", `{"text": "ok"}`, "ok"},
		{"output field", `{"output": "done"}`, "done"},
		{"first non-empty wins", `{"response": "", "message": "noted"}`, "noted"},
		{"bare string", `"thanks"`, "thanks"},
		{"plain text", "thanks", "thanks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapMessage([]byte(tt.body)))
		})
	}
}
