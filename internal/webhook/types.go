// Package webhook receives WhatsApp Cloud API callbacks, resolves the
// tenant, and drives the dialogue engine.
package webhook

// Payload mirrors the slice of the Cloud API callback shape the bot needs.
type Payload struct {
	Entry []Entry `json:"entry"`
}

type Entry struct {
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value `json:"value"`
}

type Value struct {
	Metadata Metadata  `json:"metadata"`
	Messages []Message `json:"messages"`
	Statuses []Status  `json:"statuses"`
}

type Metadata struct {
	PhoneNumberID string `json:"phone_number_id"`
}

type Message struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text Text   `json:"text"`
}

type Text struct {
	Body string `json:"body"`
}

// Status entries are delivery receipts; the bot ignores them.
type Status struct {
	ID string `json:"id"`
}

// InboundMessage is a flattened text message ready for the engine.
type InboundMessage struct {
	PhoneNumberID string
	From          string
	Body          string
}

// ExtractMessages flattens the callback into the text messages it carries.
// Non-text messages and pure status updates yield nothing.
func ExtractMessages(p Payload) []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				out = append(out, InboundMessage{
					PhoneNumberID: change.Value.Metadata.PhoneNumberID,
					From:          msg.From,
					Body:          msg.Text.Body,
				})
			}
		}
	}
	return out
}
