package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
)

// displayBatchSize is how many listings each message shows.
const displayBatchSize = 3

// RenderNextBatch formats the next batch of unshown results and advances the
// display cursor. The trailing line either offers the remainder or invites a
// viewing, so the router can read the booking context back out of it.
func RenderNextBatch(st *state.ConversationState) string {
	remaining := st.RemainingResults()
	if len(remaining) == 0 {
		return "That's everything I have for this search! Want to adjust your criteria, or book a viewing for one of the places above?"
	}

	batch := remaining
	if len(batch) > displayBatchSize {
		batch = batch[:displayBatchSize]
	}

	var b strings.Builder
	if st.DisplayedCount == 0 {
		fmt.Fprintf(&b, "Great news! I found %d place(s) for you:\n\n", len(st.Results))
	}
	for i, p := range batch {
		b.WriteString(renderCard(st.DisplayedCount+i+1, p))
		b.WriteString("\n")
	}

	st.DisplayedCount += len(batch)

	left := len(st.Results) - st.DisplayedCount
	if left > 0 {
		fmt.Fprintf(&b, "I have %d more option(s). Want to see them?", left)
	} else {
		b.WriteString("That's all of them! Would you like to book a viewing for any of these?")
	}
	return b.String()
}

func renderCard(index int, p properties.Property) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d. %s*\n", index, p.Name)
	if p.RoomNumber != "" {
		fmt.Fprintf(&b, "🚪 Room %s\n", p.RoomNumber)
	}
	if p.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", p.Address)
	}
	fmt.Fprintf(&b, "💰 $%.0f/month\n", p.MonthlyRent)
	if p.RoomType != "" {
		fmt.Fprintf(&b, "🛏️ %s\n", p.RoomType)
	}
	if p.NearestMRT != "" {
		fmt.Fprintf(&b, "🚇 Near %s\n", p.NearestMRT)
	}
	if p.Environment != "" {
		fmt.Fprintf(&b, "🏠 %s environment\n", p.Environment)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "📝 _%s_\n", truncate(p.Description, 100))
	}
	if url := firstMediaURL(p.Media); url != "" {
		fmt.Fprintf(&b, "📷 %s\n", url)
	}
	return b.String()
}

// firstMediaURL picks one image to attach. The media column holds either a
// bare URL or a JSON array of URLs depending on how the listing was imported.
func firstMediaURL(media string) string {
	if !strings.HasPrefix(media, "[") {
		return media
	}
	var urls []string
	if err := json.Unmarshal([]byte(media), &urls); err != nil || len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
