package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
)

// Environment check verdict prefixes. The search handler branches on them.
const (
	envConfirmed   = "CONFIRMED:"
	envUnavailable = "UNAVAILABLE:"
)

// InventoryCheck verifies a requested living environment actually exists in
// the tenant's stock before the search promises it.
type InventoryCheck struct {
	store PropertyStore
}

// NewInventoryCheck creates an inventory checker.
func NewInventoryCheck(store PropertyStore) *InventoryCheck {
	return &InventoryCheck{store: store}
}

// CheckEnvironment returns a CONFIRMED:/UNAVAILABLE: verdict for the state's
// environment preference, or empty when there is nothing to check. A bare
// confirmation message skips the check; the user is agreeing to something,
// not restating a preference.
func (c *InventoryCheck) CheckEnvironment(ctx context.Context, tenantID uuid.UUID, category properties.Category, st *state.ConversationState) (string, error) {
	pref := strings.ToLower(st.Filters.EnvironmentPref())
	if pref == "" || !category.SupportsEnvironment() {
		return "", nil
	}
	if matchesAny(st.NormalizedLast(), confirmationWords) {
		return "", nil
	}

	available, err := c.store.DistinctEnvironments(ctx, tenantID, category)
	if err != nil {
		return "", err
	}

	if environmentAvailable(pref, available) {
		return envConfirmed + " " + pref, nil
	}
	return fmt.Sprintf("%s user wants '%s', but we only have: %s. Apologize and ask if they want to proceed with the available options.",
		envUnavailable, pref, availableLabel(available)), nil
}

// environmentAvailable matches a requested environment against the tags in
// stock. Tags are already lowercased and nulls folded into "mixed". The
// female check runs first and "men" must match as a whole word, so "women"
// never trips the male branch.
func environmentAvailable(pref string, available map[string]bool) bool {
	var accepted []string
	switch {
	case strings.Contains(pref, "female") || strings.Contains(pref, "ladies") || strings.Contains(pref, "women"):
		accepted = []string{"female", "ladies"}
	case strings.Contains(pref, "male") || containsWord(pref, "men"):
		accepted = []string{"male", "men"}
	default:
		accepted = []string{"mixed", "any"}
	}

	for _, tag := range accepted {
		if available[tag] {
			return true
		}
	}
	return false
}

// availableLabel renders the in-stock tags for the unavailable verdict. "any"
// is an internal alias, not something to advertise; an empty stock reads as
// mixed housing.
func availableLabel(available map[string]bool) string {
	tags := make([]string, 0, len(available))
	for tag := range available {
		if tag == "any" {
			continue
		}
		tags = append(tags, titleCase(tag))
	}
	if len(tags) == 0 {
		return "Mixed/Shared"
	}
	sort.Strings(tags)
	return strings.Join(tags, ", ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
