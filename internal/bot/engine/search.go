package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"proppanda_backend/internal/bot/state"
	"proppanda_backend/internal/properties"
	"proppanda_backend/platform/logger"
)

// locationStopwords are filler tokens stripped before the location text is
// used for geocoding or ILIKE matching.
var locationStopwords = map[string]bool{
	"near": true, "around": true, "at": true, "in": true,
	"area": true, "location": true, "mrt": true, "station": true,
}

// Searcher runs the compiled property search: text match on the cleaned
// location first, then a geocoded radius search when that finds nothing.
type Searcher struct {
	geocoder Geocoder
	store    PropertyStore
	log      *logger.Logger
}

// NewSearcher creates a searcher.
func NewSearcher(geocoder Geocoder, store PropertyStore, log *logger.Logger) *Searcher {
	return &Searcher{geocoder: geocoder, store: store, log: log}
}

// Run executes the search for the state's filters and stores the results on
// the state with display progress reset.
func (s *Searcher) Run(ctx context.Context, tenantID uuid.UUID, category properties.Category, st *state.ConversationState) error {
	term := cleanLocationTerm(st.Filters.Location())

	results, err := s.query(ctx, tenantID, category, st, nil, term)
	if err != nil {
		return err
	}

	// The text match missed; resolve the location to coordinates and widen
	// to a radius search. A geocoder failure just keeps the empty result.
	if len(results) == 0 && term != "" {
		if point, gerr := s.geocoder.Resolve(ctx, term); gerr == nil && point != nil {
			results, err = s.query(ctx, tenantID, category, st, point, "")
			if err != nil {
				return err
			}
		}
	}

	st.Results = results
	st.DisplayedCount = 0
	st.SearchRan = true
	return nil
}

func (s *Searcher) query(ctx context.Context, tenantID uuid.UUID, category properties.Category, st *state.ConversationState, geo *properties.GeoPoint, textTerm string) ([]properties.Property, error) {
	query, args := properties.BuildSearchQuery(st.Filters, tenantID, category, geo, textTerm)
	return s.store.Search(ctx, query, args)
}

// cleanLocationTerm strips filler words and keeps the meaningful tokens.
// Tokens of one or two characters are noise ("to", "a", stray punctuation).
func cleanLocationTerm(location string) string {
	fields := strings.Fields(strings.ToLower(location))
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?")
		if len(f) <= 2 || locationStopwords[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
