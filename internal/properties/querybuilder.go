package properties

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GeoPoint is a WGS84 coordinate pair from the geocoder.
type GeoPoint struct {
	Lat float64
	Lng float64
}

const searchRadiusMeters = 3000
const searchLimit = 10

// selectColumns is the snapshot column list; NULLs are collapsed so rows can
// be scanned straight into the Property record.
const selectColumns = `p.property_id, COALESCE(p.property_name, ''), COALESCE(p.property_address, ''),
	COALESCE(p.room_number, ''), COALESCE(p.monthly_rent, 0), COALESCE(p.room_type, ''),
	COALESCE(p.nearest_mrt, ''), COALESCE(p.media, ''), COALESCE(p.description, ''),
	COALESCE(p.environment, ''), COALESCE(p.gender_preference, ''), COALESCE(p.nationality_preferences, '')`

// BuildSearchQuery compiles the filter form into a parameterized SQL query.
// Exactly one of geo / textTerm drives the location predicate; both may be
// absent. Rows are ordered by distance when geo is given, ascending rent
// otherwise, and always capped at 10.
func BuildSearchQuery(filters *SearchFilters, tenantID uuid.UUID, category Category, geo *GeoPoint, textTerm string) (string, []any) {
	table := string(CategoryColiving)
	if category.Known() {
		table = string(category)
	}

	var b strings.Builder
	args := []any{tenantID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	fmt.Fprintf(&b, "SELECT %s\nFROM %s p\n", selectColumns, table)
	b.WriteString("LEFT JOIN property_geolocations g ON p.property_id = g.property_id\n")
	b.WriteString("WHERE p.agent_id = $1\n")
	b.WriteString("AND p.listing_status = 'active'\n")
	b.WriteString("AND p.current_listing = 'Available to rent'\n")

	orderBy := "p.monthly_rent ASC"

	if geo != nil {
		point := fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography", arg(geo.Lng), arg(geo.Lat))
		fmt.Fprintf(&b, "AND ST_DWithin(g.location, %s, %d)\n", point, searchRadiusMeters)
		orderBy = fmt.Sprintf("ST_Distance(g.location, %s) ASC", point)
	} else if textTerm != "" {
		pattern := arg("%" + textTerm + "%")
		fmt.Fprintf(&b, "AND (p.property_name ILIKE %[1]s OR p.property_address ILIKE %[1]s OR p.nearest_mrt ILIKE %[1]s OR p.district ILIKE %[1]s)\n", pattern)
	}

	if filters != nil {
		appendFilterPredicates(&b, filters, arg)
	}

	fmt.Fprintf(&b, "ORDER BY %s LIMIT %d", orderBy, searchLimit)
	return b.String(), args
}

func appendFilterPredicates(b *strings.Builder, filters *SearchFilters, arg func(any) string) {
	if filters.BudgetMax != nil {
		fmt.Fprintf(b, "AND p.monthly_rent <= %s\n", arg(*filters.BudgetMax))
	}

	// Strict environment filter, only when the user explicitly asked for one.
	if env := filters.EnvironmentPref(); env != "" {
		term := strings.ToLower(env)
		switch {
		case strings.Contains(term, "female") || strings.Contains(term, "ladies"):
			b.WriteString("AND p.environment ILIKE 'female'\n")
		case strings.Contains(term, "male") || strings.Contains(term, "men"):
			b.WriteString("AND p.environment ILIKE 'male'\n")
		case strings.Contains(term, "mixed"):
			b.WriteString("AND p.environment ILIKE 'mixed'\n")
		}
	}

	// Landlord compatibility always runs, independent of the environment
	// filter. The environment safety clauses keep a tenant out of an
	// opposite-exclusive environment even when the landlord would allow it.
	if filters.TenantGender != nil {
		switch strings.ToLower(*filters.TenantGender) {
		case "male":
			b.WriteString("AND (p.gender_preference ILIKE 'male' OR p.gender_preference ILIKE 'any' OR p.gender_preference ILIKE 'mixed' OR p.gender_preference IS NULL)\n")
			b.WriteString("AND (p.environment NOT ILIKE 'female' OR p.environment IS NULL)\n")
		case "female":
			b.WriteString("AND (p.gender_preference ILIKE 'female' OR p.gender_preference ILIKE 'any' OR p.gender_preference ILIKE 'mixed' OR p.gender_preference IS NULL)\n")
			b.WriteString("AND (p.environment NOT ILIKE 'male' OR p.environment IS NULL)\n")
		case "couple":
			b.WriteString("AND (p.gender_preference ILIKE 'any' OR p.gender_preference ILIKE 'couple' OR p.gender_preference ILIKE 'mixed' OR p.gender_preference IS NULL)\n")
			b.WriteString("AND (p.environment NOT ILIKE 'male' AND p.environment NOT ILIKE 'female')\n")
		}
	}

	if filters.TenantNationality != nil {
		pattern := arg("%" + *filters.TenantNationality + "%")
		fmt.Fprintf(b, "AND (p.nationality_preferences ILIKE %s OR p.nationality_preferences ILIKE 'any' OR p.nationality_preferences ILIKE 'all' OR p.nationality_preferences IS NULL)\n", pattern)
	}

	// Room type, inferred from either the explicit type or the ensuite flag.
	wantsEnsuite := filters.RoomType != nil && strings.EqualFold(*filters.RoomType, "Master")
	wantsCommon := filters.RoomType != nil && strings.EqualFold(*filters.RoomType, "Common")
	if filters.NeedsEnsuite != nil {
		wantsEnsuite = wantsEnsuite || *filters.NeedsEnsuite
		wantsCommon = wantsCommon || !*filters.NeedsEnsuite
	}
	if wantsCommon && !wantsEnsuite {
		b.WriteString("AND p.room_type ILIKE '%without attached%'\n")
	} else if wantsEnsuite {
		b.WriteString("AND p.room_type ILIKE '%with attached%'\n")
	}

	if boolSet(filters.NeedsCooking) {
		b.WriteString("AND (p.cooking_allowed = true OR p.gas_stove = true)\n")
	}
	if boolSet(filters.NeedsGym) {
		b.WriteString("AND p.gym = true\n")
	}
	if boolSet(filters.NeedsPool) {
		b.WriteString("AND p.swimming_pool = true\n")
	}
	if boolSet(filters.NeedsWifi) {
		// Wifi is stored as free text in the source data; match loose truthy values.
		b.WriteString("AND (p.wifi ILIKE 'true' OR p.wifi ILIKE 'available' OR p.wifi ILIKE 'free')\n")
	}

	// Policy columns hold phrases, so pets and visitors match by excluding
	// the negative phrasings.
	if boolSet(filters.HasPets) {
		b.WriteString("AND ((p.pet_policy NOT ILIKE '%not allowed%' AND p.pet_policy NOT ILIKE '%no pets%') OR p.pet_policy IS NULL)\n")
	}
	if boolSet(filters.NeedsVisitorAllowance) {
		b.WriteString("AND (p.visitor_policy NOT ILIKE '%not allowed%' OR p.visitor_policy IS NULL)\n")
	}

	if filters.MoveInDate != nil {
		fmt.Fprintf(b, "AND (p.available_from <= %s OR p.available_from IS NULL)\n", arg(*filters.MoveInDate))
	}
}

func boolSet(v *bool) bool {
	return v != nil && *v
}
