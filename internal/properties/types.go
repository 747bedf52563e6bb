// Package properties holds the listing domain model, the search query
// compiler, and the read-only repository over the property store.
package properties

// Category identifies a listing category. Values double as the backing
// table names, so every category that reaches SQL must be in the Catalog.
type Category string

const (
	CategoryColiving            Category = "coliving_property"
	CategoryRoomsForRent        Category = "rooms_for_rent"
	CategoryResidentialRent     Category = "residential_properties_for_rent"
	CategoryResidentialResale   Category = "residential_properties_for_resale"
	CategoryResidentialNewBuild Category = "residential_properties_for_sale_by_developers"
	CategoryCommercialRent      Category = "commercial_properties_for_rent"
	CategoryCommercialResale    Category = "commercial_properties_for_resale"
	CategoryCommercialNewBuild  Category = "commercial_properties_for_sale_by_developers"
)

// CategoryInfo maps a category to its tenant capability column and the
// human-readable name used in decline messages.
type CategoryInfo struct {
	CapabilityColumn string
	DisplayName      string
}

// Catalog is the fixed category registry. Decline messages are derived from
// it dynamically, never hard-coded.
var Catalog = map[Category]CategoryInfo{
	CategoryColiving:            {CapabilityColumn: "co_living_property", DisplayName: "Co-living Spaces"},
	CategoryRoomsForRent:        {CapabilityColumn: "rooms_for_rent", DisplayName: "Standard Rooms"},
	CategoryResidentialRent:     {CapabilityColumn: "residential_property_rent", DisplayName: "Whole Unit Rentals"},
	CategoryResidentialResale:   {CapabilityColumn: "residential_property_resale", DisplayName: "Residential Sales"},
	CategoryResidentialNewBuild: {CapabilityColumn: "residential_property_developer", DisplayName: "New Launch Residential"},
	CategoryCommercialRent:      {CapabilityColumn: "commercial_property_rent", DisplayName: "Commercial Rentals"},
	CategoryCommercialResale:    {CapabilityColumn: "commercial_property_resale", DisplayName: "Commercial Sales"},
	CategoryCommercialNewBuild:  {CapabilityColumn: "commercial_property_developer", DisplayName: "New Launch Commercial"},
}

// Known reports whether the category is registered.
func (c Category) Known() bool {
	_, ok := Catalog[c]
	return ok
}

// SupportsEnvironment reports whether the environment preference applies to
// this category. Only shared-living categories carry environment tags.
func (c Category) SupportsEnvironment() bool {
	return c == CategoryColiving || c == CategoryRoomsForRent
}

// Property is a read-only listing snapshot taken at search time.
type Property struct {
	ID                     string  `json:"property_id"`
	Name                   string  `json:"property_name"`
	Address                string  `json:"property_address"`
	RoomNumber             string  `json:"room_number"`
	MonthlyRent            float64 `json:"monthly_rent"`
	RoomType               string  `json:"room_type"`
	NearestMRT             string  `json:"nearest_mrt"`
	Media                  string  `json:"media"`
	Description            string  `json:"description"`
	Environment            string  `json:"environment"`
	GenderPreference       string  `json:"gender_preference"`
	NationalityPreferences string  `json:"nationality_preferences"`
}

// SearchFilters is the structured search form accumulated across turns.
// Every field is independently optional; nil means "not provided yet".
type SearchFilters struct {
	LocationQuery         *string `json:"location_query,omitempty"`
	BudgetMax             *int    `json:"budget_max,omitempty"`
	MoveInDate            *string `json:"move_in_date,omitempty"`
	TenantGender          *string `json:"tenant_gender,omitempty"`
	TenantNationality     *string `json:"tenant_nationality,omitempty"`
	RoomType              *string `json:"room_type,omitempty"`
	NeedsEnsuite          *bool   `json:"needs_ensuite,omitempty"`
	NeedsCooking          *bool   `json:"needs_cooking,omitempty"`
	HasPets               *bool   `json:"has_pets,omitempty"`
	NeedsGym              *bool   `json:"needs_gym,omitempty"`
	NeedsPool             *bool   `json:"needs_pool,omitempty"`
	NeedsVisitorAllowance *bool   `json:"needs_visitor_allowance,omitempty"`
	NeedsWifi             *bool   `json:"needs_wifi,omitempty"`
	Environment           *string `json:"environment,omitempty"`
}

// Merge overlays non-nil fields from other onto f. Nil fields in other keep
// the value already collected in a previous turn.
func (f *SearchFilters) Merge(other *SearchFilters) {
	if other == nil {
		return
	}
	if other.LocationQuery != nil {
		f.LocationQuery = other.LocationQuery
	}
	if other.BudgetMax != nil {
		f.BudgetMax = other.BudgetMax
	}
	if other.MoveInDate != nil {
		f.MoveInDate = other.MoveInDate
	}
	if other.TenantGender != nil {
		f.TenantGender = other.TenantGender
	}
	if other.TenantNationality != nil {
		f.TenantNationality = other.TenantNationality
	}
	if other.RoomType != nil {
		f.RoomType = other.RoomType
	}
	if other.NeedsEnsuite != nil {
		f.NeedsEnsuite = other.NeedsEnsuite
	}
	if other.NeedsCooking != nil {
		f.NeedsCooking = other.NeedsCooking
	}
	if other.HasPets != nil {
		f.HasPets = other.HasPets
	}
	if other.NeedsGym != nil {
		f.NeedsGym = other.NeedsGym
	}
	if other.NeedsPool != nil {
		f.NeedsPool = other.NeedsPool
	}
	if other.NeedsVisitorAllowance != nil {
		f.NeedsVisitorAllowance = other.NeedsVisitorAllowance
	}
	if other.NeedsWifi != nil {
		f.NeedsWifi = other.NeedsWifi
	}
	if other.Environment != nil {
		f.Environment = other.Environment
	}
}

// Location returns the location text, or empty when unset.
func (f *SearchFilters) Location() string {
	if f == nil || f.LocationQuery == nil {
		return ""
	}
	return *f.LocationQuery
}

// EnvironmentPref returns the environment preference, or empty when unset.
func (f *SearchFilters) EnvironmentPref() string {
	if f == nil || f.Environment == nil {
		return ""
	}
	return *f.Environment
}
