package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"proppanda_backend/internal/properties"
)

// CapabilityGate checks whether a tenant serves a listing category, and
// builds the decline message from whatever the tenant does serve.
type CapabilityGate struct {
	store CapabilityStore
}

// NewCapabilityGate creates a capability gate.
func NewCapabilityGate(store CapabilityStore) *CapabilityGate {
	return &CapabilityGate{store: store}
}

// Check reports whether the tenant serves the category. When it does not,
// the returned message lists the categories the tenant actually offers,
// derived from the registry rather than hard-coded.
func (g *CapabilityGate) Check(ctx context.Context, tenantID uuid.UUID, category properties.Category) (bool, string, error) {
	columns := make([]string, 0, len(properties.Catalog))
	for _, info := range properties.Catalog {
		columns = append(columns, info.CapabilityColumn)
	}
	sort.Strings(columns)

	caps, err := g.store.GetCapabilities(ctx, tenantID, columns)
	if err != nil {
		return false, "", err
	}

	info := properties.Catalog[category]
	if caps.Enabled(info.CapabilityColumn) {
		return true, "", nil
	}

	var offered []string
	for cat, ci := range properties.Catalog {
		if cat != category && caps.Enabled(ci.CapabilityColumn) {
			offered = append(offered, ci.DisplayName)
		}
	}
	sort.Strings(offered)

	if len(offered) == 0 {
		return false, fmt.Sprintf("Sorry, we don't handle %s at the moment.", info.DisplayName), nil
	}
	return false, fmt.Sprintf("Sorry, we don't handle %s at the moment. We can help you with %s though!",
		info.DisplayName, strings.Join(offered, ", ")), nil
}
