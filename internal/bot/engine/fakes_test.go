package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"proppanda_backend/internal/properties"
	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/workflow"
	"proppanda_backend/platform/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development")
}

func testTenant() *tenant.Tenant {
	return &tenant.Tenant{
		ID:          uuid.New(),
		Name:        "Jane Tan",
		ChatbotName: "Panda",
		CompanyName: "PropPanda Realty",
	}
}

type fakeCompleter struct {
	completeReply string
	completeErr   error
	jsonReply     string
	jsonErr       error

	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.lastSystem, f.lastUser = system, user
	return f.completeReply, f.completeErr
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, system, user string, out any) error {
	f.lastSystem, f.lastUser = system, user
	if f.jsonErr != nil {
		return f.jsonErr
	}
	if f.jsonReply == "" {
		return json.Unmarshal([]byte("{}"), out)
	}
	return json.Unmarshal([]byte(f.jsonReply), out)
}

type fakeGeocoder struct {
	point *properties.GeoPoint
	err   error
}

func (f *fakeGeocoder) Resolve(context.Context, string) (*properties.GeoPoint, error) {
	return f.point, f.err
}

type fakePropertyStore struct {
	results      []properties.Property
	searchErr    error
	environments map[string]bool

	lastQuery string
	lastArgs  []any
}

func (f *fakePropertyStore) Search(_ context.Context, query string, args []any) ([]properties.Property, error) {
	f.lastQuery, f.lastArgs = query, args
	return f.results, f.searchErr
}

func (f *fakePropertyStore) DistinctEnvironments(context.Context, uuid.UUID, properties.Category) (map[string]bool, error) {
	if f.environments == nil {
		return map[string]bool{}, nil
	}
	return f.environments, nil
}

type fakeCapabilityStore struct {
	caps tenant.Capabilities
	err  error
}

func (f *fakeCapabilityStore) GetCapabilities(context.Context, uuid.UUID, []string) (tenant.Capabilities, error) {
	return f.caps, f.err
}

type fakeWorkflows struct {
	slots       []workflow.DaySlots
	slotsErr    error
	scheduleErr error
	handoffAck  string
	handoffErr  error

	slotCalls     int
	slotRequests  []workflow.SlotsRequest
	scheduled     []workflow.ScheduleRequest
	handoffs      []workflow.HandoffRequest
	scheduleCalls int
}

func (f *fakeWorkflows) GetAvailableSlots(_ context.Context, req workflow.SlotsRequest) ([]workflow.DaySlots, error) {
	f.slotCalls++
	f.slotRequests = append(f.slotRequests, req)
	return f.slots, f.slotsErr
}

func (f *fakeWorkflows) ScheduleAppointment(_ context.Context, req workflow.ScheduleRequest) error {
	f.scheduleCalls++
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.scheduled = append(f.scheduled, req)
	return nil
}

func (f *fakeWorkflows) TriggerHandoff(_ context.Context, req workflow.HandoffRequest) (string, error) {
	f.handoffs = append(f.handoffs, req)
	return f.handoffAck, f.handoffErr
}

type fakeKnowledge struct {
	text string
	err  error
}

func (f *fakeKnowledge) ReferenceText(context.Context, uuid.UUID) (string, error) {
	return f.text, f.err
}

func sampleResults(n int) []properties.Property {
	out := make([]properties.Property, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, properties.Property{
			ID:          fmt.Sprintf("prop-%d", i+1),
			Name:        fmt.Sprintf("Sunrise Loft %d", i+1),
			Address:     fmt.Sprintf("%d Sunrise Way", i+1),
			RoomNumber:  fmt.Sprintf("%d", i+1),
			MonthlyRent: float64(1000 + 100*i),
		})
	}
	return out
}
