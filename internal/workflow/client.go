// Package workflow calls the n8n automation webhooks that sit behind the
// bot: availability lookups, appointment scheduling, and human handoff.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

// SlotsRequest identifies the property whose viewing availability we need,
// narrowed to the user's preferred time window.
type SlotsRequest struct {
	TenantID       string `json:"agent_id"`
	PropertyID     string `json:"property_id"`
	PropertyName   string `json:"property_name"`
	ThreadID       string `json:"thread_id"`
	TimePreference string `json:"time_preference,omitempty"`
}

// DaySlots is one day of viewing availability as the workflow reports it.
type DaySlots struct {
	Date  string   `json:"date"`
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

// ScheduleRequest carries a fully collected appointment form plus the search
// context the receiving agent needs to pick the booking up cold.
type ScheduleRequest struct {
	TenantID        string  `json:"agent_id"`
	ThreadID        string  `json:"thread_id"`
	PropertyID      string  `json:"property_id"`
	PropertyName    string  `json:"property_name"`
	PropertyAddress string  `json:"property_address"`
	RoomNumber      string  `json:"room_number"`
	MonthlyRent     float64 `json:"monthly_rent"`
	Email           string  `json:"email"`
	Gender          string  `json:"gender"`
	Nationality     string  `json:"nationality"`
	MoveInDate      string  `json:"move_in_date"`
	PassType        string  `json:"pass_type"`
	LeaseMonths     string  `json:"lease_months"`
	ViewingType     string  `json:"viewing_type"`
	TimePreference  string  `json:"time_preference"`
	SlotDate        string  `json:"slot_date"`
	SlotTime        string  `json:"slot_time"`
	ChatSummary     string  `json:"chat_summary"`
}

// HandoffRequest asks the workflow to notify a human agent. Everything the
// conversation has learned about the user rides along so the agent does not
// start from zero.
type HandoffRequest struct {
	TenantID     string `json:"agent_id"`
	ThreadID     string `json:"thread_id"`
	Phone        string `json:"phone"`
	Reason       string `json:"reason"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	Nationality  string `json:"nationality"`
	MoveInDate   string `json:"move_in_date"`
	PassType     string `json:"pass_type"`
	LeaseMonths  string `json:"lease_months"`
	PropertyName string `json:"property_name"`
	RoomNumber   string `json:"room_number"`
	ChatSummary  string `json:"chat_summary"`
	Automatic    bool   `json:"automatic"`
}

// Client talks to the automation webhooks. Every call degrades to an error
// the engine can turn into a polite fallback; nothing here is fatal.
type Client struct {
	slotsURL    string
	scheduleURL string
	handoffURL  string
	client      *http.Client
	log         *logger.Logger
}

// NewClient creates a workflow client.
func NewClient(cfg config.WorkflowConfig, log *logger.Logger) *Client {
	return &Client{
		slotsURL:    cfg.GetSlotsWebhookURL(),
		scheduleURL: cfg.GetScheduleWebhookURL(),
		handoffURL:  cfg.GetHandoffWebhookURL(),
		client:      &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

// GetAvailableSlots fetches viewing availability for a property. The workflow
// sometimes returns a single day object instead of a list, so the reply is
// normalized before it reaches the booking flow.
func (c *Client) GetAvailableSlots(ctx context.Context, req SlotsRequest) ([]DaySlots, error) {
	body, err := c.post(ctx, c.slotsURL, "slots", req)
	if err != nil {
		return nil, err
	}
	return decodeSlots(body), nil
}

// ScheduleAppointment submits a booking to the scheduling workflow.
func (c *Client) ScheduleAppointment(ctx context.Context, req ScheduleRequest) error {
	_, err := c.post(ctx, c.scheduleURL, "schedule", req)
	return err
}

// TriggerHandoff notifies the handoff workflow and returns any human-facing
// acknowledgement text it produced.
func (c *Client) TriggerHandoff(ctx context.Context, req HandoffRequest) (string, error) {
	body, err := c.post(ctx, c.handoffURL, "handoff", req)
	if err != nil {
		return "", err
	}
	return unwrapMessage(body), nil
}

func (c *Client) post(ctx context.Context, webhookURL, operation string, payload any) ([]byte, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("workflow %s webhook is not configured", operation)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.CollaboratorError("workflow", operation, err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		c.log.CollaboratorError("workflow", operation, err)
		return nil, err
	}

	return body, nil
}

// decodeSlots normalizes the availability reply: a list of day objects, a
// single bare day object, or anything else, which decodes to no availability.
func decodeSlots(body []byte) []DaySlots {
	var days []DaySlots
	if err := json.Unmarshal(body, &days); err == nil {
		return days
	}

	var one DaySlots
	if err := json.Unmarshal(body, &one); err == nil && (one.Date != "" || len(one.Slots) > 0) {
		return []DaySlots{one}
	}
	return nil
}

// unwrapMessage extracts human-facing text from a workflow reply, trying the
// field names the workflows actually use before falling back to raw text.
func unwrapMessage(body []byte) string {
	var asObject map[string]any
	if err := json.Unmarshal(body, &asObject); err == nil {
		for _, key := range []string{"response", "message", "text", "output"} {
			if s, ok := asObject[key].(string); ok && s != "" {
				return s
			}
		}
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString
	}

	return strings.TrimSpace(string(body))
}
