// Package whatsapp sends outbound messages through the WhatsApp Cloud API.
// Credentials are per tenant; the client itself is shared.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"proppanda_backend/platform/logger"
)

const graphAPIBase = "https://graph.facebook.com/v18.0"

// Credentials are the tenant-scoped Cloud API credentials.
type Credentials struct {
	PhoneNumberID string
	AccessToken   string
}

// Client sends messages via the Cloud API.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a WhatsApp client.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		baseURL: graphAPIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// WithBaseURL overrides the Graph API base. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type textMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

type textPayload struct {
	Body string `json:"body"`
}

// SendText delivers a plain text message to a recipient phone number.
func (c *Client) SendText(ctx context.Context, creds Credentials, to, body string) error {
	if creds.PhoneNumberID == "" || creds.AccessToken == "" {
		return fmt.Errorf("tenant is missing whatsapp credentials")
	}
	if body == "" {
		return nil
	}

	payload := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textPayload{Body: body},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, creds.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.CollaboratorError("whatsapp", "send_text", err)
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("upstream api error: %d: %s", resp.StatusCode, string(detail))
		c.log.CollaboratorError("whatsapp", "send_text", err)
		return err
	}

	return nil
}
