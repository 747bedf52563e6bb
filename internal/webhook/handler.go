package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"proppanda_backend/internal/tenant"
	"proppanda_backend/internal/whatsapp"
	"proppanda_backend/platform/apperr"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/httpkit"
	"proppanda_backend/platform/logger"
	"proppanda_backend/platform/phone"
)

// turnTimeout bounds background turn processing after the webhook has
// already been acknowledged.
const turnTimeout = 90 * time.Second

// TenantResolver maps an inbound phone number id to its tenant.
type TenantResolver interface {
	GetByWhatsAppNumberID(ctx context.Context, phoneNumberID string) (*tenant.Tenant, error)
}

// TurnRunner is the engine surface the webhook drives.
type TurnRunner interface {
	HandleTurn(ctx context.Context, t *tenant.Tenant, threadID, message string) (string, error)
}

// Sender delivers the reply back over WhatsApp.
type Sender interface {
	SendText(ctx context.Context, creds whatsapp.Credentials, to, body string) error
}

// Handler owns the two webhook endpoints.
type Handler struct {
	verifyToken string
	tenants     TenantResolver
	engine      TurnRunner
	sender      Sender
	log         *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(cfg config.WebhookConfig, tenants TenantResolver, engine TurnRunner, sender Sender, log *logger.Logger) *Handler {
	return &Handler{
		verifyToken: cfg.GetWhatsAppVerifyToken(),
		tenants:     tenants,
		engine:      engine,
		sender:      sender,
		log:         log,
	}
}

// Verify answers the Cloud API subscription handshake.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	httpkit.HandleError(c, apperr.Forbidden("webhook verification failed"))
}

// Receive accepts a callback, acknowledges it immediately, and processes any
// text messages in the background. The Cloud API retries on slow responses,
// so nothing expensive may run before the 200.
func (h *Handler) Receive(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Malformed payloads are acknowledged too; retrying won't fix them.
		c.Status(http.StatusOK)
		return
	}

	messages := ExtractMessages(payload)
	c.Status(http.StatusOK)
	if len(messages) == 0 {
		return
	}

	base := context.WithoutCancel(c.Request.Context())
	for _, msg := range messages {
		go h.processMessage(base, msg)
	}
}

func (h *Handler) processMessage(ctx context.Context, msg InboundMessage) {
	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	t, err := h.tenants.GetByWhatsAppNumberID(ctx, msg.PhoneNumberID)
	if err != nil {
		h.log.Warn("webhook for unknown phone number id", "phone_number_id", msg.PhoneNumberID)
		return
	}
	if !t.ChatbotEnabled {
		return
	}

	threadID := phone.Digits("+" + msg.From)
	log := h.log.WithTenant(t.ID.String()).WithThread(threadID)

	reply, err := h.engine.HandleTurn(ctx, t, threadID, msg.Body)
	if err != nil {
		log.Error("turn failed", "error", err.Error())
		reply = "Sorry, something went wrong on my end. Please try again in a moment!"
	}

	creds := whatsapp.Credentials{
		PhoneNumberID: t.WhatsAppPhoneNumberID,
		AccessToken:   t.WhatsAppAccessToken,
	}
	if err := h.sender.SendText(ctx, creds, threadID, reply); err != nil {
		log.Error("reply delivery failed", "error", err.Error())
	}
}
