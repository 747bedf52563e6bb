package webhook

import (
	apphttp "proppanda_backend/internal/http"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

// Module exposes the WhatsApp webhook endpoints.
type Module struct {
	handler *Handler
}

// NewModule creates the webhook module.
func NewModule(cfg config.WebhookConfig, tenants TenantResolver, engine TurnRunner, sender Sender, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(cfg, tenants, engine, sender, log),
	}
}

// Name implements http.Module.
func (m *Module) Name() string { return "webhook" }

// RegisterRoutes mounts the verification and receive endpoints on the
// rate-limited webhook group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhook.GET("/whatsapp", m.handler.Verify)
	ctx.Webhook.POST("/whatsapp", m.handler.Receive)
}
