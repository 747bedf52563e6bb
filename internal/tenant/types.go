package tenant

import "github.com/google/uuid"

// Tenant is an agency the bot answers messages for. Each tenant owns a
// WhatsApp phone number, a chatbot persona, and a set of enabled listing
// categories.
type Tenant struct {
	ID                    uuid.UUID `db:"agent_id"`
	Name                  string    `db:"name"`
	ChatbotName           string    `db:"chatbot_name"`
	CompanyName           string    `db:"company_name"`
	Bio                   string    `db:"bio"`
	ChatbotEnabled        bool      `db:"chatbot_enabled"`
	WhatsAppPhoneNumberID string    `db:"whatsapp_phone_number_id"`
	WhatsAppAccessToken   string    `db:"whatsapp_access_token"`
}

// Capabilities holds the per-tenant listing category flags, keyed by
// capability column name.
type Capabilities map[string]bool

// Enabled reports whether the given capability column is switched on.
func (c Capabilities) Enabled(column string) bool {
	return c[column]
}
