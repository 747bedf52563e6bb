package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"proppanda_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database access to tenant (agency) records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenant repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByWhatsAppNumberID resolves the tenant that owns an inbound WhatsApp
// phone number id.
func (r *Repository) GetByWhatsAppNumberID(ctx context.Context, phoneNumberID string) (*Tenant, error) {
	query := `SELECT agent_id, name, chatbot_name, company_name, bio, chatbot_enabled,
		whatsapp_phone_number_id, whatsapp_access_token
		FROM agent WHERE whatsapp_phone_number_id = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, phoneNumberID).Scan(
		&t.ID, &t.Name, &t.ChatbotName, &t.CompanyName, &t.Bio, &t.ChatbotEnabled,
		&t.WhatsAppPhoneNumberID, &t.WhatsAppAccessToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	return &t, nil
}

// GetByID loads a tenant by its id.
func (r *Repository) GetByID(ctx context.Context, tenantID uuid.UUID) (*Tenant, error) {
	query := `SELECT agent_id, name, chatbot_name, company_name, bio, chatbot_enabled,
		whatsapp_phone_number_id, whatsapp_access_token
		FROM agent WHERE agent_id = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&t.ID, &t.Name, &t.ChatbotName, &t.CompanyName, &t.Bio, &t.ChatbotEnabled,
		&t.WhatsAppPhoneNumberID, &t.WhatsAppAccessToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	return &t, nil
}

// GetCapabilities loads every listing-category flag for the tenant in one
// query. The column list comes from the caller so the capability mapping
// stays in one place (the capability gate).
func (r *Repository) GetCapabilities(ctx context.Context, tenantID uuid.UUID, columns []string) (Capabilities, error) {
	if len(columns) == 0 {
		return Capabilities{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM agent WHERE agent_id = $1", strings.Join(columns, ", "))

	row := r.pool.QueryRow(ctx, query, tenantID)
	values := make([]bool, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, fmt.Errorf("failed to load tenant capabilities: %w", err)
	}

	caps := make(Capabilities, len(columns))
	for i, col := range columns {
		caps[col] = values[i]
	}
	return caps, nil
}
