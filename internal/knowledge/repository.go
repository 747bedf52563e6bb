// Package knowledge loads the tenant's FAQ and document snippets that ground
// free-form replies.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the tenant knowledge base.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a knowledge repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FAQ is a single question/answer pair.
type FAQ struct {
	Question string
	Answer   string
}

// FetchFAQs returns every FAQ the tenant has published.
func (r *Repository) FetchFAQs(ctx context.Context, tenantID uuid.UUID) ([]FAQ, error) {
	query := `SELECT question, answer FROM knowledge_base_faqs WHERE agent_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faqs: %w", err)
	}
	defer rows.Close()

	var faqs []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load faqs: %w", err)
	}
	return faqs, nil
}

// FetchDocuments returns the tenant's free-text knowledge documents.
func (r *Repository) FetchDocuments(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	query := `SELECT content FROM knowledge_base_documents WHERE agent_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return docs, nil
}

// Service renders the knowledge base into the reference block the reply
// prompt consumes.
type Service struct {
	repo *Repository
}

// NewService creates a knowledge service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ReferenceText concatenates FAQs and documents into one prompt block. An
// empty string means the tenant has no knowledge base.
func (s *Service) ReferenceText(ctx context.Context, tenantID uuid.UUID) (string, error) {
	faqs, err := s.repo.FetchFAQs(ctx, tenantID)
	if err != nil {
		return "", err
	}
	docs, err := s.repo.FetchDocuments(ctx, tenantID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range faqs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", f.Question, f.Answer)
	}
	for _, d := range docs {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}
